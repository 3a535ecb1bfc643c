// Package lookup builds the auxiliary maps spec §4.5 lists, keyed by the
// uint64 handles intern.Handle produces. Structurally grounded on
// repository/netex_repository.go's map-of-maps style, adapted from string
// ids to handles and from a mutable save API to a one-shot builder.
package lookup

import "github.com/theoremus-urban-solutions/netex-graph/model"

// Tables holds every lookup map C6 needs to resolve a journey into edges.
type Tables struct {
	StopPointInJourneyToStop map[uint64]uint64
	PatternToLine            map[uint64]uint64
	Lines                    map[uint64]model.Line
	Authorities              map[uint64]model.Authority
	DayTypeAssignments       map[uint64]model.DayTypeAssignment
	PeriodToGlobalIndex      map[uint64]int
}

// Build constructs Tables from the corpus-wide union. First-write-wins
// applies to StopPointInJourneyToStop, matching the spec's stated policy;
// the other maps are naturally single-write per key in a well-formed corpus.
func Build(data model.NetexData) Tables {
	t := Tables{
		StopPointInJourneyToStop: make(map[uint64]uint64),
		PatternToLine:            make(map[uint64]uint64),
		Lines:                    make(map[uint64]model.Line, len(data.Lines)),
		Authorities:              make(map[uint64]model.Authority, len(data.Authorities)),
		DayTypeAssignments:       make(map[uint64]model.DayTypeAssignment, len(data.DayTypeAssignments)),
		PeriodToGlobalIndex:      make(map[uint64]int, len(data.OperatingPeriods)),
	}

	for _, pattern := range data.ServiceJourneyPatterns {
		t.PatternToLine[pattern.ID] = pattern.Line
		for _, sp := range pattern.Stops {
			if _, exists := t.StopPointInJourneyToStop[sp.ID]; !exists {
				t.StopPointInJourneyToStop[sp.ID] = sp.ScheduledStopPoint
			}
		}
	}

	for _, line := range data.Lines {
		t.Lines[line.ID] = line
	}

	for _, authority := range data.Authorities {
		t.Authorities[authority.ID] = authority
	}

	for _, assignment := range data.DayTypeAssignments {
		t.DayTypeAssignments[assignment.DayType] = assignment
	}

	for i, period := range data.OperatingPeriods {
		t.PeriodToGlobalIndex[period.ID] = i
	}

	return t
}
