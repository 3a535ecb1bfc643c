// Package graphbuild implements spec §4.6: mapping each ServiceJourney's
// adjacent passing-time pairs into local edge maps, fanned out one goroutine
// per journey and combined with an associative merge.
// Concurrency follows the teacher's goroutine+semaphore streaming pattern
// (loader/streaming_loader.go), reworked onto golang.org/x/sync/errgroup.
package graphbuild

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/netex-graph/lookup"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

// EdgeKey is the (start, end) node-index pair local edge maps are keyed by.
type EdgeKey struct {
	Start int
	End   int
}

// EdgeMap is the per-journey or merged local structure C6 builds: one
// journey list and walk seconds per distinct (start, end) pair.
type EdgeMap map[EdgeKey]*model.Edge

// Window returns the adjacent (previous, current) pairs of s, mirroring the
// teacher's style of small helpers kept near their one call site.
func Window(s []model.TimetabledPassingTime) [][2]model.TimetabledPassingTime {
	if len(s) < 2 {
		return nil
	}
	pairs := make([][2]model.TimetabledPassingTime, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		pairs = append(pairs, [2]model.TimetabledPassingTime{s[i-1], s[i]})
	}
	return pairs
}

// Build runs C6 over every journey in parallel, resolving node indices
// through refMap and lookup tables, and merges the results into one EdgeMap.
func Build(journeys []model.ServiceJourney, refMap map[uint64]int, tables lookup.Tables) (EdgeMap, error) {
	g := new(errgroup.Group)
	locals := make([]EdgeMap, len(journeys))

	for i, j := range journeys {
		i, j := i, j
		g.Go(func() error {
			local, err := buildLocal(j, refMap, tables)
			if err != nil {
				return err
			}
			locals[i] = local
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(EdgeMap)
	for _, local := range locals {
		merge(merged, local)
	}
	return merged, nil
}

func buildLocal(j model.ServiceJourney, refMap map[uint64]int, tables lookup.Tables) (EdgeMap, error) {
	local := make(EdgeMap)

	assignment, ok := tables.DayTypeAssignments[j.DayType]
	if !ok {
		return nil, fmt.Errorf("graphbuild: day type %d has no assignment", j.DayType)
	}
	globalPeriod, ok := tables.PeriodToGlobalIndex[assignment.OperatingPeriod]
	if !ok {
		return nil, fmt.Errorf("graphbuild: operating period %d not in corpus", assignment.OperatingPeriod)
	}

	lineID := tables.PatternToLine[j.PatternRef]
	line := tables.Lines[lineID]
	authority := tables.Authorities[line.Authority]

	for _, pair := range Window(j.PassingTimes) {
		pre, cur := pair[0], pair[1]

		startStop, ok := tables.StopPointInJourneyToStop[pre.StopPointInJourneyPattern]
		if !ok {
			continue
		}
		endStop, ok := tables.StopPointInJourneyToStop[cur.StopPointInJourneyPattern]
		if !ok {
			continue
		}

		startNode, ok := refMap[startStop]
		if !ok {
			continue
		}
		endNode, ok := refMap[endStop]
		if !ok {
			continue
		}

		key := EdgeKey{Start: startNode, End: endNode}
		edge, exists := local[key]
		if !exists {
			edge = &model.Edge{StartNode: startNode, EndNode: endNode, WalkSeconds: model.NoWalk}
			local[key] = edge
		}

		edge.Timetable.Journeys = append(edge.Timetable.Journeys, model.Journey{
			Departure:       pre.Departure,
			Arrival:         cur.Arrival,
			TransportMode:   j.TransportMode,
			OperatingPeriod: uint16(globalPeriod),
			Line:            line.ShortName,
			Controller:      authority.ShortName,
		})
	}

	return local, nil
}

// merge folds src into dst: equal keys concatenate journeys; new keys are
// inserted with walk_seconds initialized to the no-walk sentinel.
func merge(dst, src EdgeMap) {
	for key, edge := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = edge
			continue
		}
		existing.Timetable.Journeys = append(existing.Timetable.Journeys, edge.Timetable.Journeys...)
	}
}

// Keys returns the map's keys in a stable order, for deterministic
// downstream iteration (C8's per-edge parallel rewrite and CSV output).
func Keys(m EdgeMap) []EdgeKey {
	keys := make([]EdgeKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Start != keys[j].Start {
			return keys[i].Start < keys[j].Start
		}
		return keys[i].End < keys[j].End
	})
	return keys
}
