// Package model holds the entity and graph types of spec §3. Every
// inter-entity reference is a 64-bit handle produced by intern.Handle; no
// entity keeps the original NeTEx id string alive past parse time.
package model

// ScheduledStopPoint is a logical stop referenced by schedules.
type ScheduledStopPoint struct {
	ID        uint64
	ShortName string
	Long      float32
	Lat       float32
}

// StopPointInJourneyPattern is one stop slot in a ServiceJourneyPattern.
type StopPointInJourneyPattern struct {
	ID                 uint64
	ScheduledStopPoint uint64
}

// ServiceJourneyPattern is an ordered template of stops belonging to a line.
type ServiceJourneyPattern struct {
	ID    uint64
	Line  uint64
	Stops []StopPointInJourneyPattern
}

// TimetabledPassingTime is one scheduled arrival/departure at a pattern stop.
type TimetabledPassingTime struct {
	StopPointInJourneyPattern uint64
	Arrival                   uint16
	Departure                 uint16
}

// ServiceJourney is one concrete scheduled run over a pattern on given day types.
type ServiceJourney struct {
	PatternRef    uint64
	DayType       uint64
	TransportMode string
	PassingTimes  []TimetabledPassingTime
}

// UicOperatingPeriod is a calendar object specifying when a journey is active.
type UicOperatingPeriod struct {
	ID           uint64
	From         uint32
	To           uint32
	ValidDayBits []byte
}

// DayTypeAssignment links a day type to the operating period that governs it.
type DayTypeAssignment struct {
	DayType         uint64
	OperatingPeriod uint64
	IsAvailable     bool
}

// Line is a NeTEx line, reduced to the fields the graph edges need.
type Line struct {
	ID        uint64
	ShortName string
	Authority uint64
}

// Authority is the line's operating authority.
type Authority struct {
	ID        uint64
	ShortName string
}

// NetexData is the typed record one XML document's extraction produces
// (spec §4.2): seven arrays, one per entity kind.
type NetexData struct {
	ScheduledStopPoints    []ScheduledStopPoint
	ServiceJourneyPatterns []ServiceJourneyPattern
	ServiceJourneys        []ServiceJourney
	OperatingPeriods       []UicOperatingPeriod
	DayTypeAssignments     []DayTypeAssignment
	Lines                  []Line
	Authorities            []Authority
}

// Node is a graph node: a cluster of stop points sharing a short name and
// within the clustering radius, identified by the XOR-fold of its members'
// original ids (spec §4.4). Owned by the graph; never mutated after C4.
type Node struct {
	ID        uint64
	ShortName string
	Long      float32
	Lat       float32
}

// Journey is one per-edge timetable entry produced by C6 and rewritten by C8.
type Journey struct {
	Departure       uint16 `json:"d"`
	Arrival         uint16 `json:"a"`
	TransportMode   string `json:"t"`
	OperatingPeriod uint16 `json:"o"`
	Line            string `json:"l"`
	Controller      string `json:"c"`
}

// OperatingPeriod is the per-edge, locally-indexed calendar period (spec §4.8).
type OperatingPeriod struct {
	From            uint32 `json:"f"`
	To              uint32 `json:"t"`
	ValidDay        []byte `json:"-"`
	ValidDayBitsB64 string `json:"v"`
}

// Timetable is an edge's journeys and the operating periods they reference.
type Timetable struct {
	Journeys []Journey         `json:"j"`
	Periods  []OperatingPeriod `json:"p"`
}

// NoWalk is the walk_seconds sentinel meaning "no walking edge" (spec §4.7/§9).
const NoWalk uint16 = 0xFFFF

// Edge is a directed connection between two nodes, indexed positionally
// into Graph.Nodes, carrying an optional walking duration and a timetable.
type Edge struct {
	StartNode   int
	EndNode     int
	WalkSeconds uint16
	Timetable   Timetable
}

// Graph is the deduplicated directed multigraph the pipeline produces.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// WalkEdge is one external walking-transfer record (spec §4.7/§6), keyed by
// node content-hash id rather than node index, since it is produced outside
// the pipeline.
type WalkEdge struct {
	Start    uint64  `json:"start"`
	End      uint64  `json:"end"`
	Duration float64 `json:"duration"`
}

// MetaNode is the per-node record of the JSON sidecar (spec §4.9). The id is
// a decimal string because large u64 values lose precision under
// JSON.parse in JavaScript consumers.
type MetaNode struct {
	Name   string     `json:"name"`
	ID     string     `json:"id"`
	Coords [2]float32 `json:"coords"`
}
