// Package corpus implements spec §4.3: concatenating per-document NeTEx
// records into the seven corpus-wide union arrays, with an optional
// geographic bounding-box filter applied to stops before clustering.
package corpus

import "github.com/theoremus-urban-solutions/netex-graph/model"

// BoundingBox is a geographic filter in (longitude, latitude) degrees.
// The default values mirror the central-European box hard-coded in
// original_source/src/main.rs.
type BoundingBox struct {
	MinLong float32
	MinLat  float32
	MaxLong float32
	MaxLat  float32
}

// DefaultBoundingBox is the box original_source/src/main.rs applies
// unconditionally; here it is an opt-in default rather than hard-coded.
var DefaultBoundingBox = BoundingBox{MinLong: 5.5, MinLat: 47.0, MaxLong: 15.5, MaxLat: 55.5}

// Contains reports whether a point lies within the box, inclusive of edges.
func (b BoundingBox) Contains(long, lat float32) bool {
	return long >= b.MinLong && long <= b.MaxLong && lat >= b.MinLat && lat <= b.MaxLat
}

// Union concatenates the seven entity arrays of every document's extraction
// into one corpus-wide record. No deduplication happens here.
func Union(docs []model.NetexData) model.NetexData {
	var out model.NetexData
	for _, d := range docs {
		out.ScheduledStopPoints = append(out.ScheduledStopPoints, d.ScheduledStopPoints...)
		out.ServiceJourneyPatterns = append(out.ServiceJourneyPatterns, d.ServiceJourneyPatterns...)
		out.ServiceJourneys = append(out.ServiceJourneys, d.ServiceJourneys...)
		out.OperatingPeriods = append(out.OperatingPeriods, d.OperatingPeriods...)
		out.DayTypeAssignments = append(out.DayTypeAssignments, d.DayTypeAssignments...)
		out.Lines = append(out.Lines, d.Lines...)
		out.Authorities = append(out.Authorities, d.Authorities...)
	}
	return out
}

// FilterBoundingBox drops every ScheduledStopPoint outside box, leaving the
// other six arrays untouched. docOf and stopIdxOf are C4's per-stop origin
// arrays (same length and order as data.ScheduledStopPoints going in); they
// are filtered in lockstep so index i in every returned slice still refers
// to the same stop, keeping cluster.Build's Ref.OriginDocIndex/OriginStopIdx
// correct for every stop that survives behind a dropped predecessor. Stops
// referencing filtered-out points are handled downstream by C6's
// resolve-or-skip rule.
func FilterBoundingBox(data model.NetexData, box BoundingBox, docOf, stopIdxOf []int) (model.NetexData, []int, []int) {
	filtered := make([]model.ScheduledStopPoint, 0, len(data.ScheduledStopPoints))
	filteredDocOf := make([]int, 0, len(docOf))
	filteredStopIdxOf := make([]int, 0, len(stopIdxOf))
	for i, s := range data.ScheduledStopPoints {
		if box.Contains(s.Long, s.Lat) {
			filtered = append(filtered, s)
			filteredDocOf = append(filteredDocOf, docOf[i])
			filteredStopIdxOf = append(filteredStopIdxOf, stopIdxOf[i])
		}
	}
	data.ScheduledStopPoints = filtered
	return data, filteredDocOf, filteredStopIdxOf
}
