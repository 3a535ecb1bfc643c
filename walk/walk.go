// Package walk implements spec §4.7: merging external walking-transfer
// durations into the edge map built by graphbuild. Runs serially on the
// driver goroutine since it mutates the shared edge map (spec §5).
//
// original_source/src/graph.rs constructs its backward edge with
// end_node set to the same index on both sides — a symmetric-edge bug this
// package deliberately avoids by building each direction from its own
// distinct (start, end) pair rather than copying one struct and patching it.
package walk

import (
	"math"

	"github.com/theoremus-urban-solutions/netex-graph/geometry"
	"github.com/theoremus-urban-solutions/netex-graph/graphbuild"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

const maxWalkDistanceKm = 1.0

// Apply merges edges into m in place, resolving each WalkEdge's endpoints
// through idMap and dropping unresolvable or overlong entries. Dropped is
// the count of entries dropped for diagnostics.
func Apply(m graphbuild.EdgeMap, nodes []model.Node, idMap map[uint64]int, walks []model.WalkEdge) (dropped int) {
	for _, w := range walks {
		startIdx, ok := idMap[w.Start]
		if !ok {
			dropped++
			continue
		}
		endIdx, ok := idMap[w.End]
		if !ok {
			dropped++
			continue
		}

		start, end := nodes[startIdx], nodes[endIdx]
		distanceKm := geometry.SphericalLawOfCosinesKm(float64(start.Lat), float64(start.Long), float64(end.Lat), float64(end.Long))
		if distanceKm > maxWalkDistanceKm {
			dropped++
			continue
		}

		seconds := saturatingRoundU16(w.Duration)
		upsertDirection(m, startIdx, endIdx, seconds)
		upsertDirection(m, endIdx, startIdx, seconds)
	}
	return dropped
}

func upsertDirection(m graphbuild.EdgeMap, start, end int, seconds uint16) {
	key := graphbuild.EdgeKey{Start: start, End: end}
	edge, ok := m[key]
	if !ok {
		edge = &model.Edge{StartNode: start, EndNode: end, WalkSeconds: model.NoWalk}
		m[key] = edge
	}
	edge.WalkSeconds = seconds
}

func saturatingRoundU16(v float64) uint16 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(r)
}
