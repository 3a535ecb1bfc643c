// Package cluster implements spec §4.4, the hardest step: grouping
// ScheduledStopPoints sharing a short name and lying within 1000 meters of
// a seed into graph nodes, with a permutation-invariant content-hash id.
package cluster

import (
	"sort"

	"github.com/theoremus-urban-solutions/netex-graph/geometry"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

// Ref locates one original stop point after clustering: which node it
// landed in, and which document/index it came from for diagnostics.
type Ref struct {
	NodeIndex      int
	OriginDocIndex int
	OriginStopIdx  int
}

// Result is C4's output: the deduplicated node list plus the two lookup
// tables spec §4.4 names.
type Result struct {
	Nodes  []model.Node
	RefMap map[uint64]Ref
	IDMap  map[uint64]int
}

// indexedStop is one bucket member carried alongside its origin coordinates
// for the grid pre-filter and the eventual Ref bookkeeping.
type indexedStop struct {
	stop    model.ScheduledStopPoint
	docIdx  int
	stopIdx int
	used    bool
}

// Build runs C4 over the corpus-wide union of stop points. docOf maps each
// stop's position in stops to its originating document index (the caller
// already knows this from the union step), and stopIdxOf to its index
// within that document's own ScheduledStopPoints slice.
func Build(stops []model.ScheduledStopPoint, docOf, stopIdxOf []int) Result {
	buckets := bucketByShortName(stops, docOf, stopIdxOf)

	result := Result{
		RefMap: make(map[uint64]Ref, len(stops)),
		IDMap:  make(map[uint64]int),
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		clusterBucket(buckets[name], &result)
	}

	return result
}

func bucketByShortName(stops []model.ScheduledStopPoint, docOf, stopIdxOf []int) map[string][]*indexedStop {
	buckets := make(map[string][]*indexedStop)
	for i, s := range stops {
		entry := &indexedStop{stop: s, docIdx: docOf[i], stopIdx: stopIdxOf[i]}
		buckets[s.ShortName] = append(buckets[s.ShortName], entry)
	}
	return buckets
}

func clusterBucket(members []*indexedStop, result *Result) {
	index := newGridIndex(members)

	for {
		seed := index.popAny()
		if seed == nil {
			break
		}

		box := boundingBoxAround(seed.stop.Long, seed.stop.Lat)
		extracted := index.extractWithin(box)
		extracted = append(extracted, seed)

		node := buildNode(extracted)
		nodeIndex := len(result.Nodes)
		result.Nodes = append(result.Nodes, node)
		result.IDMap[node.ID] = nodeIndex

		for _, m := range extracted {
			result.RefMap[m.stop.ID] = Ref{NodeIndex: nodeIndex, OriginDocIndex: m.docIdx, OriginStopIdx: m.stopIdx}
		}
	}
}

func buildNode(members []*indexedStop) model.Node {
	var sumLong, sumLat float64
	ids := make([]uint64, 0, len(members))
	seen := make(map[uint64]struct{}, len(members))

	for _, m := range members {
		sumLong += float64(m.stop.Long)
		sumLat += float64(m.stop.Lat)
		if _, dup := seen[m.stop.ID]; !dup {
			seen[m.stop.ID] = struct{}{}
			ids = append(ids, m.stop.ID)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var clusterID uint64
	for _, id := range ids {
		clusterID ^= id
	}

	n := float64(len(members))
	return model.Node{
		ID:        clusterID,
		ShortName: members[0].stop.ShortName,
		Long:      float32(sumLong / n),
		Lat:       float32(sumLat / n),
	}
}

// boundingBoxAround computes the 1000m axis-aligned box per spec §4.4 step
// 3: haversine displacement at bearings 45° and 225° from the seed.
func boundingBoxAround(long, lat float32) geometry.BoundingBox {
	neLat, neLon := geometry.DestinationPoint(float64(lat), float64(long), 45, 1000)
	swLat, swLon := geometry.DestinationPoint(float64(lat), float64(long), 225, 1000)
	return geometry.BoundingBox{
		Min: geometry.Point{Lat: swLat, Lon: swLon},
		Max: geometry.Point{Lat: neLat, Lon: neLon},
	}
}
