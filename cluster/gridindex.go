package cluster

import "github.com/theoremus-urban-solutions/netex-graph/geometry"

// gridIndex is the bucket-local spatial index spec §4.4 step 2 asks for
// (a 2-D R-tree or equivalent). No R-tree library is available in this
// project's dependency set, so membership is tracked in a flat slice with a
// coarse grid keyed by truncated (long, lat) cells to cut the scan down to
// the seed's neighborhood before the exact haversine box check.
type gridIndex struct {
	members []*indexedStop
	cells   map[[2]int][]*indexedStop
}

const cellSizeDeg = 0.02 // roughly 2km at mid-latitudes, comfortably over the 1km cluster radius

func cellKey(long, lat float32) [2]int {
	return [2]int{int(long / cellSizeDeg), int(lat / cellSizeDeg)}
}

func newGridIndex(members []*indexedStop) *gridIndex {
	idx := &gridIndex{members: members, cells: make(map[[2]int][]*indexedStop)}
	for _, m := range members {
		key := cellKey(m.stop.Long, m.stop.Lat)
		idx.cells[key] = append(idx.cells[key], m)
	}
	return idx
}

// popAny returns and marks used any remaining unused member, or nil when
// the bucket is exhausted.
func (idx *gridIndex) popAny() *indexedStop {
	for _, m := range idx.members {
		if !m.used {
			m.used = true
			return m
		}
	}
	return nil
}

// extractWithin returns every unused member whose coordinates fall inside
// box, marking them used and removing them from further consideration.
func (idx *gridIndex) extractWithin(box geometry.BoundingBox) []*indexedStop {
	cx, cy := int(box.Min.Lon/cellSizeDeg)-1, int(box.Min.Lat/cellSizeDeg)-1
	mx, my := int(box.Max.Lon/cellSizeDeg)+1, int(box.Max.Lat/cellSizeDeg)+1

	var extracted []*indexedStop
	seen := make(map[*indexedStop]struct{})
	for x := cx; x <= mx; x++ {
		for y := cy; y <= my; y++ {
			for _, m := range idx.cells[[2]int{x, y}] {
				if m.used {
					continue
				}
				if _, dup := seen[m]; dup {
					continue
				}
				long, lat := float64(m.stop.Long), float64(m.stop.Lat)
				if long >= box.Min.Lon && long <= box.Max.Lon && lat >= box.Min.Lat && lat <= box.Max.Lat {
					m.used = true
					seen[m] = struct{}{}
					extracted = append(extracted, m)
				}
			}
		}
	}
	return extracted
}
