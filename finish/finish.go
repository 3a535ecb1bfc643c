// Package finish implements spec §4.8: per-edge speed filtering and the
// local operating-period index remap, parallelized per edge with errgroup
// since the edge map is partitioned by key and no edge aliases another.
package finish

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/netex-graph/geometry"
	"github.com/theoremus-urban-solutions/netex-graph/graphbuild"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

const maxKmPerHour = 325.0

// Run returns a finished copy of every edge in m, ordered by
// graphbuild.Keys; m itself is left unchanged. In each copy, journeys
// failing the speed filter are dropped, and surviving journeys'
// OperatingPeriod fields are rewritten from global corpus indices to
// indices into the edge's own local periods array.
func Run(m graphbuild.EdgeMap, nodes []model.Node, periods []model.UicOperatingPeriod) ([]model.Edge, error) {
	keys := graphbuild.Keys(m)
	edges := make([]model.Edge, len(keys))

	g := new(errgroup.Group)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			edge, err := finishEdge(*m[key], nodes, periods)
			if err != nil {
				return err
			}
			edges[i] = edge
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return edges, nil
}

func finishEdge(edge model.Edge, nodes []model.Node, periods []model.UicOperatingPeriod) (model.Edge, error) {
	start, end := nodes[edge.StartNode], nodes[edge.EndNode]
	distanceKm := geometry.SphericalLawOfCosinesKm(float64(start.Lat), float64(start.Long), float64(end.Lat), float64(end.Long))

	surviving := make([]model.Journey, 0, len(edge.Timetable.Journeys))
	for _, j := range edge.Timetable.Journeys {
		if passesSpeedFilter(j, distanceKm) {
			surviving = append(surviving, j)
		}
	}

	localPeriods, localIndex, err := remapPeriods(surviving, periods)
	if err != nil {
		return model.Edge{}, err
	}
	for i := range surviving {
		surviving[i].OperatingPeriod = localIndex[surviving[i].OperatingPeriod]
	}

	edge.Timetable.Journeys = surviving
	edge.Timetable.Periods = localPeriods
	return edge, nil
}

func passesSpeedFilter(j model.Journey, distanceKm float64) bool {
	minutes := minutesBetween(j.Departure, j.Arrival)
	if minutes == 0 {
		return distanceKm < 3
	}
	kmPerHour := distanceKm / (float64(minutes) / 60.0)
	return kmPerHour < maxKmPerHour || (minutes < 3 && distanceKm < 3)
}

// minutesBetween computes ((arrival mod 60) + (arrival/60)*60) minus the
// same expansion of departure, wrapping at midnight — spec §4.8's formula,
// which collapses to arrival-departure but is kept literal to preserve the
// source's documented intent.
func minutesBetween(departure, arrival uint16) int {
	expand := func(t uint16) int { return int(t%60) + int(t/60)*60 }
	minutes := expand(arrival) - expand(departure)
	if minutes < 0 {
		minutes += 24 * 60
	}
	return minutes
}

// remapPeriods assigns each distinct global period index (keyed by the
// original uint16 OperatingPeriod field before remap) a local index in
// first-seen order among the surviving journeys.
func remapPeriods(journeys []model.Journey, periods []model.UicOperatingPeriod) ([]model.OperatingPeriod, map[uint16]uint16, error) {
	localIndex := make(map[uint16]uint16)
	local := make([]model.OperatingPeriod, 0)

	for _, j := range journeys {
		if _, seen := localIndex[j.OperatingPeriod]; seen {
			continue
		}
		globalIdx := int(j.OperatingPeriod)
		if globalIdx < 0 || globalIdx >= len(periods) {
			return nil, nil, fmt.Errorf("finish: global operating period index %d out of range", globalIdx)
		}
		src := periods[globalIdx]
		localIndex[j.OperatingPeriod] = uint16(len(local))
		local = append(local, model.OperatingPeriod{
			From:            src.From,
			To:              src.To,
			ValidDay:        src.ValidDayBits,
			ValidDayBitsB64: base64.StdEncoding.EncodeToString(src.ValidDayBits),
		})
	}

	return local, localIndex, nil
}
