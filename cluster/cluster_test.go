package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/netex-graph/model"
)

func stopsFixture() []model.ScheduledStopPoint {
	return []model.ScheduledStopPoint{
		{ID: 1, ShortName: "Central", Long: 13.400, Lat: 52.500},
		{ID: 2, ShortName: "Central", Long: 13.4005, Lat: 52.5005},
		{ID: 3, ShortName: "Central", Long: 20.000, Lat: 52.500}, // far away, separate cluster
		{ID: 4, ShortName: "North Yard", Long: 13.500, Lat: 52.600},
	}
}

func docIndexes(n int) ([]int, []int) {
	docOf := make([]int, n)
	stopIdxOf := make([]int, n)
	for i := range stopIdxOf {
		stopIdxOf[i] = i
	}
	return docOf, stopIdxOf
}

func TestBuildClustersNearbyStopsWithSameShortName(t *testing.T) {
	stops := stopsFixture()
	docOf, stopIdxOf := docIndexes(len(stops))

	result := Build(stops, docOf, stopIdxOf)

	// "Central" splits into two clusters (near pair + far outlier); "North Yard" is its own cluster.
	assert.Len(t, result.Nodes, 3)
}

func TestBuildClustersAreDisjointAndCoverAllStops(t *testing.T) {
	stops := stopsFixture()
	docOf, stopIdxOf := docIndexes(len(stops))

	result := Build(stops, docOf, stopIdxOf)

	assert.Len(t, result.RefMap, len(stops))
	for _, s := range stops {
		ref, ok := result.RefMap[s.ID]
		require.True(t, ok)
		require.True(t, ref.NodeIndex >= 0 && ref.NodeIndex < len(result.Nodes))
	}
}

func TestBuildNodeIDIsXorFoldPermutationInvariant(t *testing.T) {
	stops := stopsFixture()[:2] // the two nearby "Central" stops
	docOf, stopIdxOf := docIndexes(len(stops))
	result := Build(stops, docOf, stopIdxOf)
	require.Len(t, result.Nodes, 1)

	reversed := []model.ScheduledStopPoint{stops[1], stops[0]}
	docOf2, stopIdxOf2 := docIndexes(len(reversed))
	result2 := Build(reversed, docOf2, stopIdxOf2)
	require.Len(t, result2.Nodes, 1)

	assert.Equal(t, result.Nodes[0].ID, result2.Nodes[0].ID)
	assert.Equal(t, stops[0].ID^stops[1].ID, result.Nodes[0].ID)
}

func TestBuildCentroidIsAverageOfMembers(t *testing.T) {
	stops := stopsFixture()[:2]
	docOf, stopIdxOf := docIndexes(len(stops))
	result := Build(stops, docOf, stopIdxOf)
	require.Len(t, result.Nodes, 1)

	wantLong := (stops[0].Long + stops[1].Long) / 2
	wantLat := (stops[0].Lat + stops[1].Lat) / 2
	assert.InDelta(t, wantLong, result.Nodes[0].Long, 1e-4)
	assert.InDelta(t, wantLat, result.Nodes[0].Lat, 1e-4)
}

func TestBuildEmptyInput(t *testing.T) {
	result := Build(nil, nil, nil)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.RefMap)
}
