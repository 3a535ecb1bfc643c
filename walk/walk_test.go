package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/netex-graph/graphbuild"
	"github.com/theoremus-urban-solutions/netex-graph/model"
)

func nearbyNodes() []model.Node {
	return []model.Node{
		{ID: 1, Long: 13.400, Lat: 52.500},
		{ID: 2, Long: 13.405, Lat: 52.503}, // a few hundred meters away
	}
}

func TestApplyCreatesDistinctEdgesInEachDirection(t *testing.T) {
	nodes := nearbyNodes()
	idMap := map[uint64]int{1: 0, 2: 1}
	m := make(graphbuild.EdgeMap)

	dropped := Apply(m, nodes, idMap, []model.WalkEdge{{Start: 1, End: 2, Duration: 90}})

	assert.Equal(t, 0, dropped)
	require.Contains(t, m, graphbuild.EdgeKey{Start: 0, End: 1})
	require.Contains(t, m, graphbuild.EdgeKey{Start: 1, End: 0})

	forward := m[graphbuild.EdgeKey{Start: 0, End: 1}]
	backward := m[graphbuild.EdgeKey{Start: 1, End: 0}]

	assert.Equal(t, 0, forward.StartNode)
	assert.Equal(t, 1, forward.EndNode)
	assert.Equal(t, 1, backward.StartNode)
	assert.Equal(t, 0, backward.EndNode)
	assert.NotEqual(t, forward.EndNode, backward.EndNode, "backward edge must not repeat the forward edge's end node")

	assert.Equal(t, uint16(90), forward.WalkSeconds)
	assert.Equal(t, uint16(90), backward.WalkSeconds)
}

func TestApplyDropsUnresolvableEndpoint(t *testing.T) {
	nodes := nearbyNodes()
	idMap := map[uint64]int{1: 0}
	m := make(graphbuild.EdgeMap)

	dropped := Apply(m, nodes, idMap, []model.WalkEdge{{Start: 1, End: 999, Duration: 10}})

	assert.Equal(t, 1, dropped)
	assert.Empty(t, m)
}

func TestApplyDropsEntryOverOneKilometer(t *testing.T) {
	nodes := []model.Node{
		{ID: 1, Long: 13.0, Lat: 52.0},
		{ID: 2, Long: 20.0, Lat: 52.0},
	}
	idMap := map[uint64]int{1: 0, 2: 1}
	m := make(graphbuild.EdgeMap)

	dropped := Apply(m, nodes, idMap, []model.WalkEdge{{Start: 1, End: 2, Duration: 10}})

	assert.Equal(t, 1, dropped)
	assert.Empty(t, m)
}

func TestApplyUpdatesExistingEdgeWalkSeconds(t *testing.T) {
	nodes := nearbyNodes()
	idMap := map[uint64]int{1: 0, 2: 1}
	m := graphbuild.EdgeMap{
		graphbuild.EdgeKey{Start: 0, End: 1}: {StartNode: 0, EndNode: 1, WalkSeconds: model.NoWalk},
	}

	Apply(m, nodes, idMap, []model.WalkEdge{{Start: 1, End: 2, Duration: 45}})

	assert.Equal(t, uint16(45), m[graphbuild.EdgeKey{Start: 0, End: 1}].WalkSeconds)
}

func TestSaturatingRoundU16ClampsNegativeAndOverflow(t *testing.T) {
	assert.Equal(t, uint16(0), saturatingRoundU16(-5))
	assert.Equal(t, uint16(65535), saturatingRoundU16(1e9))
	assert.Equal(t, uint16(90), saturatingRoundU16(89.6))
}
