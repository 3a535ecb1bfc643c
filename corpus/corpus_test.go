package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/netex-graph/model"
)

func TestUnionConcatenatesAllDocuments(t *testing.T) {
	a := model.NetexData{
		ScheduledStopPoints: []model.ScheduledStopPoint{{ID: 1}},
		Lines:               []model.Line{{ID: 10}},
	}
	b := model.NetexData{
		ScheduledStopPoints: []model.ScheduledStopPoint{{ID: 2}, {ID: 3}},
		Lines:               []model.Line{{ID: 20}},
	}

	out := Union([]model.NetexData{a, b})

	assert.Len(t, out.ScheduledStopPoints, 3)
	assert.Len(t, out.Lines, 2)
}

func TestUnionEmptyCorpus(t *testing.T) {
	out := Union(nil)
	assert.Empty(t, out.ScheduledStopPoints)
}

func TestBoundingBoxContains(t *testing.T) {
	box := DefaultBoundingBox
	assert.True(t, box.Contains(10.0, 50.0))
	assert.False(t, box.Contains(0.0, 50.0))
	assert.False(t, box.Contains(10.0, 60.0))
}

func TestBoundingBoxContainsInclusiveOfEdges(t *testing.T) {
	box := BoundingBox{MinLong: 0, MinLat: 0, MaxLong: 10, MaxLat: 10}
	assert.True(t, box.Contains(0, 0))
	assert.True(t, box.Contains(10, 10))
}

func TestFilterBoundingBoxDropsOutsideStops(t *testing.T) {
	data := model.NetexData{
		ScheduledStopPoints: []model.ScheduledStopPoint{
			{ID: 1, Long: 10, Lat: 50},
			{ID: 2, Long: 0, Lat: 0},
		},
		Lines: []model.Line{{ID: 99}},
	}
	docOf := []int{0, 1}
	stopIdxOf := []int{5, 7}

	filtered, filteredDocOf, filteredStopIdxOf := FilterBoundingBox(data, DefaultBoundingBox, docOf, stopIdxOf)

	assert.Len(t, filtered.ScheduledStopPoints, 1)
	assert.Equal(t, uint64(1), filtered.ScheduledStopPoints[0].ID)
	assert.Len(t, filtered.Lines, 1)
	assert.Equal(t, []int{0}, filteredDocOf)
	assert.Equal(t, []int{5}, filteredStopIdxOf)
}

func TestFilterBoundingBoxKeepsOriginArraysAlignedWhenPredecessorDropped(t *testing.T) {
	data := model.NetexData{
		ScheduledStopPoints: []model.ScheduledStopPoint{
			{ID: 1, Long: 0, Lat: 0},   // dropped, outside box
			{ID: 2, Long: 10, Lat: 50}, // kept
			{ID: 3, Long: 10, Lat: 50}, // kept
		},
	}
	docOf := []int{0, 1, 2}
	stopIdxOf := []int{9, 8, 7}

	filtered, filteredDocOf, filteredStopIdxOf := FilterBoundingBox(data, DefaultBoundingBox, docOf, stopIdxOf)

	require.Len(t, filtered.ScheduledStopPoints, 2)
	for i, s := range filtered.ScheduledStopPoints {
		if s.ID == 2 {
			assert.Equal(t, 1, filteredDocOf[i])
			assert.Equal(t, 8, filteredStopIdxOf[i])
		}
		if s.ID == 3 {
			assert.Equal(t, 2, filteredDocOf[i])
			assert.Equal(t, 7, filteredStopIdxOf[i])
		}
	}
}
