package csvfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/netex-graph/model"
)

func TestWriteNodesReplacesDoubleQuotesWithSingle(t *testing.T) {
	nodes := []model.Node{{ID: 1, ShortName: `"Central" Station`, Long: 13.4, Lat: 52.5}}

	var buf bytes.Buffer
	require.NoError(t, WriteNodes(&buf, nodes))

	assert.Contains(t, buf.String(), "'Central' Station")
	assert.NotContains(t, buf.String(), `"Central"`)
}

func TestWriteNodesFormatsIDAsDecimal(t *testing.T) {
	nodes := []model.Node{{ID: 18446744073709551615, ShortName: "X", Long: 0, Lat: 0}}

	var buf bytes.Buffer
	require.NoError(t, WriteNodes(&buf, nodes))

	assert.Contains(t, buf.String(), "18446744073709551615")
}

func TestWriteEdgesUsesQuotedNamesAndEscapedJSON(t *testing.T) {
	nodes := []model.Node{{ShortName: "A"}, {ShortName: "B"}}
	edges := []model.Edge{
		{
			StartNode: 0, EndNode: 1, WalkSeconds: model.NoWalk,
			Timetable: model.Timetable{
				Journeys: []model.Journey{{Departure: 480, Arrival: 485, Line: "Line 1"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, nodes, edges))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `"A","B",`))
	assert.Contains(t, out, `\"d\":480`)
	assert.Contains(t, out, `\"l\":\"Line 1\"`)
}
