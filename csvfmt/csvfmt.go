// Package csvfmt writes the nodes.csv and edges.csv sidecars spec §4.9
// names. nodes.csv uses encoding/csv for correct quoting; edges.csv is
// hand-built to get the exact `"start","end","<escaped JSON>"` shape with
// serde-style short keys and backslash-escaped embedded quotes, matching
// original_source/src/main.rs's `.replace('"', "\\\"")`, since encoding/csv
// would re-quote the embedded JSON in a way that does not match the
// documented layout.
package csvfmt

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/theoremus-urban-solutions/netex-graph/model"
)

// WriteNodes writes one row per node: name,long,lat,id. encoding/csv puts
// the name in double quotes only when CSV needs it (for example a comma or
// a leading space in the name); other names are written unquoted. Double
// quotes inside names are replaced with single quotes before encoding.
func WriteNodes(w io.Writer, nodes []model.Node) error {
	cw := csv.NewWriter(w)
	for _, n := range nodes {
		name := strings.ReplaceAll(n.ShortName, `"`, `'`)
		row := []string{
			name,
			strconv.FormatFloat(float64(n.Long), 'f', -1, 32),
			strconv.FormatFloat(float64(n.Lat), 'f', -1, 32),
			strconv.FormatUint(n.ID, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdges writes one row per edge: "start_name","end_name","<json>" where
// the JSON is the edge's Timetable, serialized with its short struct tags.
func WriteEdges(w io.Writer, nodes []model.Node, edges []model.Edge) error {
	for _, e := range edges {
		startName := strings.ReplaceAll(nodes[e.StartNode].ShortName, `"`, `'`)
		endName := strings.ReplaceAll(nodes[e.EndNode].ShortName, `"`, `'`)

		payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(e.Timetable)
		if err != nil {
			return err
		}
		escaped := strings.ReplaceAll(string(payload), `"`, `\"`)

		if _, err := fmt.Fprintf(w, "%q,%q,\"%s\"\n", startName, endName, escaped); err != nil {
			return err
		}
	}
	return nil
}
