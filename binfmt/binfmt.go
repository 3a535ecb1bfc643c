// Package binfmt implements spec §4.9's deterministic little-endian binary
// layout, built with encoding/binary over a bytes.Buffer before a single
// flushed write — matching the teacher's export style of assembling a
// complete in-memory buffer before touching the filesystem
// (exporter/gtfs_exporter.go). Decode exists only to support the round-trip
// test spec §8 names; it is not part of the external interface.
package binfmt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/theoremus-urban-solutions/netex-graph/model"
)

// Encode writes graph to w in spec §4.9's layout.
func Encode(w io.Writer, graph model.Graph) error {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(graph.Nodes))); err != nil {
		return err
	}
	for _, n := range graph.Nodes {
		if err := writeNode(buf, n); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(graph.Edges))); err != nil {
		return err
	}
	for _, e := range graph.Edges {
		if err := writeEdge(buf, e); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(buf *bytes.Buffer, n model.Node) error {
	if err := binary.Write(buf, binary.LittleEndian, n.ID); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, n.Lat); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, n.Long); err != nil {
		return err
	}
	nameBytes := []byte(n.ShortName)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(nameBytes))); err != nil {
		return err
	}
	_, err := buf.Write(nameBytes)
	return err
}

func writeEdge(buf *bytes.Buffer, e model.Edge) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(e.StartNode)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(e.EndNode)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, e.WalkSeconds); err != nil {
		return err
	}

	journeySection := new(bytes.Buffer)
	for _, j := range e.Timetable.Journeys {
		binary.Write(journeySection, binary.LittleEndian, j.Arrival)
		binary.Write(journeySection, binary.LittleEndian, j.Departure)
		binary.Write(journeySection, binary.LittleEndian, j.OperatingPeriod)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(journeySection.Len())); err != nil {
		return err
	}
	if _, err := buf.Write(journeySection.Bytes()); err != nil {
		return err
	}

	periodsSection := new(bytes.Buffer)
	for _, p := range e.Timetable.Periods {
		binary.Write(periodsSection, binary.LittleEndian, p.From)
		binary.Write(periodsSection, binary.LittleEndian, p.To)
		binary.Write(periodsSection, binary.LittleEndian, uint32(len(p.ValidDay)))
		periodsSection.Write(p.ValidDay)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(periodsSection.Len())); err != nil {
		return err
	}
	_, err := buf.Write(periodsSection.Bytes())
	return err
}

// Decode reads back the layout Encode writes. Only used by the round-trip
// test; short_name and valid_day bytes round-trip exactly, but the decoded
// graph omits the base64 sidecar fields Encode never persisted.
func Decode(r io.Reader) (model.Graph, error) {
	var graph model.Graph

	var nodeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &nodeCount); err != nil {
		return graph, fmt.Errorf("binfmt: read node_count: %w", err)
	}
	graph.Nodes = make([]model.Node, nodeCount)
	for i := range graph.Nodes {
		n, err := readNode(r)
		if err != nil {
			return graph, fmt.Errorf("binfmt: read node %d: %w", i, err)
		}
		graph.Nodes[i] = n
	}

	var edgeCount uint32
	if err := binary.Read(r, binary.LittleEndian, &edgeCount); err != nil {
		return graph, fmt.Errorf("binfmt: read edge_count: %w", err)
	}
	graph.Edges = make([]model.Edge, edgeCount)
	for i := range graph.Edges {
		e, err := readEdge(r)
		if err != nil {
			return graph, fmt.Errorf("binfmt: read edge %d: %w", i, err)
		}
		graph.Edges[i] = e
	}

	return graph, nil
}

func readNode(r io.Reader) (model.Node, error) {
	var n model.Node
	if err := binary.Read(r, binary.LittleEndian, &n.ID); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Lat); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Long); err != nil {
		return n, err
	}
	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return n, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return n, err
	}
	n.ShortName = string(name)
	return n, nil
}

func readEdge(r io.Reader) (model.Edge, error) {
	var e model.Edge
	var start, end uint32
	if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
		return e, err
	}
	if err := binary.Read(r, binary.LittleEndian, &end); err != nil {
		return e, err
	}
	e.StartNode, e.EndNode = int(start), int(end)
	if err := binary.Read(r, binary.LittleEndian, &e.WalkSeconds); err != nil {
		return e, err
	}

	var journeySectionLen uint32
	if err := binary.Read(r, binary.LittleEndian, &journeySectionLen); err != nil {
		return e, err
	}
	journeyCount := journeySectionLen / 6
	e.Timetable.Journeys = make([]model.Journey, journeyCount)
	for i := range e.Timetable.Journeys {
		var arrival, departure, period uint16
		if err := binary.Read(r, binary.LittleEndian, &arrival); err != nil {
			return e, err
		}
		if err := binary.Read(r, binary.LittleEndian, &departure); err != nil {
			return e, err
		}
		if err := binary.Read(r, binary.LittleEndian, &period); err != nil {
			return e, err
		}
		e.Timetable.Journeys[i] = model.Journey{Arrival: arrival, Departure: departure, OperatingPeriod: period}
	}

	var periodsSectionLen uint32
	if err := binary.Read(r, binary.LittleEndian, &periodsSectionLen); err != nil {
		return e, err
	}
	remaining := int64(periodsSectionLen)
	for remaining > 0 {
		var from, to, validLen uint32
		if err := binary.Read(r, binary.LittleEndian, &from); err != nil {
			return e, err
		}
		if err := binary.Read(r, binary.LittleEndian, &to); err != nil {
			return e, err
		}
		if err := binary.Read(r, binary.LittleEndian, &validLen); err != nil {
			return e, err
		}
		validDay := make([]byte, validLen)
		if _, err := io.ReadFull(r, validDay); err != nil {
			return e, err
		}
		e.Timetable.Periods = append(e.Timetable.Periods, model.OperatingPeriod{From: from, To: to, ValidDay: validDay})
		remaining -= int64(12 + validLen)
	}

	return e, nil
}
