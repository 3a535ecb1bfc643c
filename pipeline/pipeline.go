// Package pipeline orchestrates C1 through C8 (spec §2/§5): parallel
// extraction, corpus aggregation, clustering, lookup-table construction,
// journey-to-edge mapping, the walk overlay, and edge finishing. It also
// encodes the nodes.json sidecar; the binary and CSV outputs are written by
// cmd/converter with binfmt and csvfmt. Stage start/finish and per-document recoverable
// errors are logged with logrus, matching the teacher's concentration of
// logging in its orchestration and CLI layers rather than every package.
package pipeline

import (
	"fmt"
	"runtime"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/netex-graph/archive"
	"github.com/theoremus-urban-solutions/netex-graph/cluster"
	"github.com/theoremus-urban-solutions/netex-graph/corpus"
	pipelineerrors "github.com/theoremus-urban-solutions/netex-graph/errors"
	"github.com/theoremus-urban-solutions/netex-graph/finish"
	"github.com/theoremus-urban-solutions/netex-graph/graphbuild"
	"github.com/theoremus-urban-solutions/netex-graph/lookup"
	"github.com/theoremus-urban-solutions/netex-graph/memory"
	"github.com/theoremus-urban-solutions/netex-graph/model"
	"github.com/theoremus-urban-solutions/netex-graph/netex"
	"github.com/theoremus-urban-solutions/netex-graph/walk"
)

// ProgressFunc is re-exported for callers that only import pipeline.
type ProgressFunc = archive.ProgressFunc

// Options configures one run.
type Options struct {
	ArchiveBytes []byte
	WalkEdges    []model.WalkEdge
	BoundingBox  *corpus.BoundingBox
	Progress     ProgressFunc
	Logger       *logrus.Logger
	// MemoryLimitMB bounds the driver's forced-GC pressure check (0 disables
	// the limit; the interval-based GC still runs). See memory.Manager.
	MemoryLimitMB uint64
}

// Result is everything a run produces: the final graph, the C4 id map (for
// resolving MetaNode JSON), and the diagnostic report.
type Result struct {
	Graph  model.Graph
	IDMap  map[uint64]int
	Report *pipelineerrors.Report
}

// Run executes the whole pipeline and returns the graph or the first fatal
// error encountered, per spec §7/§5's "aborted by an unrecoverable parse
// error" contract.
func Run(opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	report := pipelineerrors.NewReport()
	memManager := memory.NewManager(opts.MemoryLimitMB)
	bufPool := memory.NewBufferPool()

	log.Info("pipeline: reading archive")
	members, err := archive.ReadAll(opts.ArchiveBytes, opts.Progress, bufPool)
	if err != nil {
		return nil, pipelineerrors.New(pipelineerrors.KindIOError, "archive", "read archive", err)
	}

	log.WithField("documents", len(members)).Info("pipeline: extracting (C2)")
	docs, docOf, stopIdxOf := extractAll(members, report, log, bufPool)
	memManager.MaybeForceGC()

	log.Info("pipeline: aggregating corpus (C3)")
	union := corpus.Union(docs)
	if opts.BoundingBox != nil {
		union, docOf, stopIdxOf = corpus.FilterBoundingBox(union, *opts.BoundingBox, docOf, stopIdxOf)
	}

	log.WithField("stops", len(union.ScheduledStopPoints)).Info("pipeline: clustering (C4)")
	clustered := cluster.Build(union.ScheduledStopPoints, docOf, stopIdxOf)

	log.Info("pipeline: building lookup tables (C5)")
	tables := lookup.Build(union)

	log.WithField("journeys", len(union.ServiceJourneys)).Info("pipeline: mapping journeys to edges (C6)")
	stopToNode := make(map[uint64]int, len(clustered.RefMap))
	for stopID, ref := range clustered.RefMap {
		stopToNode[stopID] = ref.NodeIndex
	}
	edgeMap, err := graphbuild.Build(union.ServiceJourneys, stopToNode, tables)
	if err != nil {
		pe := pipelineerrors.New(pipelineerrors.KindMissingReference, "graphbuild", "day type assignment", err)
		report.Fatal = pe
		return nil, pe
	}

	if len(opts.WalkEdges) > 0 {
		log.WithField("walk_edges", len(opts.WalkEdges)).Info("pipeline: applying walk overlay (C7)")
		dropped := walk.Apply(edgeMap, clustered.Nodes, clustered.IDMap, opts.WalkEdges)
		if dropped > 0 {
			log.WithField("dropped", dropped).Warn("pipeline: walk overlay dropped unresolvable or overlong entries")
			for i := 0; i < dropped; i++ {
				report.Add(pipelineerrors.KindUnresolvableWalkEndpoint, "walk", "endpoint resolution or distance gate", nil)
			}
		}
	}

	log.Info("pipeline: finishing edges (C8)")
	edges, err := finish.Run(edgeMap, clustered.Nodes, union.OperatingPeriods)
	if err != nil {
		pe := pipelineerrors.New(pipelineerrors.KindMissingReference, "finish", "operating period remap", err)
		report.Fatal = pe
		return nil, pe
	}

	// The input corpus can be dropped now that every edge carries its own
	// copy of the data it needs (spec §5: "halve peak memory").
	union = corpus.Union(nil)
	memManager.MaybeForceGC()

	report.Finalize()
	log.WithFields(logrus.Fields{"nodes": len(clustered.Nodes), "edges": len(edges)}).Info("pipeline: complete")

	return &Result{
		Graph:  model.Graph{Nodes: clustered.Nodes, Edges: edges},
		IDMap:  clustered.IDMap,
		Report: report,
	}, nil
}

// extractAll runs C2 over every archive member in parallel, recording a
// recoverable diagnostic and dropping the document on parse failure rather
// than aborting the run, per spec §4.2's error policy.
func extractAll(members []archive.Member, report *pipelineerrors.Report, log *logrus.Logger, pool *memory.BufferPool) ([]model.NetexData, []int, []int) {
	results := make([]model.NetexData, len(members))
	oks := make([]bool, len(members))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			data, err := netex.ExtractBytes(m.Data)
			pool.Put(m.Data)
			if err != nil {
				log.WithError(err).WithField("document", m.Name).Warn("pipeline: dropping malformed document")
				return nil
			}
			results[i] = data
			oks[i] = true
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]model.NetexData, 0, len(members))
	var docOf, stopIdxOf []int
	docIndex := 0
	for i, ok := range oks {
		if !ok {
			report.Add(pipelineerrors.KindMalformedDocument, "netex", members[i].Name, nil)
			continue
		}
		docs = append(docs, results[i])
		for stopIdx := range results[i].ScheduledStopPoints {
			docOf = append(docOf, docIndex)
			stopIdxOf = append(stopIdxOf, stopIdx)
		}
		docIndex++
	}

	return docs, docOf, stopIdxOf
}

// MetaNodes builds the JSON sidecar records for graph.Nodes (spec §4.9).
func MetaNodes(nodes []model.Node) []model.MetaNode {
	out := make([]model.MetaNode, len(nodes))
	for i, n := range nodes {
		out[i] = model.MetaNode{
			Name:   n.ShortName,
			ID:     fmt.Sprintf("%d", n.ID),
			Coords: [2]float32{n.Long, n.Lat},
		}
	}
	return out
}

// EncodeMetaNodesJSON marshals MetaNode records with json-iterator, matching
// the sidecar writer's library choice.
func EncodeMetaNodesJSON(nodes []model.Node) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(MetaNodes(nodes))
}

// DecodeWalkEdgesJSON decodes the external walk-transfer file.
func DecodeWalkEdgesJSON(data []byte) ([]model.WalkEdge, error) {
	var edges []model.WalkEdge
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("pipeline: decode walk edges: %w", err)
	}
	return edges, nil
}
