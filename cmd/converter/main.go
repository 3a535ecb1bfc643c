// Command converter runs the NeTEx corpus-to-graph pipeline (spec §6):
// reads an archive of NeTEx XML documents, clusters stops into nodes,
// builds timetable edges, optionally overlays walking transfers, and
// writes the binary, CSV, and JSON sidecar outputs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/netex-graph/binfmt"
	"github.com/theoremus-urban-solutions/netex-graph/corpus"
	"github.com/theoremus-urban-solutions/netex-graph/csvfmt"
	pipelineerrors "github.com/theoremus-urban-solutions/netex-graph/errors"
	"github.com/theoremus-urban-solutions/netex-graph/pipeline"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		outputFormat string
		walkwaysPath string
		bboxFlag     string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "converter <archive.zip>",
		Short: "Cluster a NeTEx corpus into a deduplicated stop-and-timetable graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], outputFormat, walkwaysPath, bboxFlag, workers)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output-format", "o", "all", "output format: binary, csv, json, or all")
	cmd.Flags().StringVarP(&walkwaysPath, "walkways", "w", "", "path to a JSON file of walking-transfer edges")
	cmd.Flags().StringVarP(&bboxFlag, "bbox", "f", "5.5,47.0,15.5,55.5", "bounding box filter: minLong,minLat,maxLong,maxLat (empty to disable)")
	cmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "override the worker pool size")

	return cmd
}

func runConvert(archivePath, outputFormat, walkwaysPath, bboxFlag string, workers int) error {
	log := logrus.New()
	if workers > 0 {
		runtime.GOMAXPROCS(workers)
	}

	archiveBytes, err := os.ReadFile(archivePath)
	if err != nil {
		return pipelineerrors.New(pipelineerrors.KindIOError, "cli", "read archive file", err)
	}

	opts := pipeline.Options{ArchiveBytes: archiveBytes, Logger: log}

	if box, ok, err := parseBoundingBox(bboxFlag); err != nil {
		return err
	} else if ok {
		opts.BoundingBox = &box
	}

	if walkwaysPath != "" {
		data, err := os.ReadFile(walkwaysPath)
		if err != nil {
			return pipelineerrors.New(pipelineerrors.KindIOError, "cli", "read walkways file", err)
		}
		edges, err := pipeline.DecodeWalkEdgesJSON(data)
		if err != nil {
			return err
		}
		opts.WalkEdges = edges
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		return err
	}

	log.Infof("%d deduped nodes, %d edges", len(result.Graph.Nodes), len(result.Graph.Edges))
	if result.Report != nil {
		fmt.Print(result.Report.Summary())
	}

	return writeOutputs(archivePath, outputFormat, result)
}

func parseBoundingBox(flagValue string) (corpus.BoundingBox, bool, error) {
	if strings.TrimSpace(flagValue) == "" {
		return corpus.BoundingBox{}, false, nil
	}
	parts := strings.Split(flagValue, ",")
	if len(parts) != 4 {
		return corpus.BoundingBox{}, false, fmt.Errorf("cli: --bbox must have 4 comma-separated values, got %q", flagValue)
	}
	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return corpus.BoundingBox{}, false, fmt.Errorf("cli: --bbox value %q: %w", p, err)
		}
		values[i] = v
	}
	return corpus.BoundingBox{
		MinLong: float32(values[0]), MinLat: float32(values[1]),
		MaxLong: float32(values[2]), MaxLat: float32(values[3]),
	}, true, nil
}

func writeOutputs(archivePath, format string, result *pipeline.Result) error {
	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	dir := filepath.Dir(archivePath)

	writeBinary := format == "all" || format == "binary"
	writeCSV := format == "all" || format == "csv"
	writeJSON := format == "all" || format == "json"

	if writeBinary {
		f, err := os.Create(filepath.Join(dir, base+".graph.bin"))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := binfmt.Encode(f, result.Graph); err != nil {
			return err
		}
	}

	if writeCSV {
		nodesFile, err := os.Create(filepath.Join(dir, "nodes.csv"))
		if err != nil {
			return err
		}
		defer nodesFile.Close()
		if err := csvfmt.WriteNodes(nodesFile, result.Graph.Nodes); err != nil {
			return err
		}

		edgesFile, err := os.Create(filepath.Join(dir, "edges.csv"))
		if err != nil {
			return err
		}
		defer edgesFile.Close()
		if err := csvfmt.WriteEdges(edgesFile, result.Graph.Nodes, result.Graph.Edges); err != nil {
			return err
		}
	}

	if writeJSON {
		data, err := pipeline.EncodeMetaNodesJSON(result.Graph.Nodes)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "nodes.json"), data, 0o644); err != nil {
			return err
		}
	}

	return nil
}
