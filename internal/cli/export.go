package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/pipeline"
)

// exportFormats is the set of supported export formats.
var exportFormats = map[string]bool{
	"json": true,
	"csv":  true,
	"dot":  true,
	"svg":  true,
}

// exportCommand creates the export command for writing analyzed documents.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output        string
		format        string
		noCache       bool
		weight        string
		maxPathLength int
		detailed      bool
	)

	cmd := &cobra.Command{
		Use:   "export [process.json]",
		Short: "Export a process with layout and analyses attached",
		Long: `Export a process with layout and analyses attached.

The export command runs the full pipeline over a process document and writes
the result in the requested format:

  json  Complete document: graph, layout, paths, bottlenecks, critical path
  csv   Two files: <output>.nodes.csv and <output>.edges.csv
  dot   Graphviz source with pinned layout positions
  svg   Rendered diagram`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !exportFormats[format] {
				return fmt.Errorf("invalid format: %q (must be one of: json, csv, dot, svg)", format)
			}
			return c.runExport(cmd.Context(), args[0], output, format, noCache, weight, maxPathLength, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json (default), csv, dot, svg")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include weights and roles in dot/svg labels")
	analysisFlags(cmd, &noCache, &weight, &maxPathLength)

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output, format string, noCache bool, weight string, maxPathLength int, detailed bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	doc, g, err := loadDocument(input)
	if err != nil {
		return err
	}

	runner, err := c.newLocalRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	opts := optionsFromConfig(cfg)
	opts.ProcessID = doc.Process.ID
	opts.Logger = c.Logger
	if weight != "" {
		opts.Weight = weight
	}
	if maxPathLength > 0 {
		opts.MaxPathLength = maxPathLength
	}

	spinner := newSpinnerWithContext(ctx, "Analyzing process...")
	spinner.Start()

	hash := pipeline.GraphHash(doc.Process, g)
	lr, _, err := runner.LayoutWithCacheInfo(ctx, hash, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	a, _, err := runner.AnalyzeWithCacheInfo(ctx, hash, g, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}

	switch format {
	case "json":
		full := export.Build(doc.Process, g, export.Sections{
			Layout:      lr,
			Paths:       a.Paths,
			Bottlenecks: a.Bottlenecks,
			Critical:    a.Critical,
		})
		if err := export.WriteFile(full, outputPath); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		printSuccess("Exported document")
		printFile(outputPath)

	case "csv":
		base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
		nodesPath := base + ".nodes.csv"
		edgesPath := base + ".edges.csv"

		nodes, err := export.NodesCSV(g)
		if err != nil {
			return fmt.Errorf("encode nodes csv: %w", err)
		}
		edges, err := export.EdgesCSV(g)
		if err != nil {
			return fmt.Errorf("encode edges csv: %w", err)
		}
		if err := os.WriteFile(nodesPath, nodes, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", nodesPath, err)
		}
		if err := os.WriteFile(edgesPath, edges, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", edgesPath, err)
		}
		printSuccess("Exported CSV tables")
		printFile(nodesPath)
		printFile(edgesPath)

	case "dot":
		dot := export.ToDOT(g, export.DOTOptions{Detailed: detailed, Layout: lr})
		if err := os.WriteFile(outputPath, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		printSuccess("Exported Graphviz source")
		printFile(outputPath)

	case "svg":
		dot := export.ToDOT(g, export.DOTOptions{Detailed: detailed, Layout: lr})
		svg, err := export.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(outputPath, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
		printSuccess("Rendered diagram")
		printFile(outputPath)
	}

	printStats(g.NodeCount(), g.EdgeCount(), false)
	return nil
}
