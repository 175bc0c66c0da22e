package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/pipeline"
)

// layoutCommand creates the layout command for computing process layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output        string
		noCache       bool
		nodeSpacingX  float64
		layerSpacingY float64
	)

	cmd := &cobra.Command{
		Use:   "layout [process.json]",
		Short: "Compute a layered layout for a process graph",
		Long: `Compute a layered layout for a process graph.

The layout command takes a process document (produced by 'export' or written
by hand) and assigns each node a layer and a position. The output is the same
document with the layout section attached, ready for rendering or for a
dashboard to consume.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, noCache, nodeSpacingX, layerSpacingY)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&nodeSpacingX, "node-spacing", 0, "horizontal spacing between sibling nodes")
	cmd.Flags().Float64Var(&layerSpacingY, "layer-spacing", 0, "vertical spacing between layers")

	return cmd
}

// runLayout loads the document, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, nodeSpacingX, layerSpacingY float64) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	doc, err := export.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	g, err := export.ToGraph(doc)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	runner, err := c.newLocalRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	opts := optionsFromConfig(cfg)
	opts.ProcessID = doc.Process.ID
	opts.Logger = c.Logger
	if nodeSpacingX > 0 {
		opts.NodeSpacingX = nodeSpacingX
	}
	if layerSpacingY > 0 {
		opts.LayerSpacingY = layerSpacingY
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	hash := pipeline.GraphHash(doc.Process, g)
	lr, cacheHit, err := runner.LayoutWithCacheInfo(ctx, hash, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if lr.Degenerate {
		printWarning("No start node and no source node; layout rooted at smallest node ID")
	}
	if len(lr.Isolated) > 0 {
		printWarning("Unreachable nodes placed in layer 0: %s", strings.Join(lr.Isolated, ", "))
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	out := export.Build(doc.Process, g, export.Sections{Layout: lr})
	if err := export.WriteFile(out, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete: %d layers", len(lr.Layers()))
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Render", "procscope export "+outputPath+" --format svg")

	return nil
}
