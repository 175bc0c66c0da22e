package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/export"
	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/process"
	"github.com/procscope/procscope/pkg/process/analyze"
)

// =============================================================================
// Shared Helpers
// =============================================================================

// loadDocument reads a process document and rebuilds its graph.
func loadDocument(input string) (export.Document, *process.Graph, error) {
	doc, err := export.ReadFile(input)
	if err != nil {
		return export.Document{}, nil, fmt.Errorf("load document %s: %w", input, err)
	}
	g, err := export.ToGraph(doc)
	if err != nil {
		return export.Document{}, nil, fmt.Errorf("build graph: %w", err)
	}
	return doc, g, nil
}

// runAnalysis is the shared body of the analysis commands: load the
// document, build a runner, run every analyzer once (cached), and hand the
// bundle to the command for printing.
func (c *CLI) runAnalysis(ctx context.Context, input string, noCache bool, weight string, maxPathLength int) (export.Document, *process.Graph, pipeline.Analysis, bool, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return export.Document{}, nil, pipeline.Analysis{}, false, err
	}

	doc, g, err := loadDocument(input)
	if err != nil {
		return export.Document{}, nil, pipeline.Analysis{}, false, err
	}

	runner, err := c.newLocalRunner(ctx, cfg, noCache)
	if err != nil {
		return export.Document{}, nil, pipeline.Analysis{}, false, fmt.Errorf("initialize runner: %w", err)
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

	hash := pipeline.GraphHash(doc.Process, g)
	a, cacheHit, err := runner.AnalyzeWithCacheInfo(ctx, hash, g, opts)
	if err != nil {
		return export.Document{}, nil, pipeline.Analysis{}, false, fmt.Errorf("analyze: %w", err)
	}
	return doc, g, a, cacheHit, nil
}

// analysisFlags registers the flags shared by the analysis commands.
func analysisFlags(cmd *cobra.Command, noCache *bool, weight *string, maxPathLength *int) {
	cmd.Flags().BoolVar(noCache, "no-cache", false, "disable caching")
	if weight != nil {
		cmd.Flags().StringVarP(weight, "weight", "w", "", "weight attribute: duration (default), cost")
	}
	if maxPathLength != nil {
		cmd.Flags().IntVar(maxPathLength, "max-path-length", 0, "path length bound (default: 2x node count)")
	}
}

// =============================================================================
// paths
// =============================================================================

// pathsCommand creates the paths command for enumerating execution paths.
func (c *CLI) pathsCommand() *cobra.Command {
	var (
		noCache       bool
		maxPathLength int
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "paths [process.json]",
		Short: "Enumerate simple start-to-end paths through a process",
		Long: `Enumerate simple start-to-end paths through a process.

Each path starts at a start node and ends at an end node without repeating
any node. Enumeration is bounded by --max-path-length to keep dense graphs
tractable; hitting the bound prints the paths found so far with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, a, cacheHit, err := c.runAnalysis(cmd.Context(), args[0], noCache, "", maxPathLength)
			if err != nil {
				return err
			}

			if a.Truncated {
				printWarning("Enumeration stopped at the path length bound; results are partial")
			}
			if len(a.Paths) == 0 {
				printInfo("No start-to-end paths found")
				return nil
			}

			printSuccess("Found %d paths", len(a.Paths))
			shown := a.Paths
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, p := range shown {
				printDetail("%s", strings.Join(p, " "+iconArrow+" "))
			}
			if len(shown) < len(a.Paths) {
				printDetail("... and %d more (raise --limit to see them)", len(a.Paths)-len(shown))
			}
			printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
			return nil
		},
	}

	analysisFlags(cmd, &noCache, nil, &maxPathLength)
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of paths to print (0 = all)")

	return cmd
}

// =============================================================================
// bottlenecks
// =============================================================================

// bottlenecksCommand creates the bottlenecks command.
func (c *CLI) bottlenecksCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "bottlenecks [process.json]",
		Short: "Find convergence points in a process",
		Long: `Find convergence points in a process.

A bottleneck is a node where more than one distinct predecessor converges.
Results are sorted by predecessor count, busiest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, a, cacheHit, err := c.runAnalysis(cmd.Context(), args[0], noCache, "", 0)
			if err != nil {
				return err
			}

			if len(a.Bottlenecks) == 0 {
				printInfo("No bottlenecks: every node has at most one distinct predecessor")
				return nil
			}

			printSuccess("Found %d bottlenecks", len(a.Bottlenecks))
			for _, b := range a.Bottlenecks {
				label := b.ID
				if n, ok := g.Node(b.ID); ok && n.Label != "" {
					label = fmt.Sprintf("%s (%s)", b.ID, n.Label)
				}
				printDetail("%s: %d incoming branches", label, b.DistinctPredecessors)
			}
			printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
			return nil
		},
	}

	analysisFlags(cmd, &noCache, nil, nil)

	return cmd
}

// =============================================================================
// critical
// =============================================================================

// criticalCommand creates the critical command for critical path extraction.
func (c *CLI) criticalCommand() *cobra.Command {
	var (
		noCache       bool
		weight        string
		maxPathLength int
	)

	cmd := &cobra.Command{
		Use:   "critical [process.json]",
		Short: "Compute the critical path of a process",
		Long: `Compute the critical path of a process.

The critical path is the start-to-end path with the largest accumulated
weight. The weight attribute is selectable: duration (default) or cost.
Nodes without the attribute contribute zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, g, a, cacheHit, err := c.runAnalysis(cmd.Context(), args[0], noCache, weight, maxPathLength)
			if err != nil {
				return err
			}

			if a.Critical == nil {
				printError("No start-to-end path exists")
				return fmt.Errorf("no start-to-end path")
			}

			w := weight
			if w == "" {
				w = pipeline.DefaultWeight
			}
			printSuccess("Critical path (%s %.2f, %d nodes)", w, a.Critical.Weight, len(a.Critical.Nodes))
			printDetail("%s", strings.Join(a.Critical.Nodes, " "+iconArrow+" "))
			printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
			return nil
		},
	}

	analysisFlags(cmd, &noCache, &weight, &maxPathLength)

	return cmd
}

// =============================================================================
// stats
// =============================================================================

// statsCommand creates the stats command for process statistics.
func (c *CLI) statsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "stats [process.json]",
		Short: "Show aggregate statistics for a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, g, a, _, err := c.runAnalysis(cmd.Context(), args[0], noCache, "", 0)
			if err != nil {
				return err
			}

			name := doc.Process.Name
			if name == "" {
				name = doc.Process.ID
			}
			fmt.Println(StyleTitle.Render(name))
			printKeyValue("nodes", fmt.Sprintf("%d", a.Statistics.NodeCount))
			printKeyValue("edges", fmt.Sprintf("%d", a.Statistics.EdgeCount))
			printKeyValue("duration", fmt.Sprintf("%.2f", a.Statistics.TotalDuration))
			printKeyValue("cost", fmt.Sprintf("%.2f", a.Statistics.TotalCost))
			printKeyValue("paths", fmt.Sprintf("%d", len(a.Paths)))
			printKeyValue("bottlenecks", fmt.Sprintf("%d", len(a.Bottlenecks)))

			if groups := analyze.FindParallelBranches(g); len(groups) > 0 {
				printKeyValue("parallel splits", fmt.Sprintf("%d", len(groups)))
				for _, grp := range groups {
					printDetail("%s splits into %s", grp.From, strings.Join(grp.Targets, ", "))
				}
			}

			kinds := make([]string, 0, len(a.Statistics.KindCounts))
			for k := range a.Statistics.KindCounts {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				printKeyValue(k+" nodes", fmt.Sprintf("%d", a.Statistics.KindCounts[k]))
			}

			if len(a.Statistics.DeadEnds) > 0 {
				printWarning("Dead ends: %s", strings.Join(a.Statistics.DeadEnds, ", "))
			}
			return nil
		},
	}

	analysisFlags(cmd, &noCache, nil, nil)

	return cmd
}
