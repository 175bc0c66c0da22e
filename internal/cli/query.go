package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/process/analyze"
)

// Store-wide query commands. Unlike the file-based analysis commands these
// read every document in the configured store, so they answer questions
// like "which process has a legal review step" across the whole catalog.

// searchCommand creates the search command for locating tasks.
func (c *CLI) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [task]",
		Short: "Find which stored processes contain a task",
		Long: `Find which stored processes contain a task.

The match is a case-insensitive substring match on task labels, so
"review" finds both "Review order" and "Legal review".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			matches, err := runner.FindTask(ctx, args[0])
			if err != nil {
				return fmt.Errorf("search tasks: %w", err)
			}
			if len(matches) == 0 {
				printInfo("No stored process contains a task matching %q", args[0])
				return nil
			}

			printSuccess("Found %d matching task(s)", len(matches))
			for _, m := range matches {
				printDetail("%s: %s (%s)", m.ProcessID, m.TaskLabel, m.TaskID)
			}
			return nil
		},
	}
}

// gatewaysCommand creates the gateways command for listing branching points.
func (c *CLI) gatewaysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gateways",
		Short: "List branching points across stored processes",
		Long: `List branching points across stored processes.

A branching point is a Gateway- or Event-kind node with outgoing edges;
the branch count is its number of distinct successors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			listings, err := runner.ListGateways(ctx)
			if err != nil {
				return fmt.Errorf("list gateways: %w", err)
			}
			if len(listings) == 0 {
				printInfo("No branching points in the store")
				return nil
			}

			for _, gw := range listings {
				name := gw.Label
				if name == "" {
					name = gw.NodeID
				}
				printDetail("%s: %s branches %d ways", gw.ProcessID, name, gw.Branches)
			}
			return nil
		},
	}
}

// kpiCommand creates the kpi command for per-process weight totals.
func (c *CLI) kpiCommand() *cobra.Command {
	var weight string

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Total duration or cost per stored process",
		Long: `Total duration or cost per stored process, heaviest first.

Durations are summed as minutes and also reported in hours; costs are
summed as-is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := pipeline.ValidateWeight(weight); err != nil {
				return err
			}
			parsed, _ := analyze.ParseWeight(weight)

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			kpis, err := runner.WeightKPIs(ctx, parsed)
			if err != nil {
				return fmt.Errorf("aggregate kpi: %w", err)
			}
			if len(kpis) == 0 {
				printInfo("Store is empty")
				return nil
			}

			for _, k := range kpis {
				if parsed == analyze.WeightCost {
					printKeyValue(k.ProcessID, fmt.Sprintf("%.2f", k.Total))
				} else {
					printKeyValue(k.ProcessID, fmt.Sprintf("%.0f min (%.2f h)", k.Total, k.Hours))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&weight, "weight", "duration", "weight attribute: duration or cost")

	return cmd
}

// resourcesCommand creates the resources command for per-process roles.
func (c *CLI) resourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List required roles per stored process",
		Long: `List required roles per stored process.

Roles come from the node role attribute; the reserved System, Start, and
End values are skipped. Processes without role assignments are omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			reqs, err := runner.RoleRequirements(ctx)
			if err != nil {
				return fmt.Errorf("aggregate resources: %w", err)
			}
			if len(reqs) == 0 {
				printInfo("No stored process assigns roles")
				return nil
			}

			for _, req := range reqs {
				printKeyValue(req.ProcessID, strings.Join(req.Roles, ", "))
			}
			return nil
		},
	}
}
