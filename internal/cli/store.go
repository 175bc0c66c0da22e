package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procscope/procscope/pkg/errors"
	"github.com/procscope/procscope/pkg/export"
)

// importCommand creates the import command for loading documents into the store.
func (c *CLI) importCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import [process.json]",
		Short: "Import a process document into the graph store",
		Long: `Import a process document into the graph store.

The document is validated before saving: every edge must reference declared
nodes and node IDs must be unique. A document without a process ID gets a
generated one. Re-importing an existing ID replaces the stored document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (default: name from the document)")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input, name string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	doc, _, err := loadDocument(input)
	if err != nil {
		return err
	}
	if doc.Process.ID != "" {
		if err := errors.ValidateProcessID(doc.Process.ID); err != nil {
			return err
		}
	}
	if name != "" {
		doc.Process.Name = name
	}

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	id, err := runner.Store.Save(ctx, doc)
	if err != nil {
		return fmt.Errorf("save process: %w", err)
	}
	if err := runner.Invalidate(ctx, id); err != nil {
		c.Logger.Warn("failed to invalidate cached document", "process", id, "err", err)
	}

	printSuccess("Imported process %s", StyleHighlight.Render(id))
	printStats(len(doc.Nodes), len(doc.Edges), false)
	printNewline()
	printNextStep("Serve", "procscope serve")

	return nil
}

// listCommand creates the list command for showing stored processes.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processes in the graph store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close(ctx)

			infos, err := runner.Store.List(ctx)
			if err != nil {
				return fmt.Errorf("list processes: %w", err)
			}
			if len(infos) == 0 {
				printInfo("Store is empty")
				return nil
			}

			for _, info := range infos {
				printListEntry(info)
			}
			return nil
		},
	}
}

func printListEntry(info export.ProcessInfo) {
	line := StyleValue.Render(info.ID)
	if info.Name != "" {
		line += " " + StyleDim.Render(info.Name)
	}
	fmt.Println("  " + line)
}

// deleteCommand creates the delete command for removing stored processes.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [process-id]",
		Short: "Delete a process from the graph store",
		Args:  cobra.ExactArgs(1),
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

			id := args[0]
			if err := runner.Store.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete process %s: %w", id, err)
			}
			if err := runner.Invalidate(ctx, id); err != nil {
				c.Logger.Warn("failed to invalidate cached document", "process", id, "err", err)
			}

			printSuccess("Deleted process %s", id)
			return nil
		},
	}
}
