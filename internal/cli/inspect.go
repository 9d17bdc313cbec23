package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/pattern"
	"github.com/matzehuels/stackarray/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		visibleOnly bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the items of an artifact or definition",
		Long: `Show the items of an artifact or definition.

The file is a json, bin or dxf artifact written by 'compute', or a TOML/YAML
definition, which is computed first. Items are printed as a table of
locators, positions and override flags; -i opens an interactive browser that
also shows each item's placement matrix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, entries, err := c.loadEntries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if visibleOnly {
				entries = (&pattern.Document{Grid: entries}).Visible()
			}
			if interactive {
				_, err := tea.NewProgram(NewItemListModel(title, entries), tea.WithContext(cmd.Context())).Run()
				return err
			}
			fmt.Fprintln(stdout, StyleTitle.Render(title))
			fmt.Fprintln(stdout, renderItemTable(entries))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse items interactively")
	cmd.Flags().BoolVar(&visibleOnly, "visible", false, "hide erased items")

	return cmd
}

// loadEntries reads the items of path, choosing the reader by extension.
func (c *CLI) loadEntries(ctx context.Context, path string) (string, []pattern.Entry, error) {
	switch format := pipeline.FormatOf(path); format {
	case pipeline.FormatJSON:
		f, err := os.Open(path)
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		doc, err := pattern.ReadJSON(f)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", path, err)
		}
		return fmt.Sprintf("%s (%s, %d×%d×%d)", doc.Name, doc.Kind, doc.Items, doc.Rows, doc.Levels), doc.Grid, nil

	case pipeline.FormatBin, pipeline.FormatDXF:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, err
		}
		items, err := pipeline.DecodeItems(data, format)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", path, err)
		}
		entries := make([]pattern.Entry, len(items))
		for i, it := range items {
			entries[i] = pattern.EntryOf(it)
		}
		return fmt.Sprintf("%s (%d items)", filepath.Base(path), len(items)), entries, nil
	}

	if _, err := pattern.FormatOf(path); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "cannot inspect %s", path)
	}
	def, err := pattern.Load(path)
	if err != nil {
		return "", nil, err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return "", nil, err
	}
	runner, err := c.newRunner(ctx, cfg, false, false)
	if err != nil {
		return "", nil, err
	}
	defer runner.Close()
	res, err := runner.Execute(ctx, pipeline.Options{Definition: def, Logger: loggerFromContext(ctx)})
	if err != nil {
		return "", nil, err
	}
	doc := res.Document
	return fmt.Sprintf("%s (%s, %d×%d×%d)", doc.Name, doc.Kind, doc.Items, doc.Rows, doc.Levels), doc.Grid, nil
}
