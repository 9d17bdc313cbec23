package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/pipeline"
	"github.com/matzehuels/stackarray/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved arrays",
		Long: `Manage arrays saved with 'compute --save'. The backend (file, sqlite,
postgres, mongo or s3) comes from the [store] section of the config file.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved arrays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				infos, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					printInfo("No saved arrays")
					return nil
				}
				for _, info := range infos {
					fmt.Fprintf(stdout, "%s %s\n", StyleValue.Render(info.Name),
						StyleDim.Render(fmt.Sprintf("%s · %d items · %d bytes · %s",
							info.Kind, info.Items, info.Size, info.UpdatedAt.Local().Format(time.DateTime))))
				}
				return nil
			})
		},
	}
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Write a saved array's item collection to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rec, err := st.Get(cmd.Context(), name)
				if err != nil {
					return err
				}
				data := rec.Data
				if format == pipeline.FormatDXF {
					if data, err = pipeline.Convert(rec.Data, pipeline.FormatBin, pipeline.FormatDXF); err != nil {
						return err
					}
				} else if format != pipeline.FormatBin {
					return fmt.Errorf("invalid format: %q (must be bin or dxf)", format)
				}

				path := output
				if path == "" {
					path = name + "." + format
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printSuccess("%s", rec.Name)
				printFile(path)
				printKeyValue("kind", rec.Kind)
				printKeyValue("items", fmt.Sprint(rec.Items))
				printKeyValue("hash", rec.Hash[:min(len(rec.Hash), 12)])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatBin, "output format: bin, dxf")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name...]",
		Short: "Delete saved arrays",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, name := range args {
					if err := st.Delete(cmd.Context(), name); err != nil {
						printError("%s: %v", name, err)
						return err
					}
					printSuccess("Deleted %s", name)
				}
				return nil
			})
		},
	}
}
