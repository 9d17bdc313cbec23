package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/pipeline"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert an item collection between bin and dxf",
		Long: `Convert an item collection between the binary (bin) and tagged-text (dxf)
encodings. Formats are taken from the file extensions unless --from or --to
is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			if from == "" {
				from = pipeline.FormatOf(input)
			}
			if to == "" {
				to = pipeline.FormatOf(output)
			}
			if from == "" || to == "" {
				return fmt.Errorf("cannot infer formats of %s and %s; use --from and --to", input, output)
			}
			return c.runConvert(input, output, strings.ToLower(from), strings.ToLower(to))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format: bin, dxf")
	cmd.Flags().StringVar(&to, "to", "", "output format: bin, dxf")

	return cmd
}

func (c *CLI) runConvert(input, output, from, to string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if from == to {
		printWarning("%s is already %s; copying", input, to)
	}
	out, err := pipeline.Convert(data, from, to)
	if err != nil {
		return fmt.Errorf("convert %s: %w", input, err)
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	c.Logger.Debug("converted", "from", from, "to", to, "bytes", len(out))
	printSuccess("Converted %s → %s", from, to)
	printFile(output)
	return nil
}
