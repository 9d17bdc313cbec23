package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/pattern"
	"github.com/matzehuels/stackarray/pkg/pipeline"
)

type computeOpts struct {
	formats     []string
	output      string // output directory
	noCache     bool
	save        bool
	refresh     bool
	concurrency int
}

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var formatsStr string
	opts := computeOpts{concurrency: pipeline.DefaultConcurrency}

	cmd := &cobra.Command{
		Use:   "compute [definition...]",
		Short: "Compute array definitions and write their artifacts",
		Long: `Compute array definitions and write their artifacts.

Each definition is a TOML or YAML file describing a rectangular, polar or path
array, its parameters, expressions and per-item overrides. The artifacts are
written next to the definition (or into --output) as <name>.<format>:

  json  item locators, positions, matrices and flags
  bin   binary item collection
  dxf   tagged-text item collection

Several definitions are computed concurrently. Results are cached by the
content of the definition.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runCompute(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "artifact format(s): json (default), bin, dxf (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: next to each definition)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the computed arrays to the configured store")
	cmd.Flags().IntVarP(&opts.concurrency, "jobs", "j", opts.concurrency, "definitions computed at once")

	return cmd
}

func (c *CLI) runCompute(ctx context.Context, inputs []string, opts computeOpts) error {
	runs := make([]pipeline.Options, len(inputs))
	for i, input := range inputs {
		def, err := pattern.Load(input)
		if err != nil {
			return err
		}
		runs[i] = pipeline.Options{
			Definition: def,
			Formats:    opts.formats,
			Save:       opts.save,
			Refresh:    opts.refresh,
			Logger:     c.Logger,
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache, opts.save)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if opts.output != "" {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %d definition(s)...", len(inputs)))
	restore := spinner.countEvaluations()
	spinner.Start()
	results, err := runner.Batch(ctx, runs, opts.concurrency)
	restore()
	if err != nil {
		spinner.StopWithError("Compute failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	for i, res := range results {
		printSuccess("%s", res.Name)
		for _, format := range opts.formats {
			path := outputPath(inputs[i], opts.output, format)
			if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
		}
		printStats(res.Document.Kind, res.Stats.Items, res.Stats.Visible, res.CacheInfo.ArrayHit)
		if res.Saved {
			printDetail("saved as %s", res.Name)
		}
	}
	cached := 0
	for _, res := range results {
		if res.CacheInfo.ArrayHit {
			cached++
		}
	}
	prog.done("computed arrays", "count", len(results), "cached", cached)

	if len(results) == 1 {
		printNewline()
		printNextStep("Inspect", appName+" inspect "+outputPath(inputs[0], opts.output, opts.formats[0]))
	}
	return nil
}
