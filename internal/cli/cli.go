package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/pkg/buildinfo"
	"github.com/matzehuels/stackarray/pkg/config"
	"github.com/matzehuels/stackarray/pkg/pipeline"
	"github.com/matzehuels/stackarray/pkg/store"
)

// appName is the application name used for display.
const appName = "stackarray"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// ConfigPath overrides the configuration file location.
	ConfigPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackarray computes parametric arrays of placed items",
		Long:         `Stackarray evaluates rectangular, polar and path array definitions into placed items and encodes them as JSON, binary or tagged-text collections.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ~/.config/stackarray/config.toml)")

	root.AddCommand(c.computeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// loadConfig reads the configuration file.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. The store is opened only
// when withStore is set.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache, withStore bool) (*pipeline.Runner, error) {
	if noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	var st store.Store
	if withStore {
		if st, err = cfg.OpenStore(ctx); err != nil {
			ch.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	return pipeline.NewRunner(ch, cfg.Keyer(), st, c.Logger), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	formats := strings.Split(s, ",")
	for i, f := range formats {
		formats[i] = strings.TrimSpace(f)
	}
	return formats
}

// outputPath places the artifact of input in dir, or next to input when dir
// is empty: "defs/ring.toml" becomes "defs/ring.dxf".
func outputPath(input, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"."+format)
}
