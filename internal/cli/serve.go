package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackarray/internal/api"
	"github.com/matzehuels/stackarray/pkg/observability"
	"github.com/matzehuels/stackarray/pkg/observability/metrics"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compute API over HTTP",
		Long: `Serve the compute API over HTTP.

The server computes definitions posted to /v1/compute and /v1/batch, exposes
the configured array store under /v1/arrays and Prometheus metrics under
/metrics. Cache and store backends come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), addr, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "serve without an array store")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noStore bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, cfg, false, !noStore)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
	defer observability.Reset()

	s := api.New(runner, m.Handler(), c.Logger)
	if cfg.Server.Concurrency > 0 {
		s.Concurrency = cfg.Server.Concurrency
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	c.Logger.Info("serving", "addr", addr, "cache", cfg.Cache.Backend, "store", storeName(cfg.Store.Backend, noStore))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func storeName(backend string, disabled bool) string {
	switch {
	case disabled:
		return "none"
	case backend == "":
		return "file"
	}
	return backend
}
