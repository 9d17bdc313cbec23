// Package cli implements the stackarray command-line interface.
//
// The CLI computes pattern definitions through the shared pipeline, inspects
// and converts encoded item collections, manages the array store and the
// result cache, and serves the HTTP API. It is built on cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - compute: evaluate definitions and write json, bin or dxf artifacts
//   - inspect: print the items of an artifact or definition as a table
//   - convert: re-encode a bin collection as dxf or back
//   - serve: run the HTTP API with Prometheus metrics
//   - store: list, fetch and delete saved arrays
//   - cache: clear the result cache or print its location
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Lines carry "HH:MM:SS.ms" timestamps
// and logfmt key-values, e.g. "computed array name=ring items=8".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a CLI operation from its creation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, e.g.
// "computed arrays count=3 cached=1 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type ctxKey struct{}

// withLogger attaches l to ctx. The root command does this for every
// subcommand.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
