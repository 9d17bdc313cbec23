package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stackarray/pkg/observability"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Computing 2 definition(s)...").To(&out)
	s.Start()
	time.Sleep(3 * spinnerTick)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Computing 2 definition(s)...") {
		t.Errorf("spinner output = %q, want message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner output = %q, want the line cleared on stop", got)
	}
}

func TestSpinnerStops(t *testing.T) {
	tests := []struct {
		name string
		run  func(*Spinner)
	}{
		{"stop", func(s *Spinner) { s.Stop() }},
		{"stop twice", func(s *Spinner) { s.Stop(); s.Stop() }},
		{"stop with error", func(s *Spinner) { s.StopWithError("Compute failed") }},
		{"stop without start", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureStdout(t)
			s := newSpinner("Computing...").To(&syncBuffer{})
			if tt.run == nil {
				s.Stop()
			} else {
				s.Start()
				tt.run(s)
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false after stop")
			}
		})
	}
}

func TestSpinnerFollowsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), spinnerTick)
	defer cancel()
	s := newSpinnerWithContext(ctx, "Computing...").To(&syncBuffer{})
	s.Start()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after its context ended")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout")
	}
	s.Stop()
}

func TestSpinnerCountsEvaluations(t *testing.T) {
	t.Cleanup(observability.Reset)
	s := newSpinner("Computing 3 definition(s)...").To(&syncBuffer{})
	restore := s.countEvaluations()

	hooks := observability.Pipeline()
	hooks.OnComputeComplete(context.Background(), "ring", "polar", 8, time.Millisecond, nil)
	hooks.OnComputeComplete(context.Background(), "grid", "rectangular", 4, time.Millisecond, nil)
	hooks.OnComputeComplete(context.Background(), "bad", "path", 0, time.Millisecond, errors.New("no path"))

	if got := s.line(0); !strings.Contains(got, "2 evaluated") {
		t.Errorf("line() = %q, want 2 evaluated", got)
	}
	restore()
	if _, ok := observability.Pipeline().(evaluationCounter); ok {
		t.Error("restore() left the counting hooks registered")
	}
}
