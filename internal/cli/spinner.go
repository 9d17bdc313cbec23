package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/stackarray/pkg/observability"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner animates a status line on stderr while a batch runs. It stops on
// Stop or when its context ends, and can show how many arrays were evaluated
// so far.
type Spinner struct {
	message   string
	out       io.Writer
	ctx       context.Context
	cancel    context.CancelFunc
	evaluated atomic.Int64

	mu      sync.Mutex
	width   int
	started bool
	stop    sync.Once
	exited  chan struct{}
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx is done.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		exited:  make(chan struct{}),
	}
}

// To redirects the frames. It must be called before Start.
func (s *Spinner) To(w io.Writer) *Spinner {
	s.out = w
	return s
}

// countEvaluations counts completed array evaluations reported through the
// pipeline hooks until the returned function restores the previous hooks.
func (s *Spinner) countEvaluations() (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(evaluationCounter{PipelineHooks: prev, s: s})
	return func() { observability.SetPipelineHooks(prev) }
}

// evaluationCounter forwards pipeline events and advances a spinner on every
// successful evaluation.
type evaluationCounter struct {
	observability.PipelineHooks
	s *Spinner
}

func (e evaluationCounter) OnComputeComplete(ctx context.Context, name, kind string, items int, d time.Duration, err error) {
	e.PipelineHooks.OnComputeComplete(ctx, name, kind, items, d, err)
	if err == nil {
		e.s.evaluated.Add(1)
	}
}

func (s *Spinner) line(frame int) string {
	text := s.message
	if n := s.evaluated.Load(); n > 0 {
		text = fmt.Sprintf("%s %d evaluated", text, n)
	}
	return styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + StyleDim.Render(text)
}

// Start runs the animation in a goroutine.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(s.line(frame))
			}
		}
	}()
}

func (s *Spinner) draw(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r"+line)
	s.width = max(s.width, len(line))
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// Stop ends the animation and clears the line. Extra calls are no-ops.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.exited
		}
		s.clear()
	})
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context ended, either through Stop
// or through its parent.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
