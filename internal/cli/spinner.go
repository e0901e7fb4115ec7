package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var errSpinnerStopped = errors.New("spinner stopped")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a batch runs. It shows
// "done/total" once the batch reports progress through Advance.
type Spinner struct {
	w     io.Writer
	label string
	ctx   context.Context
	stop  context.CancelCauseFunc
	once  sync.Once
	exit  chan struct{}

	mu          sync.Mutex
	done, total int
	width       int
	started     bool
}

// newSpinner creates a spinner on stderr that stops with ctx.
func newSpinner(ctx context.Context, label string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, label)
}

func newSpinnerTo(ctx context.Context, w io.Writer, label string) *Spinner {
	ctx, stop := context.WithCancelCause(ctx)
	return &Spinner{w: w, label: label, ctx: ctx, stop: stop, exit: make(chan struct{})}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.exit)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Advance records that done of total items are finished. Safe for
// concurrent use; it is the pipeline's progress callback.
func (s *Spinner) Advance(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done > s.done {
		s.done = done
	}
	s.total = total
}

// Count returns the last reported progress.
func (s *Spinner) Count() (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.total
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.label
	if s.total > 0 {
		line = fmt.Sprintf("%s %d/%d", s.label, s.done, s.total)
	}
	s.width = max(s.width, len(line)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}

// Stop ends the animation and clears the line. It may be called more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.stop(errSpinnerStopped)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if !started {
			return
		}
		<-s.exit
		s.mu.Lock()
		defer s.mu.Unlock()
		fmt.Fprintf(s.w, "\r%*s\r", s.width+2, "")
	})
}

// StopWithError stops the spinner and prints msg as a failure.
func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the parent context ended before Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !errors.Is(context.Cause(s.ctx), errSpinnerStopped)
}
