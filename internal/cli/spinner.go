package cli

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// spinnerFrames is the animation cycle shown while a pipeline stage runs.
var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders a progress indicator on stderr while a fetch, layout, or
// analysis stage is in flight. It winds down on its own when the parent
// context is cancelled, and Stop is safe to call more than once.
type Spinner struct {
	message  string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	halt     chan struct{}
	finished chan struct{}
	haltOnce sync.Once
	mu       sync.Mutex
}

// newSpinner creates a spinner that runs until stopped.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that also stops when ctx is
// cancelled, so a Ctrl-C during a long analysis leaves a clean line.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	if ctx == nil {
		ctx = context.Background()
	}
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message:  message,
		interval: 80 * time.Millisecond,
		ctx:      sctx,
		cancel:   cancel,
		halt:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins the animation in a background goroutine.
func (s *Spinner) Start() {
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.finished)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clearLine()
			return
		case <-s.halt:
			return
		case <-ticker.C:
			s.render(frame)
		}
	}
}

func (s *Spinner) render(frame int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	glyph := spinnerFrames[frame%len(spinnerFrames)]
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(glyph), StyleDim.Render(s.message))
}

// Stop halts the animation and clears the line. Calling it again is a no-op.
func (s *Spinner) Stop() {
	s.haltOnce.Do(func() { close(s.halt) })
	s.cancel()
	<-s.finished
	s.clearLine()
}

// StopWithSuccess stops the spinner and prints a success line in its place.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line in its place.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context was cancelled, as opposed
// to the stage finishing and calling Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%*s\r", len(s.message)+4, "")
}
