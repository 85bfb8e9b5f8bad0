// Package tui provides terminal user interface components for gantry.
package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// safeWriter wraps an io.Writer with mutex protection for concurrent access.
// The spinner animation goroutine and command output streaming may share the
// same writer.
type safeWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSafeWriter(w io.Writer) *safeWriter {
	return &safeWriter{w: w}
}

// Write implements io.Writer with mutex protection.
func (sw *safeWriter) Write(p []byte) (n int, err error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

// spinnerFrames are the animation frames for the spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"} //nolint:gochecknoglobals // Package-level constant for spinner animation

// SpinnerInterval is the update interval for spinner animation.
const SpinnerInterval = 100 * time.Millisecond

// Spinner provides animated progress indication for long-running phases such
// as CMake configure or pytest runs. It is safe to Start and Stop from
// different goroutines, and Stop is idempotent.
type Spinner struct {
	w       *safeWriter
	styles  *OutputStyles
	message string
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSpinner creates a new spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		w:      newSafeWriter(w),
		styles: NewOutputStyles(),
	}
}

// Start begins the spinner animation with the given message.
// Calling Start on a running spinner only updates the message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	go s.animate(s.done)
}

// UpdateMessage changes the message shown next to the spinner frame.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	_, _ = fmt.Fprint(s.w, "\r\033[K")
}

// animate renders frames until the done channel closes.
func (s *Spinner) animate(done <-chan struct{}) {
	ticker := time.NewTicker(SpinnerInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			line := s.styles.Info.Render(spinnerFrames[frame%len(spinnerFrames)]) + " " + msg
			_, _ = fmt.Fprintf(s.w, "\r\033[K%s", line)
			frame++
		}
	}
}
