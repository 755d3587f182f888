package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates the blocking steps that happen before the chat
// program takes over the terminal, such as dialing the relay. It prints
// directly rather than running inside a bubbletea program because no
// program exists yet at that point.
type Spinner struct {
	message  string
	frames   []string
	interval time.Duration
	out      io.Writer
	done     chan struct{}
	stopped  bool
}

// NewConnectionSpinner creates a spinner for network dialing.
func NewConnectionSpinner(message string) *Spinner {
	return &Spinner{
		message:  message,
		frames:   spinner.Globe.Frames,
		interval: 180 * time.Millisecond,
		out:      os.Stdout,
		done:     make(chan struct{}),
	}
}

// Start renders frames until Stop, Success or Error is called.
func (s *Spinner) Start() {
	go func() {
		i := 0
		for {
			select {
			case <-s.done:
				return
			default:
				frame := SpinnerStyle.Render(s.frames[i%len(s.frames)])
				fmt.Fprintf(s.out, "\r%s %s", frame, s.message)
				i++
				time.Sleep(s.interval)
			}
		}
	}()
}

// Stop halts the animation and clears its line. Safe to call more than
// once.
func (s *Spinner) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	fmt.Fprint(s.out, "\r\033[K")
}

// Success stops the spinner, leaving a confirmation line in its place.
func (s *Spinner) Success(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", SuccessStyle.Render(IconSuccess), message)
}

// Error stops the spinner, leaving a failure line in its place.
func (s *Spinner) Error(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", ErrorStyle.Render(IconError), message)
}
