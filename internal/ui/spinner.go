package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// LineSpinner animates a single terminal line until stopped. It is used
// for blocking steps that run before the chat view takes over the screen.
type LineSpinner struct {
	mu      sync.Mutex
	message string

	frames   []string
	interval time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewConnectionSpinner creates a spinner for network operations (Globe style)
func NewConnectionSpinner(message string) *LineSpinner {
	return newLineSpinner(message, spinner.Globe)
}

// NewWaitingSpinner creates a spinner for waiting on external events (Points style)
func NewWaitingSpinner(message string) *LineSpinner {
	return newLineSpinner(message, spinner.Points)
}

func newLineSpinner(message string, s spinner.Spinner) *LineSpinner {
	return &LineSpinner{
		message:  message,
		frames:   s.Frames,
		interval: s.FPS,
		done:     make(chan struct{}),
	}
}

func (s *LineSpinner) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.mu.Lock()
			frame := SpinnerStyle.Render(s.frames[i%len(s.frames)])
			fmt.Printf("\r%s %s", frame, s.message)
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *LineSpinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		fmt.Print("\r\033[K") // Clear the line
		s.mu.Unlock()
	})
}

func (s *LineSpinner) Success(message string) {
	s.Stop()
	PrintSuccess(message)
}

func (s *LineSpinner) Fail(message string) {
	s.Stop()
	PrintError(message)
}

func (s *LineSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}
