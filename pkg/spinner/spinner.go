package spinner

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner renders an animated progress indicator on stderr, keeping stdout
// clean for reports. Safe for concurrent Message updates from workers.
type Spinner struct {
	frames  []string
	delay   time.Duration
	message string
	active  bool
	mu      sync.Mutex
	done    chan struct{}
}

func New(message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:   100 * time.Millisecond,
		message: message,
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case <-time.After(s.delay):
				s.mu.Lock()
				fmt.Fprintf(os.Stderr, "\r%s %s", s.frames[i%len(s.frames)], s.message)
				s.mu.Unlock()
			}
		}
	}(s.done)
}

// Message replaces the spinner text, e.g. with a running case counter.
func (s *Spinner) Message(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	close(s.done)
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+2))
}
