package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner provides a simple terminal loading animation during long operations
type Spinner struct {
	chars []string
	delay time.Duration
	out   io.Writer

	mu   sync.Mutex
	end  chan struct{}
	mark string
	wg   sync.WaitGroup
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{
		chars: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay: 100 * time.Millisecond,
		out:   out,
	}
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.end != nil {
		return
	}
	end := make(chan struct{})
	s.end = end
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		i := 0
		for {
			fmt.Fprintf(s.out, "\r%s %s", s.chars[i%len(s.chars)], message)
			i++
			select {
			case <-end:
				fmt.Fprintf(s.out, "\r%s %s\n", s.mark, message)
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation with a mark matching success and waits for the
// goroutine to exit
func (s *Spinner) Stop(success bool) {
	s.mu.Lock()
	end := s.end
	s.end = nil
	if end != nil {
		s.mark = "✅"
		if !success {
			s.mark = "⚠️ "
		}
	}
	s.mu.Unlock()
	if end == nil {
		return
	}
	close(end)
	s.wg.Wait()
}
