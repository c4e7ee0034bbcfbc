package inkline

import (
	"time"
)

// Spinner drives animated progressive renders. It owns no terminal state;
// the view layer places Frame() inside a Text node and the spinner's
// ticker schedules the redraws. When the session's config disables
// animation, Start is a no-op and Frame returns a fixed glyph.
type Spinner struct {
	root *Root

	frames   []string
	interval time.Duration
	start    time.Time
	ticker   *time.Ticker
	done     chan struct{}
}

// NewSpinner creates a dot-style spinner bound to the root's scheduler.
func NewSpinner(root *Root) *Spinner {
	return &Spinner{
		root:     root,
		frames:   []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		interval: 80 * time.Millisecond,
	}
}

// Frame returns the glyph for the current tick.
func (s *Spinner) Frame() string {
	if !s.root.Mode().Config.Animate || s.start.IsZero() {
		return s.frames[0]
	}
	idx := int(time.Since(s.start)/s.interval) % len(s.frames)
	return s.frames[idx]
}

// Start begins the animation ticker.
func (s *Spinner) Start() {
	if !s.root.Mode().Config.Animate {
		return
	}
	s.start = time.Now()
	s.done = make(chan struct{})
	s.ticker = time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.root.RequestRender()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop ends the animation ticker.
func (s *Spinner) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
