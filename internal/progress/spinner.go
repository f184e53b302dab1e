package progress

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the delay between two spinner frames
const DefaultInterval = 100 * time.Millisecond

// DefaultFrames is the classic console spinner
var DefaultFrames = []string{"-", "/", "|", "\\"}

// Spinner draws a one-character animation on a terminal while work is running
type Spinner struct {
	w        io.Writer
	frames   []string
	interval time.Duration
}

// Option configures a Spinner
type Option func(*Spinner)

// WithInterval changes the frame delay
func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithFrames replaces the animation frames
func WithFrames(frames ...string) Option {
	return func(s *Spinner) {
		if len(frames) > 0 {
			s.frames = frames
		}
	}
}

// NewSpinner creates a spinner writing to w
func NewSpinner(w io.Writer, opts ...Option) *Spinner {
	s := &Spinner{
		w:        w,
		frames:   DefaultFrames,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run draws frames until ctx is done, then erases the last one.
// Each frame is followed by a backspace so the cursor never moves.
// It returns nil on cancellation and the write error otherwise.
func (s *Spinner) Run(ctx context.Context) error {
	if s == nil || s.w == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := s.frames[i%len(s.frames)]
		if _, err := io.WriteString(s.w, frame+"\b"); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			_, err := io.WriteString(s.w, " \b")
			return err
		case <-ticker.C:
		}
	}
}

// Track runs fn while s spins. The spinner is cancelled as soon as fn
// returns and is joined before Track returns, so nothing is written to the
// terminal afterwards. The error of fn is returned; spinner write errors are
// dropped.
func Track(ctx context.Context, s *Spinner, fn func(context.Context) error) error {
	spinCtx, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		return s.Run(spinCtx)
	})

	err := fn(ctx)
	stop()
	_ = g.Wait()
	return err
}
