// Package playback paces decoded frames against the wall clock.
package playback

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/illusionman1212/gifwall"
)

// Source produces frames; *gifwall.Decoder is one.
type Source interface {
	NextFrame() (*gifwall.Frame, error)
}

// Sink consumes a frame before the next one is requested. Returning
// ErrStop ends playback without an error.
type Sink func(f *gifwall.Frame) error

// ErrStop can be returned by a Sink to end playback cleanly.
var ErrStop = errors.New("playback: stop")

// Config holds the optional hooks of Run. The zero value uses the real
// clock and ignores frame errors.
type Config struct {
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	// OnFrameError is told about images that were corrupt or truncated.
	// Playback continues after it returns.
	OnFrameError func(err error)
}

// Remaining is how long to wait after spending elapsed on a frame whose
// declared delay is delay. It is never negative.
func Remaining(delay, elapsed time.Duration) time.Duration {
	if elapsed >= delay {
		return 0
	}
	return delay - elapsed
}

// Run pulls frames from src, hands each to sink and waits out the rest of
// its delay, until ctx is cancelled, the sink returns an error, or src
// fails. Time spent decoding and in the sink counts against the delay.
//
// Cancellation is only noticed between frames and while waiting. Run
// returns nil when src is exhausted (io.EOF) or the sink returns ErrStop.
func Run(ctx context.Context, src Source, sink Sink, cfg Config) error {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := now()

		f, err := src.NextFrame()
		if err != nil {
			switch {
			case err == io.EOF:
				return nil
			case !gifwall.IsFrameError(err):
				return err
			}
			if cfg.OnFrameError != nil {
				cfg.OnFrameError(err)
			}
			if f == nil {
				continue
			}
		}

		if err := sink(f); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}

		if err := sleep(ctx, Remaining(f.Delay, now().Sub(start))); err != nil {
			return err
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
