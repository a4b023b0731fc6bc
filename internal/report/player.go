package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Player reveals frames one at a time.
type Player struct {
	sleep SleepFunc
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithSleep replaces the wait between frames.
func WithSleep(fn SleepFunc) PlayerOption {
	return func(p *Player) {
		p.sleep = fn
	}
}

// NewPlayer creates a Player that waits on real timers unless overridden.
func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{sleep: timerSleep}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play waits each frame's delay and then hands it to show. It stops at the
// first show error or when ctx is cancelled.
func (p *Player) Play(ctx context.Context, frames []Frame, show func(Frame) error) error {
	for _, f := range frames {
		if f.Delay > 0 {
			if err := p.sleep(ctx, f.Delay); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := show(f); err != nil {
			return err
		}
	}
	return nil
}

func timerSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Render writes every frame to out, ignoring delays.
func Render(out io.Writer, frames []Frame) error {
	for i, f := range frames {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := RenderFrame(out, f); err != nil {
			return err
		}
	}
	return nil
}

// RenderFrame writes one frame: its title, an underline and the indented
// lines with tab-separated columns aligned.
func RenderFrame(out io.Writer, f Frame) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, f.Title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len([]rune(f.Title))))
	for _, line := range f.Lines {
		_, _ = fmt.Fprintln(w, "  "+line)
	}
	return w.Flush()
}
