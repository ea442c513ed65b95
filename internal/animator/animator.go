// Package animator drives the bar chart timeline: on every tick it maps
// elapsed time to an AnimationState and redraws the whole surface.
package animator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ivlev/chart2video/internal/config"
	"github.com/ivlev/chart2video/internal/errs"
	"github.com/ivlev/chart2video/internal/layout"
	"github.com/ivlev/chart2video/internal/surface"
)

type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	return [...]string{"idle", "running", "completed", "cancelled"}[s]
}

// ErrCancelled is returned by Run when the animation was stopped before completion.
var ErrCancelled = errors.New("animation cancelled")

// RowLabelOpacity is the fixed opacity of row labels.
const RowLabelOpacity = 1.0

// Sampler receives diagnostic capture requests. Sample must not block on encoding.
type Sampler interface {
	Sample(seq int, elapsed time.Duration)
}

type Options struct {
	OnProgress  func(percent float64)
	OnComplete  func()
	Sampler     Sampler
	SampleEvery int // capture frame 1 and every SampleEvery-th after it
}

type Animator struct {
	mu    sync.Mutex
	chart layout.Chart
	style config.StyleConfig
	surf  *surface.Surface
	opts  Options

	state      State
	timeline   Timeline
	startedAt  time.Time
	elapsed    time.Duration
	frameIdx   int64
	frameCount int
	current    AnimationState
}

func New(chart layout.Chart, style config.StyleConfig, surf *surface.Surface, opts Options) *Animator {
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = config.DefaultSampleEvery
	}
	return &Animator{chart: chart, style: style, surf: surf, opts: opts}
}

// Start builds the timeline and enters Running. Nothing is scheduled if it fails.
func (a *Animator) Start(now time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Idle {
		return fmt.Errorf("animator already %s", a.state)
	}
	if len(a.chart.Bars) == 0 {
		return errs.New(errs.InvalidInput, "no bar geometry to animate")
	}
	if a.surf == nil {
		return errs.New(errs.InvalidInput, "no drawing surface")
	}
	if a.style.DurationSeconds <= 0 || a.style.FrameRate <= 0 {
		return errs.New(errs.InvalidInput, "duration and frame rate must be positive")
	}

	duration := time.Duration(a.style.DurationSeconds * float64(time.Second))
	a.timeline = NewTimeline(duration, len(a.chart.Bars))
	a.startedAt = now
	a.elapsed = 0
	a.frameIdx = -1
	a.frameCount = 0
	a.state = Running
	return nil
}

// Tick advances the animation to now and redraws. It reports whether the
// animator is still running afterwards.
func (a *Animator) Tick(now time.Time) bool {
	a.mu.Lock()
	if a.state != Running {
		a.mu.Unlock()
		return false
	}

	elapsed := now.Sub(a.startedAt)
	if elapsed < a.elapsed {
		elapsed = a.elapsed
	}
	a.elapsed = elapsed

	st := a.timeline.State(elapsed, a.style.TitleMode)
	a.current = st
	a.redraw(st)

	sampleSeq := 0
	if a.opts.Sampler != nil {
		idx := int64(elapsed.Seconds() * float64(a.style.FrameRate))
		if idx > a.frameIdx {
			a.frameIdx = idx
			a.frameCount++
			if (a.frameCount-1)%a.opts.SampleEvery == 0 {
				sampleSeq = a.frameCount
			}
		}
	}

	done := st.Progress >= 1
	if done {
		a.state = Completed
	}
	a.mu.Unlock()

	if a.opts.OnProgress != nil {
		a.opts.OnProgress(st.Progress * 100)
	}
	if sampleSeq > 0 {
		a.opts.Sampler.Sample(sampleSeq, elapsed)
	}
	if done && a.opts.OnComplete != nil {
		a.opts.OnComplete()
	}
	return !done
}

// Stop cancels a running animation. It is a no-op in any other state.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Running {
		a.state = Cancelled
	}
}

func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Animator) Timeline() Timeline {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeline
}

// Current returns the state drawn by the last tick.
func (a *Animator) Current() AnimationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// FrameCount is the number of frame boundaries crossed so far.
func (a *Animator) FrameCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameCount
}

func (a *Animator) redraw(st AnimationState) {
	bg := a.style.Background()
	bar := a.style.Bar()
	text := a.style.Text()
	ch := a.chart

	a.surf.Paint(func(c *surface.Canvas) {
		c.Clear(bg)

		if title := a.style.Title; title != "" {
			if a.style.TitleMode == config.TitleTypewriter {
				runes := []rune(title)
				n := st.TitleChars(len(runes))
				left := ch.TitleX - c.MeasureText(title, ch.TitleSize)/2
				c.DrawText(string(runes[:n]), left, ch.TitleY, surface.AlignLeft, ch.TitleSize, text, 1)
			} else {
				c.DrawText(title, ch.TitleX, ch.TitleY, surface.AlignCenter, ch.TitleSize, text, st.TitleReveal)
			}
		}

		gap := ch.LabelSize * 0.5
		for i, g := range ch.Bars {
			end := lerp(g.BaseX, g.EndX, st.BarScale[i])
			c.FillRect(g.BaseX, g.Y, end, g.Y+g.Height, bar)

			baseline := g.Y + g.Height/2 + ch.LabelSize*0.35
			c.DrawText(g.Label, ch.LabelX-gap, baseline, surface.AlignRight, ch.LabelSize, text, RowLabelOpacity)

			if g.EndX >= g.BaseX {
				c.DrawText(g.Value, g.EndX+gap, baseline, surface.AlignLeft, ch.LabelSize, text, st.LabelsOpacity)
			} else {
				c.DrawText(g.Value, g.EndX-gap, baseline, surface.AlignRight, ch.LabelSize, text, st.LabelsOpacity)
			}
		}
	})
}

// Run is the host scheduler: it starts a (if idle) and ticks it every
// interval until it completes or ctx ends. Cancellation stops the animator
// and returns ctx's error.
func Run(ctx context.Context, a *Animator, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	if a.State() == Idle {
		if err := a.Start(time.Now()); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		a.Stop()
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	next := a.Tick(time.Now())
	for next {
		select {
		case <-ctx.Done():
			a.Stop()
			return ctx.Err()
		case now := <-ticker.C:
			next = a.Tick(now)
		}
	}

	if a.State() == Cancelled {
		return ErrCancelled
	}
	return nil
}
