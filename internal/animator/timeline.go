package animator

import (
	"math"
	"time"

	"github.com/ivlev/chart2video/internal/config"
)

type PhaseKind int

const (
	PhaseTitle PhaseKind = iota
	PhaseBars
	PhaseLabels
	PhaseHold
)

func (k PhaseKind) String() string {
	return [...]string{"title", "bars", "labels", "hold"}[k]
}

// PhaseWeights partition the total duration: title, bars, labels, hold.
var PhaseWeights = [4]float64{0.2, 0.4, 0.2, 0.2}

// BarShare is the part of the bars phase one bar spends growing when there is
// more than one bar. The rest is spread out as stagger.
const BarShare = 0.5

// Phase bounds are fractions of the total duration.
type Phase struct {
	Kind          PhaseKind
	Start, End    float64
	PerBarStagger float64 // seconds, bars phase only
}

// Timeline maps elapsed time to an AnimationState. It is a pure value and
// does not depend on any scheduler.
type Timeline struct {
	Duration time.Duration
	Phases   [4]Phase
	Curves   Curves
	bars     int
	barDur   float64
	stagger  float64
}

func NewTimeline(duration time.Duration, bars int) Timeline {
	tl := Timeline{Duration: duration, Curves: DefaultCurves, bars: bars}

	acc := 0.0
	for i, w := range PhaseWeights {
		end := acc + w
		if i == len(PhaseWeights)-1 {
			end = 1
		}
		tl.Phases[i] = Phase{Kind: PhaseKind(i), Start: acc, End: end}
		acc = end
	}

	barsDur := tl.seconds(tl.Phases[PhaseBars].End) - tl.seconds(tl.Phases[PhaseBars].Start)
	if bars <= 1 {
		tl.barDur = barsDur
	} else {
		tl.barDur = barsDur * BarShare
		tl.stagger = (barsDur - tl.barDur) / float64(bars-1)
	}
	tl.Phases[PhaseBars].PerBarStagger = tl.stagger
	return tl
}

func (tl Timeline) seconds(fraction float64) float64 {
	return fraction * tl.Duration.Seconds()
}

func (tl Timeline) Phase(k PhaseKind) Phase {
	return tl.Phases[k]
}

// PhaseWindow returns the start and end of a phase in seconds.
func (tl Timeline) PhaseWindow(k PhaseKind) (float64, float64) {
	p := tl.Phases[k]
	return tl.seconds(p.Start), tl.seconds(p.End)
}

// BarWindow returns when bar i starts and finishes growing, in seconds.
func (tl Timeline) BarWindow(i int) (float64, float64) {
	start := tl.seconds(tl.Phases[PhaseBars].Start) + float64(i)*tl.stagger
	return start, start + tl.barDur
}

// Progress is the clamped global progress for elapsed.
func (tl Timeline) Progress(elapsed time.Duration) float64 {
	if tl.Duration <= 0 {
		return 1
	}
	return clamp01(float64(elapsed) / float64(tl.Duration))
}

// AnimationState is everything a redraw needs besides static geometry.
type AnimationState struct {
	Progress      float64
	TitleReveal   float64 // opacity (fade) or revealed fraction (typewriter)
	BarScale      []float64
	LabelsOpacity float64
}

// TitleChars is the number of characters shown in typewriter mode.
func (s AnimationState) TitleChars(titleLen int) int {
	return int(math.Round(s.TitleReveal * float64(titleLen)))
}

// State computes the visual state at elapsed.
func (tl Timeline) State(elapsed time.Duration, mode config.TitleMode) AnimationState {
	t := elapsed.Seconds()
	st := AnimationState{
		Progress: tl.Progress(elapsed),
		BarScale: make([]float64, tl.bars),
	}

	ts, te := tl.PhaseWindow(PhaseTitle)
	title := tl.Curves.TitleFade
	if mode == config.TitleTypewriter {
		title = tl.Curves.Typewriter
	}
	st.TitleReveal = title(local(t, ts, te))

	for i := range st.BarScale {
		bs, be := tl.BarWindow(i)
		st.BarScale[i] = tl.Curves.Bars(local(t, bs, be))
	}

	ls, le := tl.PhaseWindow(PhaseLabels)
	st.LabelsOpacity = tl.Curves.Labels(local(t, ls, le))
	return st
}

// local is the progress of t inside [start, end]. A zero-length window
// jumps straight to 1 once reached.
func local(t, start, end float64) float64 {
	if end-start <= 0 {
		if t >= start {
			return 1
		}
		return 0
	}
	return clamp01((t - start) / (end - start))
}
