package animator

import (
	"math"
	"testing"
	"time"

	"github.com/ivlev/chart2video/internal/config"
)

const eps = 1e-9

func TestPhaseSchedule(t *testing.T) {
	tl := NewTimeline(2*time.Second, 2)

	tests := []struct {
		kind       PhaseKind
		start, end float64
	}{
		{PhaseTitle, 0, 0.4},
		{PhaseBars, 0.4, 1.2},
		{PhaseLabels, 1.2, 1.6},
		{PhaseHold, 1.6, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, e := tl.PhaseWindow(tt.kind)
			if math.Abs(s-tt.start) > eps || math.Abs(e-tt.end) > eps {
				t.Errorf("Expected [%.2f, %.2f], got [%.4f, %.4f]", tt.start, tt.end, s, e)
			}
		})
	}
}

func TestStaggerMonotonic(t *testing.T) {
	for n := 2; n <= 60; n++ {
		tl := NewTimeline(3*time.Second, n)
		barsStart, barsEnd := tl.PhaseWindow(PhaseBars)

		prevStart := -1.0
		for i := 0; i < n; i++ {
			s, e := tl.BarWindow(i)
			if s < prevStart {
				t.Fatalf("n=%d: bar %d starts at %.4f before bar %d (%.4f)", n, i, s, i-1, prevStart)
			}
			if s < barsStart-eps || e > barsEnd+eps {
				t.Fatalf("n=%d: bar %d window [%.4f, %.4f] outside bars phase", n, i, s, e)
			}
			prevStart = s
		}
		if _, last := tl.BarWindow(n - 1); math.Abs(last-barsEnd) > eps {
			t.Errorf("n=%d: last bar finishes at %.4f, want %.4f", n, last, barsEnd)
		}
	}
}

func TestStateBarsBeforeAndAfterWindow(t *testing.T) {
	tl := NewTimeline(2*time.Second, 3)

	s1, _ := tl.BarWindow(1)
	st := tl.State(time.Duration(s1*float64(time.Second))-time.Millisecond, config.TitleFade)
	if st.BarScale[1] != 0 || st.BarScale[2] != 0 {
		t.Errorf("Bars that have not started must stay at 0: %v", st.BarScale)
	}
	if st.BarScale[0] <= 0 {
		t.Errorf("First bar should be growing: %v", st.BarScale)
	}

	_, e0 := tl.BarWindow(0)
	st = tl.State(time.Duration(e0*float64(time.Second))+time.Millisecond, config.TitleFade)
	if st.BarScale[0] != 1 {
		t.Errorf("Finished bar must stay at 1, got %.4f", st.BarScale[0])
	}

	end := tl.State(2*time.Second, config.TitleFade)
	for i, v := range end.BarScale {
		if v != 1 {
			t.Errorf("bar %d at end: %.4f", i, v)
		}
	}
	if end.LabelsOpacity != 1 || end.TitleReveal != 1 || end.Progress != 1 {
		t.Errorf("Final state incomplete: %+v", end)
	}
}

func TestTitleModes(t *testing.T) {
	tl := NewTimeline(2*time.Second, 1)
	mid := 200 * time.Millisecond // half of the title phase

	tw := tl.State(mid, config.TitleTypewriter)
	if math.Abs(tw.TitleReveal-0.5) > eps {
		t.Errorf("Typewriter reveal is linear, expected 0.5, got %.4f", tw.TitleReveal)
	}
	if n := tw.TitleChars(10); n != 5 {
		t.Errorf("Expected 5 characters, got %d", n)
	}

	fade := tl.State(mid, config.TitleFade)
	if fade.TitleReveal <= 0.5 || fade.TitleReveal >= 1 {
		t.Errorf("Fade uses ease-out, expected (0.5, 1), got %.4f", fade.TitleReveal)
	}
}

func TestTinyDurationDoesNotDivideByZero(t *testing.T) {
	tl := NewTimeline(time.Nanosecond, 4)
	st := tl.State(0, config.TitleFade)
	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
	check("title", st.TitleReveal)
	check("labels", st.LabelsOpacity)
	for _, v := range st.BarScale {
		check("bar", v)
	}

	st = tl.State(time.Nanosecond, config.TitleFade)
	if st.TitleReveal != 1 || st.LabelsOpacity != 1 || st.BarScale[3] != 1 {
		t.Errorf("Zero-length phases should jump to their end values: %+v", st)
	}

	zero := NewTimeline(0, 2)
	if zero.Progress(0) != 1 {
		t.Error("Zero duration timeline is complete immediately")
	}
	st = zero.State(0, config.TitleTypewriter)
	if st.TitleReveal != 1 || st.BarScale[1] != 1 {
		t.Errorf("Zero duration state should be final: %+v", st)
	}
}

func TestEasing(t *testing.T) {
	for _, f := range []Easing{Linear, EaseOutCubic, EaseOutQuad} {
		if f(0) != 0 || f(1) != 1 || f(-1) != 0 || f(2) != 1 {
			t.Error("Easing must map [0,1] onto [0,1] and clamp outside")
		}
	}
	if EaseOutCubic(0.5) <= 0.5 {
		t.Error("Ease-out should be ahead of linear at the midpoint")
	}
}

func TestCustomCurves(t *testing.T) {
	tl := NewTimeline(2*time.Second, 1)
	mid := 800 * time.Millisecond // middle of the bars phase

	if got := tl.State(mid, config.TitleFade).BarScale[0]; math.Abs(got-EaseOutCubic(0.5)) > 1e-9 {
		t.Errorf("Default bar curve: got %.4f, want %.4f", got, EaseOutCubic(0.5))
	}

	tl.Curves.Bars = Linear
	tl.Curves.Labels = Linear
	st := tl.State(mid, config.TitleFade)
	if math.Abs(st.BarScale[0]-0.5) > 1e-9 {
		t.Errorf("Linear bar curve at the midpoint: got %.4f", st.BarScale[0])
	}
	if st := tl.State(1400*time.Millisecond, config.TitleFade); math.Abs(st.LabelsOpacity-0.5) > 1e-9 {
		t.Errorf("Linear label curve at the midpoint: got %.4f", st.LabelsOpacity)
	}
}
