package animator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/ivlev/chart2video/internal/config"
	"github.com/ivlev/chart2video/internal/errs"
	"github.com/ivlev/chart2video/internal/layout"
	"github.com/ivlev/chart2video/internal/source"
	"github.com/ivlev/chart2video/internal/surface"
	"github.com/ivlev/chart2video/internal/system"
)

type recorder struct {
	mu        sync.Mutex
	progress  []float64
	completes int
	// progress calls seen when OnComplete fired
	completeAfter int
	samples       []int
}

func (r *recorder) options() Options {
	return Options{
		OnProgress: func(p float64) {
			r.mu.Lock()
			r.progress = append(r.progress, p)
			r.mu.Unlock()
		},
		OnComplete: func() {
			r.mu.Lock()
			r.completes++
			r.completeAfter = len(r.progress)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) Sample(seq int, elapsed time.Duration) {
	r.mu.Lock()
	r.samples = append(r.samples, seq)
	r.mu.Unlock()
}

func newTestAnimator(t *testing.T, duration float64, opts Options) (*Animator, *surface.Surface) {
	t.Helper()
	style := config.DefaultStyle()
	style.Title = "Quarterly"
	style.DurationSeconds = duration
	style.FrameRate = 30
	style.Resolution = config.Res360p

	data := source.DataSet{Labels: []string{"A", "B", "C"}, Values: []float64{10, 20, 5}}
	chart, err := layout.Compute(data, style, 320, 180)
	if err != nil {
		t.Fatalf("layout failed: %v", err)
	}
	surf, err := surface.New(320, 180, style.FontFamily)
	if err != nil {
		t.Fatalf("surface failed: %v", err)
	}
	return New(chart, style, surf, opts), surf
}

func TestProgressAndCompletion(t *testing.T) {
	for _, duration := range []float64{0.001, 0.5, 2, 7.3} {
		rec := &recorder{}
		a, _ := newTestAnimator(t, duration, rec.options())

		start := time.Unix(1000, 0)
		if err := a.Start(start); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		step := time.Duration(duration * float64(time.Second) / 37)
		if step <= 0 {
			step = time.Microsecond
		}
		now := start
		for i := 0; i < 1000 && a.Tick(now); i++ {
			now = now.Add(step)
		}
		// Extra ticks after completion must do nothing.
		a.Tick(now.Add(time.Hour))

		if a.State() != Completed {
			t.Fatalf("duration=%v: expected Completed, got %s", duration, a.State())
		}
		if rec.completes != 1 {
			t.Errorf("duration=%v: completion fired %d times", duration, rec.completes)
		}
		if rec.completeAfter != len(rec.progress) {
			t.Errorf("duration=%v: completion must follow the last progress call", duration)
		}
		if rec.progress[0] < 0 {
			t.Errorf("duration=%v: first progress %.2f < 0", duration, rec.progress[0])
		}
		for i := 1; i < len(rec.progress); i++ {
			if rec.progress[i] < rec.progress[i-1] {
				t.Errorf("duration=%v: progress decreased %.3f -> %.3f", duration, rec.progress[i-1], rec.progress[i])
			}
		}
		if last := rec.progress[len(rec.progress)-1]; last != 100 {
			t.Errorf("duration=%v: final progress %.4f, want 100", duration, last)
		}
	}
}

func TestProgressIgnoresClockGoingBack(t *testing.T) {
	rec := &recorder{}
	a, _ := newTestAnimator(t, 1, rec.options())
	start := time.Unix(0, 0)
	a.Start(start)
	a.Tick(start.Add(500 * time.Millisecond))
	a.Tick(start.Add(100 * time.Millisecond))
	if rec.progress[1] < rec.progress[0] {
		t.Errorf("Progress went backwards: %v", rec.progress)
	}
}

func TestCancelNeverCompletes(t *testing.T) {
	for _, cancelAfter := range []int{0, 1, 10} {
		rec := &recorder{}
		a, _ := newTestAnimator(t, 1, rec.options())
		start := time.Unix(0, 0)
		a.Start(start)

		now := start
		for i := 0; i < cancelAfter; i++ {
			a.Tick(now)
			now = now.Add(10 * time.Millisecond)
		}
		a.Stop()
		a.Stop() // idempotent

		if a.Tick(now.Add(time.Hour)) {
			t.Error("Tick after Stop must report not running")
		}
		if a.State() != Cancelled {
			t.Errorf("Expected Cancelled, got %s", a.State())
		}
		if rec.completes != 0 {
			t.Errorf("cancel after %d ticks: completion fired", cancelAfter)
		}
		if len(rec.progress) != cancelAfter {
			t.Errorf("Expected %d progress calls, got %d", cancelAfter, len(rec.progress))
		}
	}
}

func TestStopIsNoOpOutsideRunning(t *testing.T) {
	a, _ := newTestAnimator(t, 0.01, Options{})
	a.Stop()
	if a.State() != Idle {
		t.Errorf("Stop on idle animator changed state to %s", a.State())
	}

	now := time.Unix(0, 0)
	a.Start(now)
	a.Tick(now.Add(time.Second))
	a.Stop()
	if a.State() != Completed {
		t.Errorf("Stop after completion changed state to %s", a.State())
	}
}

func TestStartFailsWithoutGeometry(t *testing.T) {
	style := config.DefaultStyle()
	surf, _ := surface.New(10, 10, "")
	a := New(layout.Chart{}, style, surf, Options{})

	err := a.Start(time.Now())
	if !errs.Is(err, errs.InvalidInput) {
		t.Errorf("Expected InvalidInput, got %v", err)
	}
	if a.State() != Idle {
		t.Errorf("Failed start must leave animator idle, got %s", a.State())
	}
	if a.Tick(time.Now()) {
		t.Error("No tick may run after a failed start")
	}
}

func TestStartTwiceFails(t *testing.T) {
	a, _ := newTestAnimator(t, 1, Options{})
	a.Start(time.Now())
	if err := a.Start(time.Now()); err == nil {
		t.Error("Second Start should fail")
	}
}

func TestSampleCadence(t *testing.T) {
	rec := &recorder{}
	opts := rec.options()
	opts.Sampler = rec
	opts.SampleEvery = 10
	a, _ := newTestAnimator(t, 2, opts) // 30 fps -> 60 frame boundaries

	start := time.Unix(0, 0)
	a.Start(start)
	// Tick twice per frame period: only boundary crossings count.
	for now := start; a.Tick(now); now = now.Add(time.Second / 60) {
	}

	want := []int{1, 11, 21, 31, 41, 51, 61}
	if len(rec.samples) != len(want) {
		t.Fatalf("Expected samples %v, got %v (frames=%d)", want, rec.samples, a.FrameCount())
	}
	for i := range want {
		if rec.samples[i] != want[i] {
			t.Errorf("sample %d: want seq %d, got %d", i, want[i], rec.samples[i])
		}
	}
}

func TestRedrawReflectsState(t *testing.T) {
	a, surf := newTestAnimator(t, 1, Options{})
	start := time.Unix(0, 0)
	a.Start(start)

	chart := a.chart
	g := chart.Bars[1]
	probeX := int(g.BaseX + g.Length()*0.9)
	probeY := int(g.Y + g.Height/2)
	bar := a.style.Bar()

	a.Tick(start) // bars not started
	snap := surf.Snapshot()
	if snap.RGBAAt(probeX, probeY) == bar {
		t.Error("Bar drawn before its growth started")
	}
	system.PutImage(snap)

	a.Tick(start.Add(time.Second))
	snap = surf.Snapshot()
	if got := snap.RGBAAt(probeX, probeY); got != bar {
		t.Errorf("Expected bar colour at full scale, got %+v", got)
	}
	system.PutImage(snap)
}

func TestRunCompletes(t *testing.T) {
	defer leaktest.Check(t)()

	rec := &recorder{}
	a, _ := newTestAnimator(t, 0.2, rec.options())

	if err := Run(context.Background(), a, 5*time.Millisecond); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if a.State() != Completed || rec.completes != 1 {
		t.Errorf("Expected one completion, state=%s completes=%d", a.State(), rec.completes)
	}
}

func TestRunCancelled(t *testing.T) {
	defer leaktest.Check(t)()

	rec := &recorder{}
	a, _ := newTestAnimator(t, 10, rec.options())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Run(ctx, a, 5*time.Millisecond)
	if err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if a.State() != Cancelled || rec.completes != 0 {
		t.Errorf("Expected Cancelled without completion, state=%s completes=%d", a.State(), rec.completes)
	}
}

func TestRunWithCancelledContext(t *testing.T) {
	rec := &recorder{}
	a, _ := newTestAnimator(t, 0.000001, rec.options())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, a, time.Millisecond); err != context.Canceled {
		t.Errorf("Expected Canceled, got %v", err)
	}
	if rec.completes != 0 {
		t.Error("Completion fired for a context cancelled at time 0")
	}
}
