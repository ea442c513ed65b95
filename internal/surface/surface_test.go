package surface

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/ivlev/chart2video/internal/system"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	black = color.RGBA{A: 255}
)

func TestNewRejectsEmptySize(t *testing.T) {
	if _, err := New(0, 10, "sans"); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestPaintAndSnapshot(t *testing.T) {
	s, err := New(64, 32, "sans")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Paint(func(c *Canvas) {
		c.Clear(white)
		c.FillRect(30, 20, 10, 5, red) // corners in reverse order
	})

	snap := s.Snapshot()
	defer system.PutImage(snap)

	if got := snap.RGBAAt(15, 10); got != red {
		t.Errorf("Expected red inside rect, got %+v", got)
	}
	if got := snap.RGBAAt(2, 2); got != white {
		t.Errorf("Expected white background, got %+v", got)
	}

	// Snapshot is a copy
	s.Paint(func(c *Canvas) { c.Clear(black) })
	if got := snap.RGBAAt(2, 2); got != white {
		t.Errorf("Snapshot changed after repaint: %+v", got)
	}
}

func TestDrawTextOpacity(t *testing.T) {
	s, _ := New(200, 60, "sans")

	countInk := func(alpha float64) int {
		s.Paint(func(c *Canvas) {
			c.Clear(white)
			c.DrawText("Hello", 10, 40, AlignLeft, 24, black, alpha)
		})
		snap := s.Snapshot()
		defer system.PutImage(snap)
		n := 0
		for i := 0; i < len(snap.Pix); i += 4 {
			if snap.Pix[i] < 128 {
				n++
			}
		}
		return n
	}

	if n := countInk(0); n != 0 {
		t.Errorf("Transparent text must not touch the raster, %d dark pixels", n)
	}
	if n := countInk(1); n == 0 {
		t.Error("Opaque text produced no dark pixels")
	}
}

func TestMeasureAndAlign(t *testing.T) {
	s, _ := New(300, 60, "mono")
	var short, long float64
	s.Paint(func(c *Canvas) {
		short = c.MeasureText("ab", 20)
		long = c.MeasureText("abcd", 20)
	})
	if short <= 0 || long <= short {
		t.Errorf("Unexpected widths: short=%.1f long=%.1f", short, long)
	}
}

func TestStreamStopsOnCancel(t *testing.T) {
	defer leaktest.Check(t)()

	s, _ := New(16, 16, "sans")
	ctx, cancel := context.WithCancel(context.Background())
	frames := s.Stream(ctx, 100)

	select {
	case f := <-frames:
		if len(f) != 16*16*4 {
			t.Errorf("Expected %d bytes per frame, got %d", 16*16*4, len(f))
		}
	case <-time.After(time.Second):
		t.Fatal("No frame received")
	}

	cancel()
	for range frames {
	}
}
