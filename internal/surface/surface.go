// Package surface implements the shared drawing surface: an in-memory RGBA
// raster with an imperative drawing API, a single-shot export and a live
// capture stream.
package surface

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/ivlev/chart2video/internal/system"
)

// Surface is written by exactly one painter at a time and read by any number
// of snapshot and stream readers.
type Surface struct {
	mu    sync.RWMutex
	img   *image.RGBA
	fonts *fontCache
}

func New(width, height int, fontFamily string) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	return &Surface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: newFontCache(fontFamily),
	}, nil
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Paint runs fn with exclusive access to the raster. One call is one redraw.
func (s *Surface) Paint(fn func(c *Canvas)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Canvas{img: s.img, fonts: s.fonts})
}

// Snapshot copies the current raster into a pooled image. Release it with
// system.PutImage when done.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dst := system.GetImage(s.img.Rect)
	copy(dst.Pix, s.img.Pix)
	return dst
}

// Stream emits a raw RGBA copy of the raster every 1/fps until ctx is done.
// The first frame is always delivered; later frames are dropped while the
// consumer is busy. The channel is closed on exit.
func (s *Surface) Stream(ctx context.Context, fps int) <-chan []byte {
	if fps <= 0 {
		fps = 30
	}
	out := make(chan []byte, 2)
	out <- s.rawCopy()
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			select {
			case out <- s.rawCopy():
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return out
}

func (s *Surface) rawCopy() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf := make([]byte, len(s.img.Pix))
	copy(buf, s.img.Pix)
	return buf
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is the drawing API handed out by Paint.
type Canvas struct {
	img   *image.RGBA
	fonts *fontCache
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect fills the rectangle spanned by two corners in any order.
func (c *Canvas) FillRect(x0, y0, x1, y1 float64, col color.Color) {
	r := image.Rect(round(x0), round(y0), round(x1), round(y1)).Canon()
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// DrawText draws text with its baseline at y. alpha scales the colour's opacity.
func (c *Canvas) DrawText(text string, x, y float64, align Align, size float64, col color.RGBA, alpha float64) {
	if text == "" || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	face := c.fonts.face(size)
	src := image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: uint8(float64(col.A)*alpha + 0.5)})
	d := &font.Drawer{Dst: c.img, Src: src, Face: face}

	switch align {
	case AlignCenter:
		x -= toFloat(d.MeasureString(text)) / 2
	case AlignRight:
		x -= toFloat(d.MeasureString(text))
	}
	d.Dot = toFixedPoint(x, y)
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(text string, size float64) float64 {
	return toFloat(font.MeasureString(c.fonts.face(size), text))
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
