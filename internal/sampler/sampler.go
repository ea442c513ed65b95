// Package sampler captures still frames of the drawing surface for
// diagnostics while an animation runs.
package sampler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/chart2video/internal/errs"
	"github.com/ivlev/chart2video/internal/system"
)

// Frame is an encoded still of the surface. It is never modified after creation.
type Frame struct {
	Name     string
	Sequence int
	Elapsed  time.Duration
	Data     []byte // PNG
	Width    int
	Height   int
}

// Snapshotter is the single-shot raster export of a drawing surface.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

// EncodeFunc writes img in some raster format.
type EncodeFunc func(w io.Writer, img image.Image) error

type Options struct {
	// MaxWidth downscales captured frames wider than this. 0 keeps full size.
	MaxWidth int
	// Parallel bounds concurrent encodes.
	Parallel int64
	Encode   EncodeFunc
}

// Sampler encodes snapshots in the background. Completion order does not
// matter: frames are ordered by Sequence.
type Sampler struct {
	src  Snapshotter
	opts Options
	sem  *semaphore.Weighted

	ctx   context.Context
	group *errgroup.Group

	mu     sync.Mutex
	frames []Frame
	failed int
}

func New(ctx context.Context, src Snapshotter, opts Options) *Sampler {
	if opts.Parallel <= 0 {
		opts.Parallel = 2
	}
	if opts.Encode == nil {
		opts.Encode = png.Encode
	}
	g, gctx := errgroup.WithContext(ctx)
	return &Sampler{
		src:   src,
		opts:  opts,
		sem:   semaphore.NewWeighted(opts.Parallel),
		ctx:   gctx,
		group: g,
	}
}

// Sample takes a snapshot right away and encodes it in the background.
// It satisfies animator.Sampler.
func (s *Sampler) Sample(seq int, elapsed time.Duration) {
	snap := s.src.Snapshot()
	s.group.Go(func() error {
		defer system.PutImage(snap)
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			s.skip(seq, err)
			return nil
		}
		defer s.sem.Release(1)

		f, err := s.encode(snap, FrameName(seq), seq, elapsed)
		if err != nil {
			s.skip(seq, err)
			return nil
		}
		s.mu.Lock()
		s.frames = append(s.frames, f)
		s.mu.Unlock()
		return nil
	})
}

func (s *Sampler) skip(seq int, err error) {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
	log.Printf("[!] Кадр %d пропущен: %v", seq, err)
}

// Capture snapshots and encodes one frame synchronously.
func (s *Sampler) Capture(ctx context.Context, name string, seq int, elapsed time.Duration) (Frame, error) {
	snap := s.src.Snapshot()
	defer system.PutImage(snap)
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	return s.encode(snap, name, seq, elapsed)
}

func (s *Sampler) encode(img *image.RGBA, name string, seq int, elapsed time.Duration) (Frame, error) {
	var src image.Image = img
	b := img.Bounds()
	if s.opts.MaxWidth > 0 && b.Dx() > s.opts.MaxWidth {
		h := b.Dy() * s.opts.MaxWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, s.opts.MaxWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := s.opts.Encode(&buf, src); err != nil {
		return Frame{}, errs.Wrap(errs.EncodeFailure, err, "encode frame %d", seq)
	}
	return Frame{
		Name:     name,
		Sequence: seq,
		Elapsed:  elapsed,
		Data:     buf.Bytes(),
		Width:    src.Bounds().Dx(),
		Height:   src.Bounds().Dy(),
	}, nil
}

// Wait blocks until all pending encodes have finished.
func (s *Sampler) Wait() error {
	return s.group.Wait()
}

// Frames returns the captured frames ordered by sequence number.
func (s *Sampler) Frames() []Frame {
	s.mu.Lock()
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// Failed is the number of frames dropped because encoding failed or the
// sampler was cancelled.
func (s *Sampler) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Clear drops all captured frames.
func (s *Sampler) Clear() {
	s.mu.Lock()
	s.frames = nil
	s.failed = 0
	s.mu.Unlock()
}

func FrameName(seq int) string {
	return fmt.Sprintf("frame_%05d", seq)
}

// Export writes every captured frame to dir as <name>.png.
func Export(frames []Frame, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := filepath.Join(dir, f.Name+".png")
		if err := os.WriteFile(path, f.Data, 0644); err != nil {
			return paths, fmt.Errorf("write frame %d: %w", f.Sequence, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
