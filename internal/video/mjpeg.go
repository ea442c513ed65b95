package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
)

// MJPEGEncoder produces a Motion-JPEG stream (concatenated JPEG images)
// without external tools.
type MJPEGEncoder struct {
	Quality int
}

func (e *MJPEGEncoder) Available(c Codec) bool {
	return c.Name == MJPEG.Name
}

func (e *MJPEGEncoder) Open(ctx context.Context, c Codec, p StreamParams) (Session, error) {
	if !e.Available(c) {
		return nil, fmt.Errorf("mjpeg encoder cannot produce %s", c.Name)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", p.Width, p.Height)
	}
	q := e.Quality
	if p.Quality > 0 {
		q = p.Quality
	}
	if q <= 0 || q > 100 {
		q = 85
	}
	return &mjpegSession{
		params:  p,
		quality: q,
		chunks:  make(chan []byte, 16),
	}, nil
}

type mjpegSession struct {
	params  StreamParams
	quality int
	chunks  chan []byte

	mu     sync.Mutex
	closed bool
}

func (s *mjpegSession) WriteFrame(pix []byte) error {
	if len(pix) != s.params.FrameSize() {
		return fmt.Errorf("frame is %d bytes, want %d", len(pix), s.params.FrameSize())
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: s.params.Width * 4,
		Rect:   image.Rect(0, 0, s.params.Width, s.params.Height),
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return fmt.Errorf("jpeg encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session finalized")
	}
	s.chunks <- buf.Bytes()
	return nil
}

func (s *mjpegSession) Chunks() <-chan []byte {
	return s.chunks
}

func (s *mjpegSession) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session already finalized")
	}
	s.closed = true
	close(s.chunks)
	return nil
}
