package video

import (
	"context"
	"fmt"
)

// StreamParams describe the raw RGBA frames fed into a session.
type StreamParams struct {
	Width, Height int
	FPS           int
	Quality       int // 0: encoder default
}

// FrameSize is the byte length of one raw RGBA frame.
func (p StreamParams) FrameSize() int {
	return p.Width * p.Height * 4
}

// Encoder opens live encoding sessions.
type Encoder interface {
	Available(c Codec) bool
	Open(ctx context.Context, c Codec, p StreamParams) (Session, error)
}

// Session consumes raw frames and pushes encoded chunks in output order.
// Chunks is closed once Finalize has flushed everything.
type Session interface {
	WriteFrame(pix []byte) error
	Chunks() <-chan []byte
	Finalize() error
}

// Chain tries encoders in order.
type Chain []Encoder

func (c Chain) Available(codec Codec) bool {
	for _, e := range c {
		if e.Available(codec) {
			return true
		}
	}
	return false
}

func (c Chain) Open(ctx context.Context, codec Codec, p StreamParams) (Session, error) {
	for _, e := range c {
		if e.Available(codec) {
			return e.Open(ctx, codec, p)
		}
	}
	return nil, fmt.Errorf("no encoder for codec %s", codec.Name)
}

// DefaultEncoder uses ffmpeg when installed and the built-in MJPEG encoder otherwise.
func DefaultEncoder() Encoder {
	return Chain{NewFFmpegEncoder(), &MJPEGEncoder{}}
}
