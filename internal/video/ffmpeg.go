package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/ivlev/chart2video/internal/system"
)

const chunkSize = 64 * 1024

// FFmpegEncoder streams raw RGBA into an ffmpeg child process and reads the
// muxed container back from its stdout.
type FFmpegEncoder struct {
	// Probe lists installed encoders; defaults to system.FFmpegEncoders.
	Probe func() (map[string]bool, error)
}

func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{Probe: system.FFmpegEncoders}
}

func (e *FFmpegEncoder) encoderFor(c Codec) (string, bool) {
	if len(c.FFmpegEncoders) == 0 || e.Probe == nil {
		return "", false
	}
	available, err := e.Probe()
	if err != nil {
		return "", false
	}
	for _, name := range c.FFmpegEncoders {
		if available[name] {
			return name, true
		}
	}
	return "", false
}

func (e *FFmpegEncoder) Available(c Codec) bool {
	_, ok := e.encoderFor(c)
	return ok
}

func (e *FFmpegEncoder) Open(ctx context.Context, c Codec, p StreamParams) (Session, error) {
	encoderName, ok := e.encoderFor(c)
	if !ok {
		return nil, fmt.Errorf("ffmpeg has no encoder for %s", c.Name)
	}

	args := buildFFmpegArgs(c, encoderName, p)
	cmd := exec.CommandContext(ctx, system.FFmpegPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	s := &ffmpegSession{
		cmd:      cmd,
		stdin:    stdin,
		chunks:   make(chan []byte, 16),
		readDone: make(chan struct{}),
		encoder:  encoderName,
	}
	cmd.Stderr = &s.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	go s.readLoop(stdout)
	return s, nil
}

func buildFFmpegArgs(c Codec, encoderName string, p StreamParams) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-an",
		"-c:v", encoderName,
		"-pix_fmt", "yuv420p",
	}

	// Качество в зависимости от энкодера
	q := p.Quality
	switch encoderName {
	case "libvpx-vp9":
		if q == 0 {
			q = 32
		}
		args = append(args, "-deadline", "realtime", "-cpu-used", "8", "-row-mt", "1", "-b:v", "0", "-crf", fmt.Sprintf("%d", q))
	case "libvpx":
		if q == 0 {
			q = 10
		}
		args = append(args, "-deadline", "realtime", "-cpu-used", "8", "-b:v", "4M", "-crf", fmt.Sprintf("%d", q))
	case "h264_videotoolbox":
		if q == 0 {
			q = 75
		}
		args = append(args, "-b:v", fmt.Sprintf("%dk", q*100))
	case "h264_nvenc":
		if q == 0 {
			q = 28
		}
		args = append(args, "-cq", fmt.Sprintf("%d", q))
	default: // libx264
		if q == 0 {
			q = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", q), "-preset", "veryfast")
	}

	args = append(args, "-f", c.Container)
	if c.Container == "mp4" {
		// mp4 на stdout возможен только во фрагментированном виде
		args = append(args, "-movflags", "frag_keyframe+empty_moov+default_base_moof")
	}
	return append(args, "pipe:1")
}

type ffmpegSession struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	chunks   chan []byte
	readDone chan struct{}
	stderr   bytes.Buffer
	encoder  string

	mu     sync.Mutex
	closed bool
}

func (s *ffmpegSession) readLoop(r io.Reader) {
	defer close(s.readDone)
	defer close(s.chunks)
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.chunks <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegSession) WriteFrame(pix []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("session finalized")
	}
	if _, err := s.stdin.Write(pix); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (s *ffmpegSession) Chunks() <-chan []byte {
	return s.chunks
}

func (s *ffmpegSession) Finalize() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session already finalized")
	}
	s.closed = true
	s.stdin.Close()
	s.mu.Unlock()

	<-s.readDone
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg %s wait error: %w, output: %s", s.encoder, err, s.stderr.String())
	}
	return nil
}
