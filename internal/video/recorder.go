package video

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"github.com/ivlev/chart2video/internal/errs"
)

type RecorderState int

const (
	Idle RecorderState = iota
	Recording
	Stopped
	// Failed is terminal: finalization went wrong and the recorder must be discarded.
	Failed
)

func (s RecorderState) String() string {
	return [...]string{"idle", "recording", "stopped", "failed"}[s]
}

// StreamSource is the live capture side of the drawing surface.
type StreamSource interface {
	Size() (int, int)
	Stream(ctx context.Context, fps int) <-chan []byte
}

// Recorder captures a live stream into one VideoArtifact. It records once:
// a new recording needs a new Recorder.
type Recorder struct {
	src     StreamSource
	enc     Encoder
	prefs   []Codec
	fps     int
	quality int

	mu       sync.Mutex
	state    RecorderState
	busy     bool
	codec    Codec
	artifact *Artifact

	session       Session
	cancelStream  context.CancelFunc
	cancelSession context.CancelFunc
	pumpDone      chan struct{}
	collectDone   chan struct{}
	pumpErr       error
	frames        int
	startedAt     time.Time
	stoppedAt     time.Time
	buf           bytes.Buffer
}

func NewRecorder(src StreamSource, enc Encoder, prefs []Codec, fps int) *Recorder {
	if len(prefs) == 0 {
		prefs = DefaultPreferences
	}
	return &Recorder{src: src, enc: enc, prefs: prefs, fps: fps}
}

// SetQuality overrides the encoder quality knob. Must be called before Start.
func (r *Recorder) SetQuality(q int) {
	r.mu.Lock()
	r.quality = q
	r.mu.Unlock()
}

func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Codec is the negotiated codec; zero before Start.
func (r *Recorder) Codec() Codec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codec
}

// begin marks an operation in flight. Overlapping calls are rejected.
func (r *Recorder) begin(want RecorderState, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return errs.New(errs.RecorderState, "%s: another start/stop is in progress", op)
	}
	if r.state != want {
		return errs.New(errs.RecorderState, "%s: recorder is %s", op, r.state)
	}
	r.busy = true
	return nil
}

func (r *Recorder) end(state RecorderState) {
	r.mu.Lock()
	r.state = state
	r.busy = false
	r.mu.Unlock()
}

// Start negotiates a codec, opens an encoder session and starts pumping the
// surface stream into it.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.begin(Idle, "start"); err != nil {
		return err
	}

	codec, err := Negotiate(r.enc, r.prefs)
	if err != nil {
		r.end(Idle)
		return err
	}
	if err := ctx.Err(); err != nil {
		r.end(Idle)
		return err
	}

	w, h := r.src.Size()
	params := StreamParams{Width: w, Height: h, FPS: r.fps, Quality: r.quality}

	// The session outlives Start's ctx; Stop owns its lifetime.
	sessCtx, cancelSession := context.WithCancel(context.Background())
	session, err := r.enc.Open(sessCtx, codec, params)
	if err != nil {
		cancelSession()
		r.end(Idle)
		return errs.Wrap(errs.UnsupportedEncoder, err, "open %s encoder", codec.Name)
	}

	streamCtx, cancelStream := context.WithCancel(context.Background())
	startedAt := time.Now()
	frames := r.src.Stream(streamCtx, r.fps)

	r.mu.Lock()
	r.startedAt = startedAt
	r.codec = codec
	r.session = session
	r.cancelStream = cancelStream
	r.cancelSession = cancelSession
	r.pumpDone = make(chan struct{})
	r.collectDone = make(chan struct{})
	r.mu.Unlock()

	go r.pump(frames, session)
	go r.collect(session)

	r.end(Recording)
	return nil
}

// pump writes stream frames at a fixed rate. Frames dropped by a slow
// consumer are filled with the latest frame so the video keeps the wall-clock
// length of the recording.
func (r *Recorder) pump(frames <-chan []byte, session Session) {
	defer close(r.pumpDone)
	var last []byte
	for pix := range frames {
		if r.pumpErr != nil {
			continue // drain until the stream closes
		}
		last = pix
		r.fill(session, pix, framesDue(r.recorded(), r.fps, false))
	}

	if last != nil && r.pumpErr == nil {
		r.fill(session, last, framesDue(r.recorded(), r.fps, true))
	}
}

// recorded is the recording time so far, frozen once Stop was called.
func (r *Recorder) recorded() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stoppedAt.IsZero() {
		return r.stoppedAt.Sub(r.startedAt)
	}
	return time.Since(r.startedAt)
}

// fill writes pix until the session holds due frames.
func (r *Recorder) fill(session Session, pix []byte, due int) {
	for r.frames < due {
		if err := session.WriteFrame(pix); err != nil {
			r.pumpErr = err
			log.Printf("[!] Ошибка записи кадра в энкодер: %v", err)
			return
		}
		r.frames++
	}
}

// framesDue is the number of frames that cover elapsed at fps. A frame shown
// at elapsed counts unless final is set, in which case elapsed is the end of
// the video.
func framesDue(elapsed time.Duration, fps int, final bool) int {
	if elapsed < 0 {
		elapsed = 0
	}
	ticks := elapsed * time.Duration(fps)
	if final {
		return int((ticks + time.Second - 1) / time.Second)
	}
	return int(ticks/time.Second) + 1
}

func (r *Recorder) collect(session Session) {
	defer close(r.collectDone)
	for chunk := range session.Chunks() {
		r.buf.Write(chunk)
	}
}

// Stop finalizes the encoder and assembles the artifact. If ctx ends before
// the encoder finishes, the recording fails.
func (r *Recorder) Stop(ctx context.Context) (*Artifact, error) {
	if err := r.begin(Recording, "stop"); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.stoppedAt = time.Now()
	r.mu.Unlock()
	r.cancelStream()

	select {
	case <-r.pumpDone:
	case <-ctx.Done():
		// The encoder stopped taking frames. Killing the session unblocks
		// the pump; finalize afterwards to release the collector.
		r.cancelSession()
		go func() {
			<-r.pumpDone
			r.session.Finalize()
		}()
		r.end(Failed)
		return nil, errs.Wrap(errs.FinalizationFailure, ctx.Err(), "encoder stopped accepting frames")
	}

	finalized := make(chan error, 1)
	go func() { finalized <- r.session.Finalize() }()

	var err error
	select {
	case err = <-finalized:
	case <-ctx.Done():
		r.cancelSession()
		r.end(Failed)
		return nil, errs.Wrap(errs.FinalizationFailure, ctx.Err(), "encoder did not finish")
	}
	<-r.collectDone
	r.cancelSession()

	if err == nil {
		err = r.pumpErr
	}
	if err != nil {
		r.end(Failed)
		return nil, errs.Wrap(errs.FinalizationFailure, err, "finalize %s recording", r.codec.Name)
	}
	if r.buf.Len() == 0 {
		r.end(Failed)
		return nil, errs.New(errs.FinalizationFailure, "encoder produced no data")
	}

	a := newArtifact(r.buf.Bytes(), r.codec, r.frames)
	r.buf = bytes.Buffer{}

	r.mu.Lock()
	r.artifact = a
	r.mu.Unlock()
	r.end(Stopped)
	return a, nil
}

// Artifact returns the recording of a stopped recorder.
func (r *Recorder) Artifact() (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Stopped {
		return nil, errs.New(errs.RecorderState, "no artifact: recorder is %s", r.state)
	}
	return r.artifact, nil
}

func (r *Recorder) PreviewURL() (string, error) {
	a, err := r.Artifact()
	if err != nil {
		return "", err
	}
	return a.PreviewURL(), nil
}

func (r *Recorder) Download(dir, name string) (string, error) {
	a, err := r.Artifact()
	if err != nil {
		return "", err
	}
	return a.Download(dir, name)
}
