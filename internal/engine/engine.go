package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/chart2video/internal/animator"
	"github.com/ivlev/chart2video/internal/config"
	"github.com/ivlev/chart2video/internal/errs"
	"github.com/ivlev/chart2video/internal/layout"
	"github.com/ivlev/chart2video/internal/sampler"
	"github.com/ivlev/chart2video/internal/source"
	"github.com/ivlev/chart2video/internal/surface"
	"github.com/ivlev/chart2video/internal/system"
	"github.com/ivlev/chart2video/internal/video"
)

// VideoProject is one recording session: data and style in, video artifact out.
type VideoProject struct {
	Config  *config.Config
	Data    source.DataSet
	Style   config.StyleConfig
	Encoder video.Encoder
	// Quality is passed to the encoder; 0 keeps its default.
	Quality int

	// OnProgress receives the animation progress in percent.
	OnProgress func(percent float64)
}

type Result struct {
	Artifact   *video.Artifact
	OutputPath string
	Frames     []sampler.Frame
	FramePaths []string
	Timeline   animator.Timeline
	Stats      Stats
}

type Stats struct {
	Total     time.Duration
	Animation time.Duration
	Finalize  time.Duration
	Ticks     int
	Frames    int
}

func NewVideoProject(cfg *config.Config, data source.DataSet, style config.StyleConfig, enc video.Encoder) *VideoProject {
	cfg.Defaults()
	return &VideoProject{
		Config:  cfg,
		Data:    data,
		Style:   style,
		Encoder: enc,
	}
}

// Run records the animation. If ctx ends first the animation is cancelled,
// the recorder is stopped and ctx's error is returned.
func (p *VideoProject) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	if err := p.Style.Validate(); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "invalid style")
	}
	width, height, _ := p.Style.Resolution.Size()

	chart, err := layout.Compute(p.Data, p.Style, width, height)
	if err != nil {
		return nil, err
	}

	surf, err := surface.New(width, height, p.Style.FontFamily)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "surface")
	}
	bg := p.Style.Background()
	surf.Paint(func(c *surface.Canvas) { c.Clear(bg) })

	prefs, err := video.ParseCodecs(p.Config.Codecs)
	if err != nil {
		return nil, err
	}
	enc := p.Encoder
	if enc == nil {
		enc = video.DefaultEncoder()
	}

	var smp *sampler.Sampler
	if p.Config.FramesDir != "" {
		smp = sampler.New(ctx, surf, sampler.Options{MaxWidth: p.Config.SampleWidth})
	}

	ticks := 0
	opts := animator.Options{
		OnProgress: func(percent float64) {
			ticks++
			if p.OnProgress != nil {
				p.OnProgress(percent)
			}
		},
		OnComplete:  func() { fmt.Println("[*] Анимация завершена") },
		SampleEvery: p.Config.SampleEvery,
	}
	if smp != nil {
		opts.Sampler = smp
	}
	anim := animator.New(chart, p.Style, surf, opts)

	fmt.Println("--- [PROJECT: CHART ENGINE] ---")
	fmt.Printf("[*] Данные: %d строк | Заголовок: %q\n", p.Data.Len(), p.Style.Title)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs\n", width, height, p.Style.FrameRate, p.Style.DurationSeconds)

	rec := video.NewRecorder(surf, enc, prefs, p.Style.FrameRate)
	rec.SetQuality(p.Quality)
	if err := rec.Start(ctx); err != nil {
		return nil, err
	}
	fmt.Printf("[*] Кодек: %s (%s)\n", rec.Codec().Name, rec.Codec().MimeType)
	fmt.Println("-----------------------------")

	stopRecorder := func() (*video.Artifact, error) {
		// Stop must run even when ctx is already done.
		stopCtx, cancel := context.WithTimeout(context.Background(), p.Config.StopTimeout)
		defer cancel()
		return rec.Stop(stopCtx)
	}

	if err := anim.Start(time.Now()); err != nil {
		abortRecording(stopRecorder)
		return nil, err
	}

	animStart := time.Now()
	runErr := animator.Run(ctx, anim, p.tickInterval())
	animEnd := time.Now()

	if runErr != nil {
		abortRecording(stopRecorder)
		if smp != nil {
			smp.Wait()
		}
		return nil, runErr
	}

	artifact, stopErr := stopRecorder()
	finalizeEnd := time.Now()

	if smp != nil {
		smp.Wait()
	}
	if stopErr != nil {
		return nil, stopErr
	}

	res := &Result{
		Artifact: artifact,
		Timeline: anim.Timeline(),
		Stats: Stats{
			Total:     time.Since(startTime),
			Animation: animEnd.Sub(animStart),
			Finalize:  finalizeEnd.Sub(animEnd),
			Ticks:     ticks,
			Frames:    artifact.Frames,
		},
	}

	if p.Config.OutputVideo != "" {
		res.OutputPath = WithExtension(p.Config.OutputVideo, artifact.Extension)
		if err := artifact.WriteFile(res.OutputPath); err != nil {
			return nil, fmt.Errorf("ошибка записи видео: %w", err)
		}
	}

	if smp != nil {
		res.Frames = smp.Frames()
		if failed := smp.Failed(); failed > 0 {
			log.Printf("[!] Пропущено диагностических кадров: %d", failed)
		}
		paths, err := sampler.Export(res.Frames, p.Config.FramesDir)
		if err != nil {
			log.Printf("[!] Не удалось сохранить кадры: %v", err)
		}
		res.FramePaths = paths
	}

	res.Stats.Total = time.Since(startTime)
	if p.Config.ShowStats {
		p.report(res)
	}
	return res, nil
}

// abortRecording stops a recording whose result is no longer wanted.
func abortRecording(stop func() (*video.Artifact, error)) {
	if _, err := stop(); err != nil {
		log.Printf("[!] Ошибка остановки записи: %v", err)
	}
}

func (p *VideoProject) tickInterval() time.Duration {
	if p.Config.TickInterval > 0 {
		return p.Config.TickInterval
	}
	return time.Second / time.Duration(p.Style.FrameRate)
}

// WithExtension replaces the extension of path with ext.
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func (p *VideoProject) report(res *Result) {
	host := system.ReadHostStats(200 * time.Millisecond)
	pool := system.SnapshotPoolStats()
	s := res.Stats
	fps := 0.0
	if s.Animation > 0 {
		fps = float64(s.Frames) / s.Animation.Seconds()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Animation: %.2fs (%d ticks)\n"+
			"Finalize: %.2fs\n"+
			"Encoded Frames: %d (effective FPS %.2f)\n"+
			"Artifact: %d bytes %s\n"+
			"Host: CPU %.1f%% of %d cores | RAM %.1f%% (%d MB)\n"+
			"Snapshot buffers: %d allocated, %d reused\n"+
			"----------------------------\n",
		p.Config.BuildVersion, s.Total.Seconds(), s.Animation.Seconds(), s.Ticks,
		s.Finalize.Seconds(), s.Frames, fps, res.Artifact.Size(), res.Artifact.MimeType,
		host.CPUPercent, host.LogicalCPUs, host.MemUsedPct, host.MemUsedMB,
		pool.Allocs, pool.Reused(),
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Rows: %d | Codec: %s | Total: %.2fs | Finalize: %.2fs | FPS: %.2f | CPU: %.1f%%\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.DataPath),
		p.Data.Len(),
		res.Artifact.Codec,
		s.Total.Seconds(),
		s.Finalize.Seconds(),
		fps,
		host.CPUPercent,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
