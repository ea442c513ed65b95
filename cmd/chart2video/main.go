package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ivlev/chart2video/internal/config"
	"github.com/ivlev/chart2video/internal/engine"
	"github.com/ivlev/chart2video/internal/source"
	"github.com/ivlev/chart2video/internal/system"
	"github.com/ivlev/chart2video/internal/video"
)

var buildVersion = "dev"

func main() {
	// Создаем нужные директории, если их нет
	dirs := []string{"input/data", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	def := config.DefaultStyle()

	dataPtr := flag.String("data", "", "Путь к данным .json/.yaml (по умолчанию: самый свежий файл в input/data/)")
	stylePtr := flag.String("style", "", "YAML-файл стиля (флаги ниже переопределяют его значения)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	titlePtr := flag.String("title", "", "Заголовок графика")
	durationPtr := flag.Float64("duration", 0, "Длительность анимации в секундах")
	fpsPtr := flag.Int("fps", 0, "FPS")
	resolutionPtr := flag.String("resolution", "", "Разрешение: "+strings.Join(config.ResolutionNames(), ", "))
	barColorPtr := flag.String("bar-color", "", "Цвет столбцов (#rrggbb)")
	bgColorPtr := flag.String("bg-color", "", "Цвет фона (#rrggbb)")
	fontSizePtr := flag.Float64("font-size", 0, "Размер шрифта подписей (px)")
	fontPtr := flag.String("font", "", "Шрифт: sans, bold, mono")
	titleModePtr := flag.String("title-mode", "", "Появление заголовка: fade, typewriter")
	codecsPtr := flag.String("codecs", "", "Кодеки по приоритету через запятую (vp9,vp8,h264,mjpeg)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто)")
	framesDirPtr := flag.String("frames-dir", "", "Папка для диагностических кадров (пусто - не сохранять)")
	sampleEveryPtr := flag.Int("sample-every", config.DefaultSampleEvery, "Сохранять кадр 1 и далее каждый N-й")
	sampleWidthPtr := flag.Int("sample-width", 0, "Максимальная ширина диагностических кадров (0 - без масштабирования)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	style := def
	if *stylePtr != "" {
		s, err := config.ReadStyle(*stylePtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения стиля: %v", err)
		}
		style = s
	}
	applyOverrides(&style, overrides{
		title: *titlePtr, duration: *durationPtr, fps: *fpsPtr, resolution: *resolutionPtr,
		barColor: *barColorPtr, bgColor: *bgColorPtr, fontSize: *fontSizePtr, font: *fontPtr,
		titleMode: *titleModePtr,
	})
	if err := style.Validate(); err != nil {
		log.Fatalf("[-] Некорректный стиль: %v", err)
	}

	dataPath := *dataPtr
	if dataPath == "" {
		latest, err := system.FindLatest("input/data", ".json", ".yaml", ".yml")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите данные в input/data/", err)
		}
		dataPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", dataPath)
	}

	src, err := source.NewFileSource(dataPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	data, err := src.Load()
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки данных: %v", err)
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(dataPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		// Расширение будет заменено на расширение выбранного кодека
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.video", cleanName, timestamp))
	}

	var codecs []string
	if *codecsPtr != "" {
		codecs = strings.Split(*codecsPtr, ",")
	}

	cfg := &config.Config{
		DataPath:     dataPath,
		StylePath:    *stylePtr,
		OutputVideo:  finalOutput,
		FramesDir:    *framesDirPtr,
		Codecs:       codecs,
		SampleEvery:  *sampleEveryPtr,
		SampleWidth:  *sampleWidthPtr,
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
	}

	project := engine.NewVideoProject(cfg, data, style, video.DefaultEncoder())
	project.Quality = *qualityPtr
	project.OnProgress = progressPrinter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := project.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if len(res.FramePaths) > 0 {
		fmt.Printf("[*] Сохранено кадров: %d в %s\n", len(res.FramePaths), cfg.FramesDir)
	}
	fmt.Printf("[+++] Успех! Результат: %s (%s, %d байт)\n", res.OutputPath, res.Artifact.MimeType, res.Artifact.Size())
}

type overrides struct {
	title      string
	duration   float64
	fps        int
	resolution string
	barColor   string
	bgColor    string
	fontSize   float64
	font       string
	titleMode  string
}

func applyOverrides(s *config.StyleConfig, o overrides) {
	if o.title != "" {
		s.Title = o.title
	}
	if o.duration > 0 {
		s.DurationSeconds = o.duration
	}
	if o.fps > 0 {
		s.FrameRate = o.fps
	}
	if o.resolution != "" {
		s.Resolution = config.Resolution(strings.ToLower(o.resolution))
	}
	if o.barColor != "" {
		s.BarColor = o.barColor
	}
	if o.bgColor != "" {
		s.BackgroundColor = o.bgColor
	}
	if o.fontSize > 0 {
		s.FontSize = o.fontSize
	}
	if o.font != "" {
		s.FontFamily = o.font
	}
	if o.titleMode != "" {
		s.TitleMode = config.TitleMode(strings.ToLower(o.titleMode))
	}
}

// progressPrinter redraws one line on a terminal and prints quarter steps otherwise.
func progressPrinter() func(float64) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return func(p float64) {
			fmt.Printf("\r[>] Прогресс: %5.1f%%", p)
			if p >= 100 {
				fmt.Println()
			}
		}
	}
	next := 0.0
	return func(p float64) {
		if p >= next {
			fmt.Printf("[>] Прогресс: %.0f%%\n", p)
			next += 25
		}
	}
}
