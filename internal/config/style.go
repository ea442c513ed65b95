package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

type TitleMode string

const (
	TitleFade       TitleMode = "fade"
	TitleTypewriter TitleMode = "typewriter"
)

// StyleConfig is an immutable snapshot of the chart style. It is passed by
// value into every component of a recording session.
type StyleConfig struct {
	Title           string     `yaml:"title"`
	BarColor        string     `yaml:"bar_color"`
	BackgroundColor string     `yaml:"background_color"`
	TextColor       string     `yaml:"text_color,omitempty"` // empty: derived from background
	FontSize        float64    `yaml:"font_size"`
	FontFamily      string     `yaml:"font_family"`
	FrameRate       int        `yaml:"frame_rate"`
	DurationSeconds float64    `yaml:"duration_seconds"`
	Resolution      Resolution `yaml:"resolution"`
	TitleMode       TitleMode  `yaml:"title_mode"`
}

func DefaultStyle() StyleConfig {
	return StyleConfig{
		Title:           "",
		BarColor:        "#4e79a7",
		BackgroundColor: "#ffffff",
		FontSize:        18,
		FontFamily:      "sans",
		FrameRate:       30,
		DurationSeconds: 5,
		Resolution:      Res720p,
		TitleMode:       TitleFade,
	}
}

func (s StyleConfig) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %v", s.FontSize)
	}
	if s.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", s.FrameRate)
	}
	if s.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive, got %v", s.DurationSeconds)
	}
	if _, _, err := s.Resolution.Size(); err != nil {
		return err
	}
	switch s.TitleMode {
	case TitleFade, TitleTypewriter:
	default:
		return fmt.Errorf("unknown title mode: %s", s.TitleMode)
	}
	for _, c := range []string{s.BarColor, s.BackgroundColor} {
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	if s.TextColor != "" {
		if _, err := ParseColor(s.TextColor); err != nil {
			return err
		}
	}
	return nil
}

func (s StyleConfig) Bar() color.RGBA {
	c, _ := ParseColor(s.BarColor)
	return c
}

func (s StyleConfig) Background() color.RGBA {
	c, _ := ParseColor(s.BackgroundColor)
	return c
}

// Text returns the configured text colour, or near-black / near-white
// depending on the background lightness.
func (s StyleConfig) Text() color.RGBA {
	if s.TextColor != "" {
		c, _ := ParseColor(s.TextColor)
		return c
	}
	bg, err := colorful.Hex(normalizeHex(s.BackgroundColor))
	if err != nil {
		return color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	}
	l, _, _ := bg.Lab()
	if l > 0.55 {
		return color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	}
	return color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
}

// ParseColor parses "#rrggbb", "rrggbb" or "#rgb".
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(normalizeHex(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToLower(s)
}

// ReadStyle loads a style file on top of DefaultStyle.
func ReadStyle(path string) (StyleConfig, error) {
	style := DefaultStyle()
	data, err := os.ReadFile(path)
	if err != nil {
		return style, err
	}
	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, fmt.Errorf("parse style %s: %w", path, err)
	}
	return style, nil
}

// WriteStyle writes a style snapshot to a YAML file
func WriteStyle(style StyleConfig, path string) error {
	data, err := yaml.Marshal(style)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
