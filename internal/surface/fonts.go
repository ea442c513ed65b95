package surface

import (
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontCache keeps one face per pixel size. It is only touched under the
// surface write lock.
type fontCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFontCache(family string) *fontCache {
	var ttf []byte
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "", "sans", "sans-serif", "go", "regular":
		ttf = goregular.TTF
	case "bold", "sans-bold":
		ttf = gobold.TTF
	case "mono", "monospace":
		ttf = gomono.TTF
	default:
		log.Printf("[!] Шрифт %q не поддерживается, используется Go Regular", family)
		ttf = goregular.TTF
	}

	f, err := opentype.Parse(ttf)
	if err != nil {
		log.Printf("[!] Ошибка разбора шрифта: %v. Используется basicfont", err)
		f = nil
	}
	return &fontCache{font: f, faces: make(map[float64]font.Face)}
}

func (c *fontCache) face(size float64) font.Face {
	if c.font == nil || size <= 0 {
		return basicfont.Face7x13
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[!] Не удалось создать шрифт размера %.1f: %v", size, err)
		return basicfont.Face7x13
	}
	c.faces[size] = f
	return f
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}
