// Package layout computes the static geometry of a horizontal bar chart.
package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/chart2video/internal/config"
	"github.com/ivlev/chart2video/internal/errs"
	"github.com/ivlev/chart2video/internal/source"
)

// Fixed margins as a fraction of the surface width.
const (
	LabelMargin = 0.20 // left: row labels
	ValueMargin = 0.12 // right: value labels
	EdgePadding = 0.03
)

// BarGeometry is the placement of one data row.
type BarGeometry struct {
	BaseX  float64 // zero line
	EndX   float64
	Y      float64 // top edge of the bar
	Height float64
	Label  string
	Value  string // formatted value label
}

// Length is the signed horizontal extent of the bar.
func (g BarGeometry) Length() float64 {
	return g.EndX - g.BaseX
}

// Chart is the full static geometry of one render.
type Chart struct {
	Width, Height float64
	TitleX        float64
	TitleY        float64 // text baseline
	TitleSize     float64
	LabelSize     float64
	LabelX        float64 // right edge of row labels
	Bars          []BarGeometry
}

// Compute lays out bars top-to-bottom in input order. The bars share the
// width between the label and value margins. With negative values the zero
// line moves right so the longest bar of either sign still fits.
func Compute(data source.DataSet, style config.StyleConfig, width, height int) (Chart, error) {
	if width <= 0 || height <= 0 {
		return Chart{}, errs.New(errs.InvalidInput, "surface size must be positive, got %dx%d", width, height)
	}
	if data.Len() == 0 {
		return Chart{}, errs.New(errs.InvalidInput, "cannot lay out an empty data set")
	}
	if len(data.Values) != len(data.Labels) {
		return Chart{}, errs.New(errs.InvalidInput, "labels and values differ in length: %d != %d", len(data.Labels), len(data.Values))
	}

	w, h := float64(width), float64(height)
	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = 16
	}
	titleSize := fontSize * 1.6

	pad := EdgePadding * math.Min(w, h)
	top := pad + titleSize*2
	if style.Title == "" {
		top = pad
	}
	bottom := h - pad

	labelX := w * LabelMargin
	left, right := labelX, w*(1-ValueMargin)-pad

	maxPos, maxNeg := 0.0, 0.0
	for _, v := range data.Values {
		if v > 0 {
			maxPos = math.Max(maxPos, v)
		} else {
			maxNeg = math.Max(maxNeg, -v)
		}
	}
	if maxNeg > 0 {
		// value labels of negative bars go left of the bar end
		left += w * ValueMargin
	}
	area := right - left
	span := maxPos + maxNeg
	baseX := left
	if span > 0 {
		baseX = left + area*maxNeg/span
	}

	n := data.Len()
	rowHeight := (bottom - top) / float64(n)
	barHeight := rowHeight * 0.7

	bars := make([]BarGeometry, n)
	for i, v := range data.Values {
		length := 0.0
		if span > 0 {
			length = v / span * area
		}
		bars[i] = BarGeometry{
			BaseX:  baseX,
			EndX:   baseX + length,
			Y:      top + float64(i)*rowHeight + (rowHeight-barHeight)/2,
			Height: barHeight,
			Label:  data.Labels[i],
			Value:  FormatValue(v),
		}
	}

	return Chart{
		Width:     w,
		Height:    h,
		TitleX:    w / 2,
		TitleY:    pad + titleSize*1.2,
		TitleSize: titleSize,
		LabelSize: math.Min(fontSize, barHeight*0.8),
		LabelX:    labelX,
		Bars:      bars,
	}, nil
}

// FormatValue prints integers without a fraction and everything else with at most two decimals.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
