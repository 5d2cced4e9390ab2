package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an image encoding for Render.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" (default when empty) or "svg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (use png or svg)", s)
}

// ContentType is the MIME type of the encoded image.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ErrNoData is returned by Render when a spec has nothing to draw.
var ErrNoData = errors.New("nothing to plot")

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func color(i int) drawing.Color { return palette[i%len(palette)] }

// Render draws spec as an image of the given size.
func Render(spec *Spec, w io.Writer, format Format, width, height int) error {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 640
	}
	rp := gochart.PNG
	if format == SVG {
		rp = gochart.SVG
	}
	switch spec.Kind {
	case Bar:
		return renderBars(spec, spec.Categories, spec.Values, rp, w, width, height)
	case Histogram:
		labels := make([]string, len(spec.Bins))
		counts := make([]float64, len(spec.Bins))
		for i, b := range spec.Bins {
			labels[i] = fmt.Sprintf("%.3g-%.3g", b.Lo, b.Hi)
			counts[i] = float64(b.Count)
		}
		return renderBars(spec, labels, counts, rp, w, width, height)
	case Pie:
		return renderPie(spec, rp, w, width, height)
	case Box:
		return renderBoxes(spec, rp, w, width, height)
	case Scatter, Line, Overview:
		return renderSeries(spec, rp, w, width, height)
	}
	return &Error{Reason: UnsupportedKind, Kind: spec.Kind}
}

func renderBars(spec *Spec, labels []string, vals []float64, rp gochart.RendererProvider, w io.Writer, width, height int) error {
	if len(vals) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, len(vals))
	for i, v := range vals {
		bars[i] = gochart.Value{
			Label: labels[i],
			Value: v,
			Style: gochart.Style{FillColor: color(0), StrokeColor: color(0)},
		}
	}
	per := (width - 120) / len(bars)
	if per < 2 {
		per = 2
	}
	spacing := per / 5
	lo, hi := span(vals, true)
	bc := gochart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   per - spacing,
		BarSpacing: spacing,
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
	return bc.Render(rp, w)
}

func renderPie(spec *Spec, rp gochart.RendererProvider, w io.Writer, width, height int) error {
	var vals []gochart.Value
	for i, v := range spec.Values {
		if v <= 0 {
			continue
		}
		vals = append(vals, gochart.Value{
			Label: spec.Categories[i],
			Value: v,
			Style: gochart.Style{FillColor: color(len(vals))},
		})
	}
	if len(vals) == 0 {
		return ErrNoData
	}
	pc := gochart.PieChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: vals,
	}
	return pc.Render(rp, w)
}

func renderSeries(spec *Spec, rp gochart.RendererProvider, w io.Writer, width, height int) error {
	var series []gochart.Series
	var xs, ys []float64
	for i, s := range spec.Series {
		if len(s.X) == 0 {
			continue
		}
		st := gochart.Style{StrokeColor: color(i), StrokeWidth: 2}
		if spec.Kind == Scatter {
			st = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4, DotColor: color(i)}
		}
		series = append(series, gochart.ContinuousSeries{Name: s.Name, XValues: s.X, YValues: s.Y, Style: st})
		xs = append(xs, s.X...)
		ys = append(ys, s.Y...)
	}
	if len(series) == 0 {
		return ErrNoData
	}
	xlo, xhi := span(xs, false)
	ylo, yhi := span(ys, false)
	var ticks []gochart.Tick
	for _, t := range thinTicks(spec.XTicks, 24) {
		ticks = append(ticks, gochart.Tick{Value: t.Value, Label: t.Label})
	}
	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: spec.XLabel, Range: &gochart.ContinuousRange{Min: xlo, Max: xhi}, Ticks: ticks},
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch.Render(rp, w)
}

func renderBoxes(spec *Spec, rp gochart.RendererProvider, w io.Writer, width, height int) error {
	if len(spec.Boxes) == 0 {
		return ErrNoData
	}
	const half = 0.3
	var series []gochart.Series
	var ys []float64
	ticks := make([]gochart.Tick, 0, len(spec.Boxes))
	for i, b := range spec.Boxes {
		x := float64(i)
		st := gochart.Style{StrokeColor: color(i), StrokeWidth: 2}
		series = append(series,
			gochart.ContinuousSeries{Name: b.Label, Style: st,
				XValues: []float64{x - half, x + half, x + half, x - half, x - half},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}},
			gochart.ContinuousSeries{Style: st, XValues: []float64{x - half, x + half}, YValues: []float64{b.Median, b.Median}},
			gochart.ContinuousSeries{Style: st, XValues: []float64{x, x}, YValues: []float64{b.Low, b.Q1}},
			gochart.ContinuousSeries{Style: st, XValues: []float64{x, x}, YValues: []float64{b.Q3, b.High}},
		)
		if len(b.Outliers) > 0 {
			ox := make([]float64, len(b.Outliers))
			for j := range ox {
				ox[j] = x
			}
			series = append(series, gochart.ContinuousSeries{
				Style:   gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 3, DotColor: color(i)},
				XValues: ox,
				YValues: b.Outliers,
			})
		}
		ys = append(ys, b.Low, b.High)
		ys = append(ys, b.Outliers...)
		ticks = append(ticks, gochart.Tick{Value: x, Label: b.Label})
	}
	ylo, yhi := span(ys, false)
	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: spec.XLabel, Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(spec.Boxes)) - 0.5}, Ticks: ticks},
		YAxis:      gochart.YAxis{Name: spec.YLabel, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series:     series,
	}
	return ch.Render(rp, w)
}

// span returns a padded [min, max] that is never empty. With zero set, the
// range always contains 0 and is not padded below a zero baseline.
func span(vals []float64, zero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if zero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	if zero && lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

// thinTicks keeps at most max evenly spaced ticks.
func thinTicks(ticks []Tick, max int) []Tick {
	if len(ticks) <= max {
		return ticks
	}
	step := int(math.Ceil(float64(len(ticks)) / float64(max)))
	out := make([]Tick, 0, max)
	for i := 0; i < len(ticks); i += step {
		out = append(out, ticks[i])
	}
	return out
}
