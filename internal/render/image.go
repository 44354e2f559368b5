package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("render: no data")

// Format is an image encoding.
type Format string

// Supported image formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a file extension or name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", ".png":
		return FormatPNG, nil
	case "svg", ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ImageOptions sizes the rendered image in pixels.
type ImageOptions struct {
	Width  int
	Height int
}

// Image renders in as a PNG or SVG line chart.
func Image(w io.Writer, in ChartInput, format Format, o ImageOptions) error {
	series := imageSeries(in)
	if len(series) == 0 {
		return ErrNoData
	}

	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}

	ch := chart.Chart{
		Title:      in.Title,
		Width:      o.Width,
		Height:     o.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      yearAxis(in.Labels),
		YAxis:      valueAxis(in),
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return nil
}

func imageSeries(in ChartInput) []chart.Series {
	var out []chart.Series
	for i, ds := range in.Datasets {
		var xs, ys []float64
		for j, v := range ds.Values {
			if v == nil || j >= len(in.Labels) {
				continue
			}
			xs = append(xs, float64(in.Labels[j]))
			ys = append(ys, *v)
		}
		if len(xs) == 0 {
			continue
		}
		out = append(out, chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   datasetStyle(i, ds.Estimated),
		})
	}
	return out
}

func datasetStyle(i int, estimated bool) chart.Style {
	col := chart.ColorBlue
	if i > 0 {
		col = chart.ColorRed
	}
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
	if estimated {
		st.StrokeDashArray = []float64{6, 4}
	}
	return st
}

// maxYearTicks bounds the number of labelled years on the x axis.
const maxYearTicks = 11

// yearAxis pads the range by one year on each side so a single-year chart
// still has a non-zero span. The step is computed in float64 so any span of
// ints stays within maxYearTicks.
func yearAxis(labels []int) chart.XAxis {
	lo, hi := float64(labels[0]), float64(labels[len(labels)-1])
	step := math.Max(1, math.Floor((hi-lo)/float64(maxYearTicks-1)))

	var ticks []chart.Tick
	for y := lo; y <= hi && len(ticks) < maxYearTicks; y += step {
		ticks = append(ticks, chart.Tick{Value: y, Label: strconv.FormatInt(int64(y), 10)})
	}

	return chart.XAxis{
		Name:  "Year",
		Range: &chart.ContinuousRange{Min: lo - 1, Max: hi + 1},
		Ticks: ticks,
	}
}

func valueAxis(in ChartInput) chart.YAxis {
	top := 0.0
	for _, ds := range in.Datasets {
		for _, v := range ds.Values {
			if v != nil {
				top = math.Max(top, *v)
			}
		}
	}
	top = math.Max(1, math.Ceil(top*1.1*10)/10)

	return chart.YAxis{
		Name:  "TFR",
		Range: &chart.ContinuousRange{Min: 0, Max: top},
	}
}
