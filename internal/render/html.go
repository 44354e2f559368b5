package render

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// missing is how ECharts spells an absent value in line data.
const missing = "-"

// HTMLOptions sizes the ECharts page.
type HTMLOptions struct {
	Width  string // CSS width, e.g. "100%"
	Height string // CSS height, e.g. "500px"
}

// NewLine builds the ECharts line chart for in. Absent values are left as
// gaps rather than connected.
func NewLine(in ChartInput, o HTMLOptions) *charts.Line {
	if o.Width == "" {
		o.Width = "100%"
	}
	if o.Height == "" {
		o.Height = "500px"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: in.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: in.Title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Year",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "TFR",
			Type: "value",
			Min:  0,
		}),
	)

	labels := make([]string, len(in.Labels))
	for i, year := range in.Labels {
		labels[i] = strconv.Itoa(year)
	}
	line.SetXAxis(labels)

	for _, ds := range in.Datasets {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{
				ConnectNulls: opts.Bool(false),
				ShowSymbol:   opts.Bool(true),
			}),
		}
		if ds.Estimated {
			seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(opts.LineStyle{
				Type: "dashed",
			}))
		}
		line.AddSeries(ds.Label, lineData(ds.Values), seriesOpts...)
	}

	return line
}

// HTML writes a standalone ECharts page for in.
func HTML(w io.Writer, in ChartInput, o HTMLOptions) error {
	return NewLine(in, o).Render(w)
}

func lineData(values []*float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if v == nil {
			data[i] = opts.LineData{Value: missing}
			continue
		}
		data[i] = opts.LineData{Value: *v}
	}
	return data
}
