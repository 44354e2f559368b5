package forecast

import (
	"fmt"
	"math"

	"github.com/rickgao/tfr-chart/internal/model"
)

// Options bound a prediction.
type Options struct {
	Steps    int
	MinValue float64
	MaxValue float64
}

// DefaultOptions matches the data service defaults.
func DefaultOptions() Options {
	return Options{Steps: 10, MinValue: 0, MaxValue: 10}
}

// Predict forecasts Steps years after the last period of historical. The
// returned points are estimated, rounded to three decimals and clamped to
// [MinValue, MaxValue].
func Predict(historical model.TimeSeries, o Options) ([]model.SeriesPoint, error) {
	last, ok := historical.LastPeriod()
	if !ok {
		return nil, ErrNoData
	}
	if o.Steps <= 0 {
		return nil, fmt.Errorf("forecast: steps must be positive, got %d", o.Steps)
	}

	values, err := Forecast(historical.Values(), o.Steps)
	if err != nil {
		return nil, err
	}

	points := make([]model.SeriesPoint, len(values))
	for i, v := range values {
		points[i] = model.SeriesPoint{
			Period:    last + 1 + i,
			Value:     clamp(Round3(v), o.MinValue, o.MaxValue),
			Estimated: true,
		}
	}
	return points, nil
}

// Extend returns historical followed by its forecast.
func Extend(historical model.TimeSeries, o Options) (model.TimeSeries, error) {
	points, err := Predict(historical, o)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return historical.Append(points...), nil
}

// Round3 rounds v to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
