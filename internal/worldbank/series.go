package worldbank

import (
	"context"
	"math"

	"github.com/rickgao/tfr-chart/internal/model"
)

// Decimals is the precision kept for downloaded values.
const Decimals = 2

// Series walks every year of [from, to] and builds a historical series from
// the years that have a value. Years without one are returned as missing.
// Observations outside the range are ignored.
func Series(obs []Observation, from, to int) (model.TimeSeries, []int) {
	byYear := make(map[int]float64, len(obs))
	for _, o := range obs {
		if o.Value == nil || !model.IsFinite(*o.Value) {
			continue
		}
		byYear[o.Year] = *o.Value
	}

	scale := math.Pow(10, Decimals)
	var (
		points  []model.SeriesPoint
		missing []int
	)
	for year := from; year <= to; year++ {
		v, ok := byYear[year]
		if !ok {
			missing = append(missing, year)
			continue
		}
		points = append(points, model.SeriesPoint{Period: year, Value: math.Round(v*scale) / scale})
	}
	return model.NewTimeSeries(points), missing
}

// Download fetches q and converts it with Series.
func (c *Client) Download(ctx context.Context, q Query) (model.TimeSeries, []int, error) {
	obs, err := c.Observations(ctx, q)
	if err != nil {
		return model.TimeSeries{}, nil, err
	}
	ts, missing := Series(obs, q.FromYear, q.ToYear)
	return ts, missing, nil
}
