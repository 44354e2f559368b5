package forecast

import (
	"errors"
	"math"
)

// ErrNoData is returned when there are no values to fit.
var ErrNoData = errors.New("forecast: no data")

// Params are the Holt smoothing parameters.
type Params struct {
	Alpha float64 // level
	Beta  float64 // trend
	Phi   float64 // trend damping, 1 for none
}

var (
	grid    = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	phiGrid = []float64{1, 0.98, 0.95, 0.9, 0.8}
)

// Fit grid-searches Params minimising one-step-ahead squared error.
// Ties keep the first candidate, so the result is deterministic.
func Fit(values []float64) (Params, error) {
	if len(values) == 0 {
		return Params{}, ErrNoData
	}

	best := Params{Alpha: grid[0], Beta: grid[0], Phi: 1}
	if len(values) < 3 {
		return best, nil
	}

	bestSSE := math.Inf(1)
	for _, phi := range phiGrid {
		for _, a := range grid {
			for _, b := range grid {
				p := Params{Alpha: a, Beta: b, Phi: phi}
				if sse := p.sse(values); sse < bestSSE {
					bestSSE = sse
					best = p
				}
			}
		}
	}
	return best, nil
}

// Forecast fits values and returns the next steps values.
func Forecast(values []float64, steps int) ([]float64, error) {
	p, err := Fit(values)
	if err != nil {
		return nil, err
	}
	return p.Forecast(values, steps), nil
}

// Forecast runs the smoother over values and projects steps ahead.
func (p Params) Forecast(values []float64, steps int) []float64 {
	if len(values) == 0 || steps <= 0 {
		return nil
	}

	level, trend := p.smooth(values, nil)

	out := make([]float64, steps)
	damp := 0.0
	for h := 1; h <= steps; h++ {
		damp += math.Pow(p.Phi, float64(h))
		out[h-1] = level + damp*trend
	}
	return out
}

func (p Params) sse(values []float64) float64 {
	var sum float64
	p.smooth(values, func(predicted, actual float64) {
		d := actual - predicted
		sum += d * d
	})
	return sum
}

// smooth returns the final level and trend. observe, if set, receives each
// one-step-ahead prediction alongside the value it predicted.
func (p Params) smooth(values []float64, observe func(predicted, actual float64)) (float64, float64) {
	level := values[0]
	trend := 0.0
	if len(values) > 1 {
		trend = values[1] - values[0]
	}

	for _, y := range values[1:] {
		predicted := level + p.Phi*trend
		if observe != nil {
			observe(predicted, y)
		}
		prev := level
		level = p.Alpha*y + (1-p.Alpha)*predicted
		trend = p.Beta*(level-prev) + (1-p.Beta)*p.Phi*trend
	}
	return level, trend
}
