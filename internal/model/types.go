package model

import (
	"math"
	"sort"
)

// -----------------------------------------------------------------------------
// Series Types
// -----------------------------------------------------------------------------

// SeriesPoint is a single yearly observation or estimate.
type SeriesPoint struct {
	Period    int     // Year
	Value     float64 // TFR, finite
	Estimated bool    // true = forecast or fallback, false = observed
}

// TimeSeries is an ordered, duplicate-free sequence of points.
// The zero value is an empty series.
type TimeSeries struct {
	points []SeriesPoint
}

// NewTimeSeries builds a series from points in any order.
// Duplicate periods resolve last-write-wins: the later point in the input wins.
func NewTimeSeries(points []SeriesPoint) TimeSeries {
	if len(points) == 0 {
		return TimeSeries{}
	}

	byPeriod := make(map[int]SeriesPoint, len(points))
	for _, p := range points {
		byPeriod[p.Period] = p
	}

	out := make([]SeriesPoint, 0, len(byPeriod))
	for _, p := range byPeriod {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	return TimeSeries{points: out}
}

// Points returns a copy of the series points in ascending period order.
func (s TimeSeries) Points() []SeriesPoint {
	if len(s.points) == 0 {
		return nil
	}
	out := make([]SeriesPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of points.
func (s TimeSeries) Len() int {
	return len(s.points)
}

// At returns the i-th point in period order.
func (s TimeSeries) At(i int) SeriesPoint {
	return s.points[i]
}

// Values returns the point values in period order.
func (s TimeSeries) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// LastPeriod returns the latest period, or false for an empty series.
func (s TimeSeries) LastPeriod() (int, bool) {
	if len(s.points) == 0 {
		return 0, false
	}
	return s.points[len(s.points)-1].Period, true
}

// Append returns a new series with extra points added.
// Added points override existing ones for the same period.
func (s TimeSeries) Append(points ...SeriesPoint) TimeSeries {
	all := make([]SeriesPoint, 0, len(s.points)+len(points))
	all = append(all, s.points...)
	all = append(all, points...)
	return NewTimeSeries(all)
}

// Filter returns the points matching keep as a new series.
func (s TimeSeries) Filter(keep func(SeriesPoint) bool) TimeSeries {
	var out []SeriesPoint
	for _, p := range s.points {
		if keep(p) {
			out = append(out, p)
		}
	}
	// Already ordered and unique.
	return TimeSeries{points: out}
}

// Records converts the series to its wire form.
func (s TimeSeries) Records() []Record {
	out := make([]Record, len(s.points))
	for i, p := range s.points {
		out[i] = Record{Year: p.Period, TFR: p.Value, Predicted: p.Estimated}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// -----------------------------------------------------------------------------
// Reconciled Types
// -----------------------------------------------------------------------------

// ReconciledDataset aligns observed and estimated values on one sorted axis.
// len(Axis) == len(Observed) == len(Estimated) always holds.
type ReconciledDataset struct {
	Axis      []int      // Years, strictly ascending
	Observed  []*float64 // nil where the year has no observed value
	Estimated []*float64 // nil where the year has no estimated value
}

// Len returns the axis length.
func (d ReconciledDataset) Len() int {
	return len(d.Axis)
}

// Empty reports whether the dataset has no periods.
func (d ReconciledDataset) Empty() bool {
	return len(d.Axis) == 0
}

// -----------------------------------------------------------------------------
// Wire Types
// -----------------------------------------------------------------------------

// Record is the JSON shape exchanged with the data service and stored in files.
type Record struct {
	Year      int     `json:"year"`
	TFR       float64 `json:"tfr"`
	Predicted bool    `json:"predicted"`
}

// HistoricalRecord is the request shape for POST /predictData.
type HistoricalRecord struct {
	Year int     `json:"year"`
	TFR  float64 `json:"tfr"`
}

// HistoricalRecords converts the series to the predict request body.
func (s TimeSeries) HistoricalRecords() []HistoricalRecord {
	out := make([]HistoricalRecord, len(s.points))
	for i, p := range s.points {
		out[i] = HistoricalRecord{Year: p.Period, TFR: p.Value}
	}
	return out
}
