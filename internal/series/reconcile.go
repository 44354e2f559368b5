package series

import (
	"sort"

	"github.com/rickgao/tfr-chart/internal/model"
)

// Reconcile splits series into observed and estimated points and aligns them
// on one ascending year axis. An empty series yields an empty dataset.
func Reconcile(s model.TimeSeries) model.ReconciledDataset {
	observed := s.Filter(func(p model.SeriesPoint) bool { return !p.Estimated })
	estimated := s.Filter(func(p model.SeriesPoint) bool { return p.Estimated })
	return ReconcileSources(observed, estimated)
}

// ReconcileSources aligns two independent series on the union of their years.
// A year present in both sources fills both slots; the flags on the points
// are ignored, the source decides the slot.
func ReconcileSources(observed, estimated model.TimeSeries) model.ReconciledDataset {
	obs := indexByPeriod(observed)
	est := indexByPeriod(estimated)

	axis := make([]int, 0, len(obs)+len(est))
	for period := range obs {
		axis = append(axis, period)
	}
	for period := range est {
		if _, dup := obs[period]; !dup {
			axis = append(axis, period)
		}
	}
	sort.Ints(axis)

	ds := model.ReconciledDataset{
		Axis:      axis,
		Observed:  make([]*float64, len(axis)),
		Estimated: make([]*float64, len(axis)),
	}
	for i, period := range axis {
		if v, ok := obs[period]; ok {
			ds.Observed[i] = &v
		}
		if v, ok := est[period]; ok {
			ds.Estimated[i] = &v
		}
	}

	return ds
}

// indexByPeriod maps year to value; later points win on duplicate years.
func indexByPeriod(s model.TimeSeries) map[int]float64 {
	out := make(map[int]float64, s.Len())
	for _, p := range s.Points() {
		out[p.Period] = p.Value
	}
	return out
}
