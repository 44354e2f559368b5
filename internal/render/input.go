package render

import "github.com/rickgao/tfr-chart/internal/model"

// Dataset labels.
const (
	LabelObserved  = "Historical data"
	LabelEstimated = "Predicted data"
)

// Dataset is one line on the chart, aligned with ChartInput.Labels.
type Dataset struct {
	Label     string     `json:"label"`
	Estimated bool       `json:"estimated"`
	Values    []*float64 `json:"values"` // nil entries render as gaps
}

// ChartInput is the shape the rendering surfaces accept.
type ChartInput struct {
	Title    string    `json:"title,omitempty"`
	Labels   []int     `json:"labels"`
	Datasets []Dataset `json:"datasets"` // [observed, estimated]
}

// ToRenderable maps a reconciled dataset to chart input. Slices are copied so
// the chart input outlives the dataset.
func ToRenderable(ds model.ReconciledDataset) ChartInput {
	labels := make([]int, len(ds.Axis))
	copy(labels, ds.Axis)

	return ChartInput{
		Labels: labels,
		Datasets: []Dataset{
			{Label: LabelObserved, Values: copyValues(ds.Observed)},
			{Label: LabelEstimated, Estimated: true, Values: copyValues(ds.Estimated)},
		},
	}
}

// Empty reports whether there is nothing to draw.
func (in ChartInput) Empty() bool {
	return len(in.Labels) == 0
}

func copyValues(in []*float64) []*float64 {
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			x := *v
			out[i] = &x
		}
	}
	return out
}
