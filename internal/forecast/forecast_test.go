package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/rickgao/tfr-chart/internal/model"
)

func TestForecast_LinearTrend(t *testing.T) {
	values := []float64{2.0, 1.9, 1.8, 1.7, 1.6, 1.5, 1.4}

	got, err := Forecast(values, 3)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	want := []float64{1.3, 1.2, 1.1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("step %d = %v, want %v", i+1, got[i], want[i])
		}
	}
}

func TestForecast_Constant(t *testing.T) {
	got, err := Forecast([]float64{1.5, 1.5, 1.5, 1.5}, 2)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	for i, v := range got {
		if math.Abs(v-1.5) > 1e-9 {
			t.Errorf("step %d = %v, want 1.5", i+1, v)
		}
	}
}

func TestForecast_SingleValue(t *testing.T) {
	got, err := Forecast([]float64{1.158}, 2)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(got) != 2 || got[0] != 1.158 || got[1] != 1.158 {
		t.Errorf("Forecast() = %v, want flat 1.158", got)
	}
}

func TestForecast_Empty(t *testing.T) {
	if _, err := Forecast(nil, 3); !errors.Is(err, ErrNoData) {
		t.Errorf("Forecast(nil) error = %v, want ErrNoData", err)
	}
}

func TestFit_Deterministic(t *testing.T) {
	values := []float64{2.1, 2.0, 2.05, 1.8, 1.6, 1.45, 1.3, 1.32, 1.29}

	a, _ := Fit(values)
	b, _ := Fit(values)
	if a != b {
		t.Errorf("Fit() not deterministic: %+v vs %+v", a, b)
	}
	if a.Phi <= 0 || a.Phi > 1 {
		t.Errorf("Phi = %v, want (0, 1]", a.Phi)
	}
}

func TestPredict(t *testing.T) {
	historical := model.NewTimeSeries([]model.SeriesPoint{
		{Period: 2020, Value: 1.4},
		{Period: 2021, Value: 1.33},
		{Period: 2022, Value: 1.26},
		{Period: 2023, Value: 1.158},
	})

	points, err := Predict(historical, DefaultOptions())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	if len(points) != 10 {
		t.Fatalf("len = %d, want 10", len(points))
	}
	for i, p := range points {
		if p.Period != 2024+i {
			t.Errorf("points[%d].Period = %d, want %d", i, p.Period, 2024+i)
		}
		if !p.Estimated {
			t.Errorf("points[%d] not estimated", i)
		}
		if p.Value < 0 || p.Value > 10 {
			t.Errorf("points[%d].Value = %v outside [0, 10]", i, p.Value)
		}
		if p.Value != Round3(p.Value) {
			t.Errorf("points[%d].Value = %v not rounded", i, p.Value)
		}
	}
}

func TestPredict_Clamped(t *testing.T) {
	// Steep decline would go negative without the floor.
	historical := model.NewTimeSeries([]model.SeriesPoint{
		{Period: 2020, Value: 3},
		{Period: 2021, Value: 2},
		{Period: 2022, Value: 1},
	})

	points, err := Predict(historical, Options{Steps: 5, MinValue: 0, MaxValue: 10})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	last := points[len(points)-1]
	if last.Value != 0 {
		t.Errorf("last value = %v, want clamped to 0", last.Value)
	}
}

func TestPredict_Errors(t *testing.T) {
	if _, err := Predict(model.TimeSeries{}, DefaultOptions()); !errors.Is(err, ErrNoData) {
		t.Errorf("empty series error = %v, want ErrNoData", err)
	}

	one := model.NewTimeSeries([]model.SeriesPoint{{Period: 2023, Value: 1.1}})
	if _, err := Predict(one, Options{Steps: 0, MaxValue: 10}); err == nil {
		t.Error("Steps=0 should fail")
	}
}

func TestExtend(t *testing.T) {
	historical := model.NewTimeSeries([]model.SeriesPoint{
		{Period: 2022, Value: 1.26},
		{Period: 2023, Value: 1.158},
	})

	got, err := Extend(historical, Options{Steps: 3, MaxValue: 10})
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if got.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", got.Len())
	}
	if got.At(1).Estimated || !got.At(2).Estimated {
		t.Error("estimated flags wrong at the historical boundary")
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.23449, 1.234},
		{1.2346, 1.235},
		{-0.0004, 0},
	}
	for _, tt := range tests {
		if got := Round3(tt.in); got != tt.want {
			t.Errorf("Round3(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
