package fallback

import (
	"errors"
	"reflect"
	"syscall"
	"testing"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/series"
)

func TestResolve_AppendsTail(t *testing.T) {
	historical := model.NewTimeSeries([]model.SeriesPoint{{Period: 2023, Value: 1.158}})
	cause := &api.NetworkError{Op: "predict", URL: "http://x/predictData", StatusCode: 500}

	res := Resolve(historical, cause)

	if res.Series.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", res.Series.Len())
	}
	first := res.Series.At(0)
	if first.Period != 2023 || first.Value != 1.158 || first.Estimated {
		t.Errorf("At(0) = %+v, want original observed point", first)
	}
	for i := 1; i < 11; i++ {
		p := res.Series.At(i)
		if p.Period != 2023+i {
			t.Errorf("At(%d).Period = %d, want %d", i, p.Period, 2023+i)
		}
		if !p.Estimated {
			t.Errorf("At(%d).Estimated = false", i)
		}
	}
	if v := res.Series.At(1).Value; v != 1.099 {
		t.Errorf("2024 value = %v, want 1.099", v)
	}
	if v := res.Series.At(10).Value; v != 0.585 {
		t.Errorf("2033 value = %v, want 0.585", v)
	}
	if res.Cause != CauseNetwork {
		t.Errorf("Cause = %q, want %q", res.Cause, CauseNetwork)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	historical := model.NewTimeSeries([]model.SeriesPoint{
		{Period: 2021, Value: 1.33},
		{Period: 2022, Value: 1.26},
	})

	a := Resolve(historical, errors.New("boom"))
	b := Resolve(historical, errors.New("boom"))

	if !reflect.DeepEqual(a.Series.Points(), b.Series.Points()) {
		t.Error("Resolve() output differs between calls")
	}
}

func TestResolve_DataIndependentOfCause(t *testing.T) {
	historical := model.NewTimeSeries([]model.SeriesPoint{{Period: 2023, Value: 1.158}})

	denied := Resolve(historical, &api.NetworkError{Err: syscall.ECONNREFUSED})
	generic := Resolve(historical, &api.NetworkError{StatusCode: 502})

	if denied.Cause != CauseConnectivityDenied {
		t.Errorf("Cause = %q, want %q", denied.Cause, CauseConnectivityDenied)
	}
	if denied.Message == generic.Message {
		t.Error("messages should differ per cause")
	}
	if !reflect.DeepEqual(denied.Series.Points(), generic.Series.Points()) {
		t.Error("series should not depend on cause")
	}
}

func TestTail_IsCopy(t *testing.T) {
	a := Tail()
	a[0].Value = 42

	if Tail()[0].Value != 1.099 {
		t.Error("Tail() exposes shared state")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"forbidden", &api.NetworkError{StatusCode: 403}, CauseConnectivityDenied},
		{"refused", &api.NetworkError{Err: syscall.ECONNREFUSED}, CauseConnectivityDenied},
		{"server error", &api.NetworkError{StatusCode: 503}, CauseNetwork},
		{"bad payload", &series.ValidationError{Reason: series.ReasonNotArray, Index: -1}, CauseInvalidResponse},
		{"nil", nil, CauseNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
