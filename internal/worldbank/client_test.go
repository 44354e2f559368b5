package worldbank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rickgao/tfr-chart/internal/api"
)

// worldBankStub serves pages of a fake indicator response.
func worldBankStub(t *testing.T, pages []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/country/PL/indicator/SP.DYN.TFRT.IN" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("date"); got != "1939:2023" {
			t.Errorf("date = %q, want %q", got, "1939:2023")
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}

		page := 1
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		if page < 1 || page > len(pages) {
			t.Errorf("unexpected page %d", page)
			page = 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(pages[page-1]))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

var polandQuery = Query{Country: "PL", Indicator: "SP.DYN.TFRT.IN", FromYear: 1939, ToYear: 2023}

func TestObservations_SinglePage(t *testing.T) {
	server, calls := worldBankStub(t, []string{`[
		{"page":1,"pages":1,"per_page":"1000","total":3},
		[
			{"indicator":{"id":"SP.DYN.TFRT.IN"},"country":{"id":"PL"},"date":"2023","value":1.158,"decimal":2},
			{"indicator":{"id":"SP.DYN.TFRT.IN"},"country":{"id":"PL"},"date":"2022","value":1.26,"decimal":2},
			{"indicator":{"id":"SP.DYN.TFRT.IN"},"country":{"id":"PL"},"date":"1959","value":null,"decimal":2}
		]
	]`})

	c := NewClient(server.URL)
	obs, err := c.Observations(context.Background(), polandQuery)
	if err != nil {
		t.Fatalf("Observations() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if len(obs) != 3 {
		t.Fatalf("len(obs) = %d, want 3", len(obs))
	}
	if obs[0].Year != 2023 || obs[0].Value == nil || *obs[0].Value != 1.158 {
		t.Errorf("obs[0] = %+v", obs[0])
	}
	if obs[2].Year != 1959 || obs[2].Value != nil {
		t.Errorf("obs[2] = %+v, want missing value", obs[2])
	}
}

func TestObservations_Paginates(t *testing.T) {
	server, calls := worldBankStub(t, []string{
		`[{"page":1,"pages":2,"total":2},[{"date":"2023","value":1.158}]]`,
		`[{"page":2,"pages":2,"total":2},[{"date":"2022","value":1.26}]]`,
	})

	c := NewClient(server.URL, WithPerPage(1))
	obs, err := c.Observations(context.Background(), polandQuery)
	if err != nil {
		t.Fatalf("Observations() error = %v", err)
	}
	if calls.Load() != 2 || len(obs) != 2 {
		t.Errorf("calls = %d, observations = %d; want 2, 2", calls.Load(), len(obs))
	}
}

func TestObservations_NoData(t *testing.T) {
	server, _ := worldBankStub(t, []string{`[{"page":0,"pages":0,"total":0},null]`})

	obs, err := NewClient(server.URL).Observations(context.Background(), polandQuery)
	if err != nil {
		t.Fatalf("Observations() error = %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("len(obs) = %d, want 0", len(obs))
	}
}

func TestObservations_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, err error)
	}{
		{
			name: "api message",
			body: `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.ID != "120" {
					t.Errorf("error = %v, want APIError 120", err)
				}
			},
		},
		{
			name: "not json",
			body: `<html>maintenance</html>`,
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "decode worldbank response") {
					t.Errorf("error = %v, want decode error", err)
				}
			},
		},
		{
			name: "bad date",
			body: `[{"page":1,"pages":1},[{"date":"2020Q1","value":1.3}]]`,
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "invalid date") {
					t.Errorf("error = %v, want invalid date", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := worldBankStub(t, []string{tt.body})
			_, err := NewClient(server.URL).Observations(context.Background(), polandQuery)
			tt.check(t, err)
		})
	}
}

func TestObservations_StatusIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Observations(context.Background(), polandQuery)
	var nErr *api.NetworkError
	if !errors.As(err, &nErr) {
		t.Fatalf("error = %v, want *api.NetworkError", err)
	}
	if nErr.StatusCode != http.StatusServiceUnavailable || nErr.Op != "download" {
		t.Errorf("NetworkError = %+v", nErr)
	}
}

func TestSeries_FillsRange(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	obs := []Observation{
		{Year: 2023, Value: v(1.158)},
		{Year: 2021, Value: v(1.3300000429153442)},
		{Year: 2020, Value: nil},
		{Year: 1950, Value: v(3.7)},
	}

	ts, missing := Series(obs, 2019, 2023)

	wantYears := []int{2021, 2023}
	if ts.Len() != len(wantYears) {
		t.Fatalf("Len() = %d, want %d", ts.Len(), len(wantYears))
	}
	for i, y := range wantYears {
		if ts.At(i).Period != y || ts.At(i).Estimated {
			t.Errorf("point %d = %+v, want historical %d", i, ts.At(i), y)
		}
	}
	if ts.At(0).Value != 1.33 {
		t.Errorf("value = %v, want rounded 1.33", ts.At(0).Value)
	}
	if ts.At(1).Value != 1.16 {
		t.Errorf("value = %v, want rounded 1.16", ts.At(1).Value)
	}

	wantMissing := []int{2019, 2020, 2022}
	if len(missing) != len(wantMissing) {
		t.Fatalf("missing = %v, want %v", missing, wantMissing)
	}
	for i := range wantMissing {
		if missing[i] != wantMissing[i] {
			t.Errorf("missing = %v, want %v", missing, wantMissing)
		}
	}
}
