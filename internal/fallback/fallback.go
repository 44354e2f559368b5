// Package fallback substitutes a fixed forecast tail when the prediction
// service cannot be reached.
package fallback

import (
	"errors"

	"github.com/rickgao/tfr-chart/internal/api"
	"github.com/rickgao/tfr-chart/internal/model"
)

// Cause classifies why the fallback was used. It only selects the message.
type Cause string

const (
	CauseConnectivityDenied Cause = "connectivity_denied"
	CauseNetwork            Cause = "network"
	CauseInvalidResponse    Cause = "invalid_response"
)

// tail is the static estimate for 2024-2033.
var tail = []model.SeriesPoint{
	{Period: 2024, Value: 1.099, Estimated: true},
	{Period: 2025, Value: 1.042, Estimated: true},
	{Period: 2026, Value: 0.985, Estimated: true},
	{Period: 2027, Value: 0.928, Estimated: true},
	{Period: 2028, Value: 0.871, Estimated: true},
	{Period: 2029, Value: 0.813, Estimated: true},
	{Period: 2030, Value: 0.756, Estimated: true},
	{Period: 2031, Value: 0.699, Estimated: true},
	{Period: 2032, Value: 0.642, Estimated: true},
	{Period: 2033, Value: 0.585, Estimated: true},
}

// Result is the substituted series plus the message to show the user.
type Result struct {
	Series  model.TimeSeries
	Cause   Cause
	Message string
}

// Tail returns a copy of the static estimate.
func Tail() []model.SeriesPoint {
	out := make([]model.SeriesPoint, len(tail))
	copy(out, tail)
	return out
}

// Resolve appends the static tail to historical. The output depends only on
// historical; cause picks the message. Tail years already present in
// historical are overridden by the tail.
func Resolve(historical model.TimeSeries, cause error) Result {
	c := Classify(cause)
	return Result{
		Series:  historical.Append(Tail()...),
		Cause:   c,
		Message: c.Message(),
	}
}

// Classify maps a failure to a Cause.
func Classify(err error) Cause {
	var nErr *api.NetworkError
	if errors.As(err, &nErr) {
		if nErr.ConnectivityDenied() {
			return CauseConnectivityDenied
		}
		return CauseNetwork
	}
	if err == nil {
		return CauseNetwork
	}
	return CauseInvalidResponse
}

// Message returns the user-facing text for the cause.
func (c Cause) Message() string {
	switch c {
	case CauseConnectivityDenied:
		return "The prediction service refused the connection. Showing estimated data instead."
	case CauseInvalidResponse:
		return "The prediction service returned unusable data. Showing estimated data instead."
	default:
		return "Could not reach the prediction service. Showing estimated data instead."
	}
}
