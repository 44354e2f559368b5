package series

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"

	"github.com/rickgao/tfr-chart/internal/model"
)

// Record field names.
const (
	FieldYear      = "year"
	FieldTFR       = "tfr"
	FieldPredicted = "predicted"
	FieldEstimated = "estimated"
)

// Accepted year range. Anything outside is rejected as an invalid year.
const (
	MinYear = 1
	MaxYear = 9999
)

// Options tunes validation.
type Options struct {
	// EstimatedAfter marks unflagged records with a year above it as estimated.
	// Zero disables the cutoff.
	EstimatedAfter int
}

// Parse decodes JSON text and validates it.
func Parse(data []byte) (model.TimeSeries, error) {
	return ParseWith(data, Options{})
}

// ParseWith decodes JSON text and validates it with opts.
func ParseWith(data []byte, opts Options) (model.TimeSeries, error) {
	raw, err := Decode(data)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return ValidateWith(raw, opts)
}

// Decode turns JSON text into untyped values, keeping numbers as json.Number.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, parseError(err)
	}

	// Reject trailing content after the first value.
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, parseError(err)
	}

	return raw, nil
}

func parseError(err error) *ParseError {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Offset: syntaxErr.Offset, Err: err}
	}
	return &ParseError{Err: err}
}

// Validate checks raw against the record schema.
func Validate(raw any) (model.TimeSeries, error) {
	return ValidateWith(raw, Options{})
}

// ValidateWith checks raw against the record schema and builds a series.
// raw is the output of Decode or json.Unmarshal into an any.
func ValidateWith(raw any, opts Options) (model.TimeSeries, error) {
	items, ok := raw.([]any)
	if !ok {
		return model.TimeSeries{}, &ValidationError{Reason: ReasonNotArray, Index: -1}
	}

	points := make([]model.SeriesPoint, 0, len(items))
	for i, item := range items {
		p, err := validateRecord(i, item, opts)
		if err != nil {
			return model.TimeSeries{}, err
		}
		points = append(points, p)
	}

	return model.NewTimeSeries(points), nil
}

func validateRecord(i int, item any, opts Options) (model.SeriesPoint, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return model.SeriesPoint{}, &ValidationError{Reason: ReasonMissingField, Index: i, Field: FieldYear}
	}

	yearRaw, ok := obj[FieldYear]
	if !ok || yearRaw == nil {
		return model.SeriesPoint{}, &ValidationError{Reason: ReasonMissingField, Index: i, Field: FieldYear}
	}
	yearF, ok := toFloat64(yearRaw)
	if !ok || !model.IsFinite(yearF) || yearF != math.Trunc(yearF) || yearF < MinYear || yearF > MaxYear {
		return model.SeriesPoint{}, &ValidationError{Reason: ReasonInvalidValue, Index: i, Field: FieldYear}
	}

	valueRaw, ok := obj[FieldTFR]
	if !ok || valueRaw == nil {
		return model.SeriesPoint{}, &ValidationError{Reason: ReasonMissingField, Index: i, Field: FieldTFR}
	}
	value, ok := toFloat64(valueRaw)
	if !ok || !model.IsFinite(value) {
		return model.SeriesPoint{}, &ValidationError{Reason: ReasonInvalidValue, Index: i, Field: FieldTFR}
	}

	p := model.SeriesPoint{Period: int(yearF), Value: value}

	flagged := false
	for _, key := range []string{FieldPredicted, FieldEstimated} {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return model.SeriesPoint{}, &ValidationError{Reason: ReasonInvalidValue, Index: i, Field: key}
		}
		p.Estimated = p.Estimated || b
		flagged = true
	}

	if !flagged && opts.EstimatedAfter > 0 && p.Period > opts.EstimatedAfter {
		p.Estimated = true
	}

	return p, nil
}

// toFloat64 accepts the numeric types produced by encoding/json.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
