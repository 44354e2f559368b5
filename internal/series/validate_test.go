package series

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse_RejectsNonArray(t *testing.T) {
	_, err := Parse([]byte(`{"a":1}`))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Parse() error = %v, want *ValidationError", err)
	}
	if vErr.Reason != ReasonNotArray {
		t.Errorf("Reason = %q, want %q", vErr.Reason, ReasonNotArray)
	}
	if vErr.Error() != "validation: not an array" {
		t.Errorf("Error() = %q", vErr.Error())
	}
}

func TestParse_MissingField(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIndex int
		wantField string
	}{
		{"missing tfr", `[{"year":2020}]`, 0, FieldTFR},
		{"missing year", `[{"year":2020,"tfr":1.4},{"tfr":1.3}]`, 1, FieldYear},
		{"null tfr", `[{"year":2020,"tfr":null}]`, 0, FieldTFR},
		{"element not an object", `[{"year":2020,"tfr":1.4},3]`, 1, FieldYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Parse() error = %v, want *ValidationError", err)
			}
			if vErr.Reason != ReasonMissingField {
				t.Errorf("Reason = %q, want %q", vErr.Reason, ReasonMissingField)
			}
			if vErr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", vErr.Index, tt.wantIndex)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestParse_InvalidValue(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{"string tfr", `[{"year":2020,"tfr":"1.4"}]`, FieldTFR},
		{"fractional year", `[{"year":2020.5,"tfr":1.4}]`, FieldYear},
		{"string year", `[{"year":"2020","tfr":1.4}]`, FieldYear},
		{"non-bool flag", `[{"year":2020,"tfr":1.4,"predicted":"yes"}]`, FieldPredicted},
		{"overflowing tfr", `[{"year":2020,"tfr":1e400}]`, FieldTFR},
		{"huge year", `[{"year":1e300,"tfr":1.4}]`, FieldYear},
		{"year beyond int range", `[{"year":9e18,"tfr":1.4}]`, FieldYear},
		{"negative year", `[{"year":-9e18,"tfr":1.4}]`, FieldYear},
		{"year zero", `[{"year":0,"tfr":1.4}]`, FieldYear},
		{"year after max", `[{"year":10000,"tfr":1.4}]`, FieldYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Parse() error = %v, want *ValidationError", err)
			}
			if vErr.Reason != ReasonInvalidValue {
				t.Errorf("Reason = %q, want %q", vErr.Reason, ReasonInvalidValue)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	tests := []string{
		`[{"year":2020,`,
		`not json`,
		``,
		`[] []`,
	}

	for _, input := range tests {
		_, err := Parse([]byte(input))

		var pErr *ParseError
		if !errors.As(err, &pErr) {
			t.Errorf("Parse(%q) error = %v, want *ParseError", input, err)
		}
	}
}

func TestParse_PassesFlagsThrough(t *testing.T) {
	input := `[
		{"year":2024,"tfr":1.099,"predicted":true,"source":"tbats"},
		{"year":2023,"tfr":1.158,"predicted":false},
		{"year":2025,"tfr":1.042,"estimated":true}
	]`

	s, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	pts := s.Points()
	if pts[0].Period != 2023 || pts[0].Estimated {
		t.Errorf("pts[0] = %+v, want observed 2023", pts[0])
	}
	if pts[1].Period != 2024 || !pts[1].Estimated {
		t.Errorf("pts[1] = %+v, want estimated 2024", pts[1])
	}
	if !pts[2].Estimated {
		t.Errorf("pts[2] = %+v, want estimated via alias flag", pts[2])
	}
}

func TestParseWith_EstimatedAfter(t *testing.T) {
	input := `[
		{"year":2022,"tfr":1.26},
		{"year":2023,"tfr":1.158},
		{"year":2024,"tfr":1.099},
		{"year":2025,"tfr":1.2,"predicted":false}
	]`

	s, err := ParseWith([]byte(input), Options{EstimatedAfter: 2023})
	if err != nil {
		t.Fatalf("ParseWith() error = %v", err)
	}

	want := []bool{false, false, true, false}
	for i, p := range s.Points() {
		if p.Estimated != want[i] {
			t.Errorf("year %d Estimated = %v, want %v", p.Period, p.Estimated, want[i])
		}
	}
}

func TestValidate_AcceptsUnmarshaledValues(t *testing.T) {
	var raw any
	if err := json.Unmarshal([]byte(`[{"year":2000,"tfr":1.37}]`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	s, err := Validate(raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if s.At(0).Period != 2000 || s.At(0).Value != 1.37 {
		t.Errorf("At(0) = %+v", s.At(0))
	}
}

func TestValidate_EmptyArray(t *testing.T) {
	s, err := Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Reason: ReasonMissingField, Index: 0, Field: FieldTFR}
	want := `validation: missing field "tfr" at index 0`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParse_YearBounds(t *testing.T) {
	input := `[{"year":1,"tfr":4.1},{"year":9999,"tfr":0.9}]`
	s, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.At(0).Period != MinYear || s.At(1).Period != MaxYear {
		t.Errorf("periods = %d, %d; want %d, %d", s.At(0).Period, s.At(1).Period, MinYear, MaxYear)
	}
}
