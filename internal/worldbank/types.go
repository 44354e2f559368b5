package worldbank

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// APIError is an error message returned in the API's JSON body.
type APIError struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("worldbank api error %s (%s): %s", e.ID, e.Key, e.Value)
}

// flexInt accepts numbers and numeric strings; the API uses both.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*f = flexInt(n)
	return nil
}

type pageMeta struct {
	Page    flexInt    `json:"page"`
	Pages   flexInt    `json:"pages"`
	Total   flexInt    `json:"total"`
	Message []APIError `json:"message"`
}

type entry struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

func (e entry) observation() (Observation, error) {
	year, err := strconv.Atoi(e.Date)
	if err != nil {
		return Observation{}, fmt.Errorf("worldbank: invalid date %q", e.Date)
	}
	return Observation{Year: year, Value: e.Value}, nil
}

// decodePage splits a response into paging metadata and entries.
func decodePage(body []byte) (pageMeta, []entry, error) {
	var parts []json.RawMessage
	if err := decodeJSON(body, &parts); err != nil {
		return pageMeta{}, nil, err
	}
	if len(parts) == 0 {
		return pageMeta{}, nil, errors.New("decode worldbank response: empty array")
	}

	var meta pageMeta
	if err := decodeJSON(parts[0], &meta); err != nil {
		return pageMeta{}, nil, err
	}
	if len(meta.Message) > 0 {
		return pageMeta{}, nil, &meta.Message[0]
	}
	if len(parts) < 2 {
		return meta, nil, nil
	}

	var entries []entry
	if err := decodeJSON(parts[1], &entries); err != nil {
		return pageMeta{}, nil, err
	}
	return meta, entries, nil
}

// decodeJSON unmarshals data, naming the payload in errors.
func decodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode worldbank response: %w", err)
	}
	return nil
}
