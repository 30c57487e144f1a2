package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a numeric form value cannot be parsed.
var ErrNotANumber = errors.New("must be a number")

// ErrNotFinite is returned for NaN and infinite values.
var ErrNotFinite = errors.New("must be a finite number")

// NumberInput is a raw numeric form value as typed by a user. JSON numbers,
// numeric strings, empty strings and null are all accepted when decoding;
// coercion into the domain happens only in Parse.
type NumberInput string

// NumberOf builds an input holding v.
func NumberOf(v float64) NumberInput {
	return NumberInput(strconv.FormatFloat(v, 'f', -1, 64))
}

// UnmarshalJSON accepts numbers, strings and null.
func (n *NumberInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode number input: %w", err)
		}
		*n = NumberInput(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("decode number input: %w", err)
	}
	*n = NumberInput(num.String())
	return nil
}

// IsEmpty reports whether the input holds no value.
func (n NumberInput) IsEmpty() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Parse coerces the input into an optional finite number. An empty input is
// absent (nil), never zero.
func (n NumberInput) Parse() (*float64, error) {
	raw := strings.TrimSpace(string(n))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, ErrNotANumber
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, ErrNotFinite
	}
	return &value, nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// FormatNumber renders an optional number as plain decimal text, or "" when absent.
func FormatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
