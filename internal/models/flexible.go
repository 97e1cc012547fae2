package models

import (
	"strconv"
	"time"
)

// FlexibleTime is a custom type that tolerates the mixed timestamp shapes the
// backend emits. Empty, null, or unparseable input decodes as the zero time so
// that a single bad field never fails a whole collection decode.
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements lenient JSON unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	if str == "" || str == "null" {
		ft.Time = time.Time{}
		return nil
	}

	// Try different timestamp formats
	formats := []string{
		time.RFC3339Nano,            // Full datetime with fractional seconds
		"2006-01-02T15:04:05Z07:00", // Full datetime with timezone
		"2006-01-02T15:04:05",       // Full datetime without timezone
		"2006-01-02 15:04:05",       // Date and time with space
		"2006-01-02",                // Date only (YYYY-MM-DD)
	}

	for _, format := range formats {
		if t, err := time.Parse(format, str); err == nil {
			ft.Time = t
			return nil
		}
	}

	// Malformed timestamps decode as the zero time and sort oldest
	ft.Time = time.Time{}
	return nil
}

// MarshalJSON implements JSON marshaling for FlexibleTime
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(ft.UTC().Format(time.RFC3339))), nil
}

// SameDay reports whether the timestamp falls on the given calendar day
func (ft FlexibleTime) SameDay(other time.Time) bool {
	if ft.IsZero() {
		return false
	}
	y1, m1, d1 := ft.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NumericString is a custom type for numeric fields the backend represents as
// strings (quantities, amounts). It accepts both JSON numbers and quoted
// strings; values that do not parse decode as 0.
type NumericString struct {
	Value float64
}

// UnmarshalJSON implements lenient JSON unmarshaling for numeric strings
func (ns *NumericString) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	if str == "" || str == "null" {
		ns.Value = 0
		return nil
	}

	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		// Parse failures contribute 0 rather than failing the decode
		ns.Value = 0
		return nil
	}

	ns.Value = value
	return nil
}

// MarshalJSON implements JSON marshaling for NumericString. Values round-trip
// in the backend's string representation.
func (ns NumericString) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatFloat(ns.Value, 'f', -1, 64))), nil
}

// Num is a convenience constructor used by tests and fixtures
func Num(v float64) NumericString {
	return NumericString{Value: v}
}
