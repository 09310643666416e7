package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var jsonNull = []byte("null")

// FlexibleString accepts a JSON string or number. Phone, Aadhaar and id
// values arrive both ways depending on the writer.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*fs = FlexibleString(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		*fs = FlexibleString(num.String())
		return nil
	}
	return fmt.Errorf("expected string or number, got %s", string(data))
}

func (fs FlexibleString) String() string {
	return string(fs)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// FlexibleTime accepts RFC3339 timestamps, bare dates and null. Values are
// normalized to UTC and the zero time is treated as absent.
type FlexibleTime struct {
	time.Time
}

func (ft *FlexibleTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("expected a date string, got %s", string(data))
	}
	t, err := ParseTime(s)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// Set reports whether a non-zero time was supplied.
func (ft FlexibleTime) Set() bool { return !ft.IsZero() }

// Day is the calendar day of the value in UTC.
func (ft FlexibleTime) Day() time.Time { return DayOf(ft.Time) }

func (ft FlexibleTime) Ptr() *time.Time {
	if ft.IsZero() {
		return nil
	}
	t := ft.UTC()
	return &t
}

// ParseTime parses any layout FlexibleTime accepts. A blank string and the
// zero timestamp both yield the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() <= 1 {
				return time.Time{}, nil
			}
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}
