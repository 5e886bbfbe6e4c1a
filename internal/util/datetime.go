package util

import (
	"strings"
	"time"
)

// Layouts probed by ParseDateTime, most specific first. Vendors mix
// US-style dates, ISO dates, 12-hour clocks and bare times, sometimes
// within one file.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 03:04 PM",
	"01/02/2006 3:04 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"01/02/06 15:04",
	"1/2/06 15:04",
	"01/02/06",
	"1/2/06",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"03:04 PM",
	"3:04 PM",
	"3:04PM",
}

// ParseDateTime parses a free-form date or datetime string against the
// mixed vendor formats. Returns nil on irrecoverable input.
func ParseDateTime(input string) *time.Time {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	// A bare time still carries usable information for the Time
	// column; anchor it on the zero date.
	if t := ParseClock(s); t != nil {
		return t
	}
	return nil
}

// ParseClock parses a time-of-day string. Returns nil when the input
// is not a recognizable clock value.
func ParseClock(input string) *time.Time {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// CombineDateTime recomposes a canonical Datetime from the already
// rendered YYYY-MM-DD date and HH:MM:SS time strings.
func CombineDateTime(date, clock string) *time.Time {
	if date == "" {
		return nil
	}
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return nil
	}
	return &t
}
