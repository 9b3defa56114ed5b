// Package timeutil normalizes the date representations returned by the
// different billing and event-log endpoints into a single timezone and
// computes the minute-granularity deltas the daily report is built from.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

// Central is the civil timezone all report timestamps are displayed in.
var Central = mustLoad("US/Central")

// eventLogLayout matches the event-log timestamp after truncation, e.g.
// "2021-05-01T10:15:30.000000-0500".
const eventLogLayout = "2006-01-02T15:04:05.000000-0700"

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// ParseISO parses an ISO-8601 timestamp with offset as returned by the
// invoice and billing endpoints and converts it to Central time.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.In(Central), nil
}

// ParseEventLog parses an event-log timestamp. The endpoint pads the
// fractional seconds and writes the offset with a colon, so the raw value
// is sliced down to a fixed-width form before parsing: the first 29
// characters hold date, time, microseconds and the offset hour, and the
// last two characters hold the offset minutes.
func ParseEventLog(s string) (time.Time, error) {
	if len(s) < 31 {
		return time.Time{}, fmt.Errorf("event timestamp %q too short", s)
	}
	trimmed := s[:29] + s[len(s)-2:]
	t, err := time.Parse(eventLogLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event timestamp %q: %w", s, err)
	}
	return t.In(Central), nil
}

// DeltaMinutes returns the elapsed minutes between two instants, rounded to
// one decimal place. The duration is decomposed into day, hour, minute and
// second components so the result stays exact across day boundaries.
func DeltaMinutes(later, earlier time.Time) float64 {
	d := later.Sub(earlier)
	days := int(d / (24 * time.Hour))
	rem := d % (24 * time.Hour)
	hours := int(rem / time.Hour)
	minutes := int(rem % time.Hour / time.Minute)
	seconds := int(rem % time.Minute / time.Second)

	total := float64(days*1440+hours*60+minutes) + float64(seconds)/60
	return math.Round(total*10) / 10
}

// FormatDate renders the date portion of a timestamp for display.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTime renders the time portion of a timestamp for display.
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}
