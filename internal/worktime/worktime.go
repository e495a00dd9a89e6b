// Package worktime holds the calendar and hour arithmetic shared by shift
// generation and timesheet aggregation. Every function works in the location
// of the time values it is given; callers decide the roster timezone.
package worktime

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout ISO calendar date accepted by the API
const DateLayout = "2006-01-02"

var (
	ErrInvalidClock  = errors.New("time of day must be HH:MM between 00:00 and 23:59")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrZeroLength    = errors.New("start and end time of day must differ")
	ErrInvalidPeriod = errors.New("clock-out must be after clock-in")
)

// Clock a wall-clock time of day
type Clock struct {
	Hour   int
	Minute int
}

// String renders HH:MM.
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// ParseClock parses a strict two-digit HH:MM string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, ErrInvalidClock
	}
	h, ok1 := twoDigits(s[0:2])
	m, ok2 := twoDigits(s[3:5])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return Clock{}, ErrInvalidClock
	}
	return Clock{Hour: h, Minute: m}, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// ValidClock reports whether s parses as HH:MM.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// StartOfDay midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// At day's calendar date at the given clock, in day's location.
func At(day time.Time, c Clock) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

// ShiftWindow absolute start and end of a shift running from start to end on
// day. An end earlier than start rolls into the next calendar day.
func ShiftWindow(day time.Time, start, end Clock) (time.Time, time.Time, error) {
	if start == end {
		return time.Time{}, time.Time{}, ErrZeroLength
	}
	from := At(day, start)
	endDay := day
	if end.Minutes() < start.Minutes() {
		y, m, d := day.Date()
		endDay = time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
	}
	return from, At(endDay, end), nil
}

// WeekBounds the Sunday 00:00:00 on or before t through the following
// Saturday 23:59:59.999.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
	sy, sm, sd := start.Date()
	end := time.Date(sy, sm, sd+6, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// DateKey YYYY-MM-DD of t in its own location.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

// HoursBetween raw elapsed hours, unrounded.
func HoursBetween(in, out time.Time) (float64, error) {
	if !out.After(in) {
		return 0, ErrInvalidPeriod
	}
	return out.Sub(in).Hours(), nil
}

// hundredth one hundredth of an hour
const hundredth = 36 * time.Second

// RoundHours rounds a float to 2 decimal places, halves away from zero.
// Durations go through WorkedHours, which rounds on whole units instead.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// WorkedHours elapsed hours between in and out, rounded half-up to the
// hundredth on the integer duration.
func WorkedHours(in, out time.Time) (float64, error) {
	if !out.After(in) {
		return 0, ErrInvalidPeriod
	}
	units := (out.Sub(in) + hundredth/2) / hundredth
	return float64(units) / 100, nil
}

// SumHours adds already-rounded values in whole hundredths, so 3.99 + 3.99
// stays 7.98.
func SumHours(values ...float64) float64 {
	var units int64
	for _, v := range values {
		units += int64(math.Round(v * 100))
	}
	return float64(units) / 100
}
