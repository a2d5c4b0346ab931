// Package dates holds the date-key and time-of-day helpers shared by the
// attendance, prayer and ramadan packages.
//
// A date key is a calendar day written as YYYY-MM-DD. Keys are compared as
// strings; lexical order equals chronological order for four-digit years.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// KeyLayout is the Go layout of a date key.
const KeyLayout = "2006-01-02"

// apiLayout is the DD-MM-YYYY form the Al Adhan API uses.
const apiLayout = "02-01-2006"

const minutesPerDay = 24 * 60

var clockPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})`)

// Location resolves an IANA timezone name. An empty or unknown name falls
// back to the process's local timezone.
func Location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// FormatKey projects t into a date key in the given timezone.
func FormatKey(t time.Time, tz string) string {
	return t.In(Location(tz)).Format(KeyLayout)
}

// ParseKey parses a date key into midnight UTC of that day.
func ParseKey(key string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// AddDays shifts a date key by n calendar days. n may be negative.
func AddDays(key string, n int) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(KeyLayout), nil
}

// DaysBetween returns the number of days from one key to another
// (negative when to is before from).
func DaysBetween(from, to string) (int, error) {
	a, err := ParseKey(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseKey(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// ParseAPIDate converts the API's DD-MM-YYYY date into a date key.
func ParseAPIDate(s string) (string, error) {
	t, err := time.Parse(apiLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid API date %q: %w", s, err)
	}
	return t.Format(KeyLayout), nil
}

// APIDate formats a date key in the API's DD-MM-YYYY form.
func APIDate(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return t.Format(apiLayout), nil
}

// ParseTimeToMinutes reads the leading HH:MM of s, ignoring anything after
// it such as " (WIB)", and returns minutes since midnight. ok is false when
// s does not start with a valid clock time.
func ParseTimeToMinutes(s string) (minutes int, ok bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, false
	}
	return h*60 + min, true
}

// MinutesOfDay returns minutes since midnight of t in its own location.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Clock is an injectable source of the current instant.
type Clock func() time.Time

// SystemClock reads the wall clock.
var SystemClock Clock = time.Now

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// NowIn returns the current instant in tz (local time on fallback).
func (c Clock) NowIn(tz string) time.Time {
	return c().In(Location(tz))
}

// MinutesIn returns the current minutes-of-day in tz.
func (c Clock) MinutesIn(tz string) int {
	return MinutesOfDay(c.NowIn(tz))
}

// TodayIn returns today's date key in tz.
func (c Clock) TodayIn(tz string) string {
	return FormatKey(c(), tz)
}
