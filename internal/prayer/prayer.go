package prayer

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
)

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string
	Time time.Time
}

// FivePrayers are the obligatory daily prayers, in the order they fall.
// Attendance is tracked for exactly these.
var FivePrayers = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

// AllPrayerNames lists every prayer/event the API can return, in chronological order.
var AllPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Sunset", "Maghrib", "Isha",
	"Imsak", "Midnight", "Firstthird", "Lastthird",
}

// DefaultPrayerNames are the rows shown by today/list unless configured.
// During Ramadan the today view prepends Imsak.
var DefaultPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha",
}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	"Fajr":       "F",
	"Sunrise":    "S",
	"Dhuhr":      "D",
	"Asr":        "A",
	"Sunset":     "St",
	"Maghrib":    "M",
	"Isha":       "I",
	"Imsak":      "Im",
	"Midnight":   "Mi",
	"Firstthird": "F3",
	"Lastthird":  "L3",
}

// IsFivePrayer reports whether name is one of the tracked daily prayers.
func IsFivePrayer(name string) bool {
	for _, p := range FivePrayers {
		if p == name {
			return true
		}
	}
	return false
}

// TimeOf returns the raw API string for the named prayer, or "" if unknown.
func TimeOf(timings api.Timings, name string) string {
	switch name {
	case "Fajr":
		return timings.Fajr
	case "Sunrise":
		return timings.Sunrise
	case "Dhuhr":
		return timings.Dhuhr
	case "Asr":
		return timings.Asr
	case "Sunset":
		return timings.Sunset
	case "Maghrib":
		return timings.Maghrib
	case "Isha":
		return timings.Isha
	case "Imsak":
		return timings.Imsak
	case "Midnight":
		return timings.Midnight
	case "Firstthird":
		return timings.Firstthird
	case "Lastthird":
		return timings.Lastthird
	}
	return ""
}

// Timezone picks the zone used for "now": the user's override when set,
// otherwise the zone the API reported for the location.
func Timezone(override string, meta api.Meta) string {
	if override != "" {
		return override
	}
	return meta.Timezone
}

// ParseTimings converts API timings into a slice of Prayer structs for the given date.
// It filters to only include the specified prayer names.
// The location is used to construct proper time.Time values in the correct timezone.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Prayer, error) {
	var prayers []Prayer
	for _, name := range selected {
		if _, ok := ShortNames[name]; !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}

		raw := TimeOf(timings, name)
		t, err := parseTimeStr(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw, err)
		}

		prayers = append(prayers, Prayer{Name: name, Time: t})
	}

	return prayers, nil
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers for today have passed, it returns nil (caller should fetch tomorrow's Fajr).
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the latest prayer whose time has arrived, or nil
// before the first one.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var current *Prayer
	for i := range prayers {
		if !prayers[i].Time.After(now) {
			current = &prayers[i]
		}
	}
	return current
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into a time.Time
// on the given date in the given location.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	minutes, ok := dates.ParseTimeToMinutes(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
