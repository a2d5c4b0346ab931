package prayer

import (
	"fmt"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
)

// NightLabel is shown when no prayer of the day has started yet.
const NightLabel = "Night"

// Status is where the day stands relative to the five prayers.
type Status struct {
	// Current is the last prayer that has started, "" before Fajr.
	Current string
	// Next is the upcoming prayer. After Isha it is tomorrow's Fajr.
	Next string
	// NextMinutes is Next's time in minutes since today's midnight; it
	// exceeds 1440 when Next is tomorrow's Fajr.
	NextMinutes int
	// MinutesAway is NextMinutes minus now, never negative.
	MinutesAway int
	// HasNext is false only when no prayer time could be parsed.
	HasNext bool
}

// CurrentLabel returns Current, or NightLabel when it is empty.
func (s Status) CurrentLabel() string {
	if s.Current == "" {
		return NightLabel
	}
	return s.Current
}

// NextTime formats NextMinutes as a wall-clock HH:MM.
func (s Status) NextTime() string {
	if !s.HasNext {
		return ""
	}
	m := s.NextMinutes % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

type scheduled struct {
	name    string
	minutes int
}

// ResolveStatus determines the current and next prayer for a day's timings
// at nowMinutes (minutes since midnight in the user's timezone).
// Prayers whose time cannot be parsed are left out of consideration.
func ResolveStatus(timings api.Timings, nowMinutes int) Status {
	var known []scheduled
	for _, name := range FivePrayers {
		if m, ok := dates.ParseTimeToMinutes(TimeOf(timings, name)); ok {
			known = append(known, scheduled{name: name, minutes: m})
		}
	}

	var st Status
	for _, p := range known {
		if p.minutes > nowMinutes {
			st.Next, st.NextMinutes, st.HasNext = p.name, p.minutes, true
			break
		}
	}
	for _, p := range known {
		if p.minutes <= nowMinutes {
			st.Current = p.name
		}
	}

	if !st.HasNext {
		// Past Isha: wrap to tomorrow's Fajr. Today's Fajr time stands in
		// for tomorrow's, shifted by a day.
		for _, p := range known {
			if p.name == "Fajr" {
				st.Next, st.NextMinutes, st.HasNext = p.name, p.minutes+24*60, true
			}
		}
	}

	if st.HasNext {
		st.MinutesAway = st.NextMinutes - nowMinutes
	}
	return st
}
