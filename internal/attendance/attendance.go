// Package attendance models a user's daily prayer and fasting log and turns
// it into summaries, win rates, streaks and grids.
//
// Every function here takes its rows by value and returns new values; the
// store owns the canonical records.
package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

// PrayersPerDay is the number of tracked prayers in a day.
const PrayersPerDay = 5

// FastState records whether a day's fast was kept. The zero value means
// nothing was recorded, which is not the same as a broken fast.
type FastState int

const (
	FastUnrecorded FastState = iota
	FastBroken
	FastKept
)

// FastFromBool converts an explicit answer into a recorded state.
func FastFromBool(kept bool) FastState {
	if kept {
		return FastKept
	}
	return FastBroken
}

// Recorded reports whether an answer was given.
func (f FastState) Recorded() bool {
	return f == FastBroken || f == FastKept
}

func (f FastState) String() string {
	switch f {
	case FastKept:
		return "kept"
	case FastBroken:
		return "broken"
	default:
		return "unrecorded"
	}
}

// MarshalJSON writes true, false or null.
func (f FastState) MarshalJSON() ([]byte, error) {
	switch f {
	case FastKept:
		return []byte("true"), nil
	case FastBroken:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (f *FastState) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("fasted: %w", err)
	}
	if v == nil {
		*f = FastUnrecorded
	} else {
		*f = FastFromBool(*v)
	}
	return nil
}

// Day is one calendar day's record.
type Day struct {
	Date    string          `json:"date"`
	Prayers map[string]bool `json:"prayers"`
	Fasted  FastState       `json:"fasted"`
	// UpdatedAt is zero for placeholder days that were never logged.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Placeholder returns an empty day for key.
func Placeholder(key string) Day {
	return Day{Date: key, Prayers: map[string]bool{}}
}

// IsPlaceholder reports whether the day was synthesized rather than logged.
func (d Day) IsPlaceholder() bool {
	return d.UpdatedAt.IsZero()
}

// Completed counts the tracked prayers marked done.
func (d Day) Completed() int {
	n := 0
	for _, name := range prayer.FivePrayers {
		if d.Prayers[name] {
			n++
		}
	}
	return n
}

// Perfect reports whether all five prayers are marked done.
func (d Day) Perfect() bool {
	return d.Completed() == PrayersPerDay
}

// Store is the persistence the command layer needs.
type Store interface {
	// Get returns nil, nil when no record exists for key.
	Get(ctx context.Context, key string) (*Day, error)
	// List returns every record ordered by date ascending.
	List(ctx context.Context) ([]Day, error)
	// Set merges prayers into the record for key. Prayers missing from the
	// map keep their stored value. A FastUnrecorded fasted leaves the stored
	// fasting state alone.
	Set(ctx context.Context, key string, prayers map[string]bool, fasted FastState) (Day, error)
	// Reset deletes every record.
	Reset(ctx context.Context) error
}
