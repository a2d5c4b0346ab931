package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2026-02-19", true},
		{"2024-02-29", true},
		{"2026-02-29", false},
		{"2026-04-31", false},
		{"2026-13-01", false},
		{"2026-00-10", false},
		{"2026-2-19", false},
		{"19-02-2026", false},
		{"2026/02/19", false},
		{"", false},
		{" 2026-02-19", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := DateKey(tt.in)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestHijriYear(t *testing.T) {
	n, err := HijriYear("1447")
	require.NoError(t, err)
	assert.Equal(t, 1447, n)

	for _, bad := range []string{"0", "-1447", "14.47", "abc", "", "+1447"} {
		_, err := HijriYear(bad)
		assert.Error(t, err, "HijriYear(%q)", bad)
	}
}

func TestDayCount(t *testing.T) {
	for _, good := range []string{"1", "29", "30"} {
		_, err := DayCount(good)
		assert.NoError(t, err, "DayCount(%q)", good)
	}
	for _, bad := range []string{"0", "31", "29.5", "x", "-3"} {
		_, err := DayCount(bad)
		assert.Error(t, err, "DayCount(%q)", bad)
	}
}

func TestDays(t *testing.T) {
	assert.NoError(t, Days(30))
	assert.Error(t, Days(0))
	assert.Error(t, Days(31))
}

func TestPositive(t *testing.T) {
	assert.NoError(t, Positive("days", 400))
	err := Positive("days", 0)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "positive")
}

func TestMonth(t *testing.T) {
	n, err := Month("9")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = Month("13")
	assert.Error(t, err)
}

func TestRange(t *testing.T) {
	assert.NoError(t, Range("2026-02-19", "2026-03-20"))
	assert.NoError(t, Range("2026-02-19", "2026-02-19"))
	assert.Error(t, Range("2026-03-20", "2026-02-19"))
	assert.Error(t, Range("2026-02-30", "2026-03-20"))
}

func TestError_Message(t *testing.T) {
	err := &Error{Field: "date", Value: "2026-02-30", Reason: "must be a real date"}
	assert.Equal(t, `invalid date "2026-02-30": must be a real date`, err.Error())

	wrapped := fmt.Errorf("backfill: %w", err)
	assert.True(t, IsValidation(wrapped))
}
