package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current and next prayer, and today's log",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

type statusJSON struct {
	Date        string          `json:"date"`
	Timezone    string          `json:"timezone"`
	Current     string          `json:"current"`
	Next        string          `json:"next,omitempty"`
	NextTime    string          `json:"nextTime,omitempty"`
	MinutesAway int             `json:"minutesAway"`
	Logged      *attendance.Day `json:"logged"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	result, tzLoc, now, err := s.today()
	if err != nil {
		return err
	}
	st := prayer.ResolveStatus(result.Timings, dates.MinutesOfDay(now))
	today := now.Format(dates.KeyLayout)

	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	logged, err := db.Get(s.ctx, today)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, statusJSON{
			Date:        today,
			Timezone:    tzLoc.String(),
			Current:     st.CurrentLabel(),
			Next:        st.Next,
			NextTime:    st.NextTime(),
			MinutesAway: st.MinutesAway,
			Logged:      logged,
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n", display.Bold("Now:"), st.CurrentLabel())
	if st.HasNext {
		fmt.Fprintf(out, "  %s %s at %s (%s)\n", display.Bold("Next:"), display.Accent(st.Next), st.NextTime(), formatMinutes(st.MinutesAway))
	}
	fmt.Fprintln(out)

	day := attendance.Placeholder(today)
	if logged != nil {
		day = *logged
	}
	for _, name := range prayer.FivePrayers {
		mark := display.Gray("·")
		if done, ok := day.Prayers[name]; ok {
			mark = display.Red("✗")
			if done {
				mark = display.Green("✓")
			}
		}
		fmt.Fprintf(out, "  %s %s\n", mark, name)
	}
	fmt.Fprintf(out, "\n  %d/%d today\n\n", day.Completed(), attendance.PrayersPerDay)
	return nil
}

// formatMinutes renders a minute count as "2h 5m" or "5m".
func formatMinutes(m int) string {
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}
