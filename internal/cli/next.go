package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/notify"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
	flagNotify  bool
)

// newNotifier is swapped in tests to capture notifications.
var newNotifier = notify.New

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown, in a single line\nsuited to status bars.",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: "+strings.Join(prayer.FormatModes, ", ")+", or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")
	cmd.Flags().BoolVar(&flagNotify, "notify", false, "Also send a desktop notification for the next prayer")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	format, err := prayer.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	// Priority: --prayers flag > config > defaults.
	selected := s.selectedPrayers()
	if cmd.Flags().Changed("prayers") {
		selected = splitPrayers(flagPrayers, selected)
	}

	result, tzLoc, now, err := s.today()
	if err != nil {
		return err
	}

	prayers, err := prayer.ParseTimings(result.Timings, now, tzLoc, selected)
	if err != nil {
		return err
	}

	next := prayer.NextPrayer(prayers, now)

	// All of today's prayers have passed: use tomorrow's first.
	if next == nil {
		tomorrow := now.AddDate(0, 0, 1)

		tResult, fetchErr := s.timings(tomorrow)
		if fetchErr != nil {
			// Keep the status bar alive with the last prayer instead of failing.
			if len(prayers) > 0 {
				s.log().Warn().Err(fetchErr).Msg("tomorrow's timings unavailable")
				fmt.Fprintf(cmd.OutOrStdout(), "%s --:--", prayers[len(prayers)-1].Name)
				return nil
			}
			return fmt.Errorf("failed to fetch tomorrow's times: %w", fetchErr)
		}

		tomorrowPrayers, err := prayer.ParseTimings(tResult.Timings, tomorrow, tzLoc, selected)
		if err != nil {
			return err
		}
		if len(tomorrowPrayers) > 0 {
			next = &tomorrowPrayers[0]
		}
	}

	if next == nil {
		return fmt.Errorf("could not determine next prayer")
	}

	layout := s.timeLayout()
	line := prayer.Line{
		Next:    *next,
		Now:     now,
		Layout:  layout,
		Current: prayer.ResolveStatus(result.Timings, dates.MinutesOfDay(now)).CurrentLabel(),
	}
	if format.UsesLog() {
		line.Done = s.loggedToday(now.Format(dates.KeyLayout))
	}
	out, err := format.Render(line)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if flagNotify {
		remaining := prayer.FormatRemaining(prayer.TimeRemaining(*next, now))
		if err := newNotifier().Upcoming(next.Name, next.Time.Format(layout), remaining); err != nil {
			// The countdown already printed; a missing notification daemon is not fatal.
			s.log().Warn().Err(err).Msg("desktop notification failed")
		}
	}
	return nil
}

// loggedToday counts the prayers marked on key. A status bar keeps going
// when the log cannot be read, so failures count as zero.
func (s *session) loggedToday(key string) int {
	db, err := s.openStore()
	if err != nil {
		s.log().Debug().Err(err).Msg("attendance log unavailable")
		return 0
	}
	defer db.Close()

	day, err := db.Get(s.ctx, key)
	if err != nil {
		s.log().Debug().Err(err).Str("date", key).Msg("attendance log unavailable")
		return 0
	}
	if day == nil {
		return 0
	}
	return day.Completed()
}
