package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

// markFlags are shared by mark and backfill.
type markFlags struct {
	all       bool
	clear     bool
	fasted    bool
	notFasted bool
}

func (f *markFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.all, "all", false, "Apply to all five prayers")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Mark the listed prayers as not prayed")
	cmd.Flags().BoolVar(&f.fasted, "fasted", false, "Record the day's fast as kept")
	cmd.Flags().BoolVar(&f.notFasted, "not-fasted", false, "Record the day's fast as broken")
	cmd.MarkFlagsMutuallyExclusive("fasted", "not-fasted")
}

func newMarkCmd() *cobra.Command {
	var f markFlags
	cmd := &cobra.Command{
		Use:   "mark [prayer...]",
		Short: "Log today's prayers",
		Long: "Mark prayers as prayed for today. Prayers not named keep their\n" +
			"current value. Names are case-insensitive: fajr, dhuhr, asr, maghrib, isha.",
		Example: "  prayer-tracker mark fajr dhuhr\n  prayer-tracker mark --all --fasted\n  prayer-tracker mark asr --clear",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(cmd, "", args, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newBackfillCmd() *cobra.Command {
	var f markFlags
	cmd := &cobra.Command{
		Use:     "backfill <date> [prayer...]",
		Short:   "Log prayers for a past day",
		Long:    "Mark prayers for the given day (YYYY-MM-DD). Flags match mark.",
		Example: "  prayer-tracker backfill 2026-03-01 --all --fasted",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.DateKey(args[0]); err != nil {
				return err
			}
			return runMark(cmd, args[0], args[1:], f)
		},
	}
	f.register(cmd)
	return cmd
}

// runMark records names and the fast for key; an empty key means today.
func runMark(cmd *cobra.Command, key string, names []string, f markFlags) error {
	prayers, err := markSelection(names, f.all, !f.clear)
	if err != nil {
		return err
	}

	fasted := attendance.FastUnrecorded
	switch {
	case f.fasted:
		fasted = attendance.FastKept
	case f.notFasted:
		fasted = attendance.FastBroken
	}

	if len(prayers) == 0 && !fasted.Recorded() {
		return fmt.Errorf("nothing to record: name prayers, or use --all, --fasted or --not-fasted")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if key == "" {
		key = s.todayKey()
	}
	if fasted.Recorded() && !s.resolver().IsRamadan(s.ctx, key) {
		s.log().Warn().Str("date", key).Msg("fast recorded on a day not known to be in Ramadan")
	}

	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	day, err := db.Set(s.ctx, key, prayers, fasted)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	if FlagJSON {
		return writeJSON(cmd.OutOrStdout(), day)
	}
	printDay(cmd.OutOrStdout(), day)
	return nil
}

// markSelection maps prayer names to value. With all, every one of the five
// prayers is included.
func markSelection(names []string, all, value bool) (map[string]bool, error) {
	out := map[string]bool{}
	if all {
		for _, name := range prayer.FivePrayers {
			out[name] = value
		}
	}
	for _, raw := range names {
		name, ok := canonicalPrayer(raw)
		if !ok {
			return nil, &validate.Error{
				Field:  "prayer",
				Value:  raw,
				Reason: "must be one of " + strings.Join(prayer.FivePrayers, ", "),
			}
		}
		out[name] = value
	}
	return out, nil
}

func canonicalPrayer(raw string) (string, bool) {
	for _, name := range prayer.FivePrayers {
		if strings.EqualFold(name, strings.TrimSpace(raw)) {
			return name, true
		}
	}
	return "", false
}

func printDay(w io.Writer, day attendance.Day) {
	var parts []string
	for _, name := range prayer.FivePrayers {
		done, logged := day.Prayers[name]
		switch {
		case !logged:
			parts = append(parts, display.Gray(name))
		case done:
			parts = append(parts, display.Green(name))
		default:
			parts = append(parts, display.Red(name))
		}
	}
	fmt.Fprintf(w, "  %s  %s  %d/%d", display.Bold(day.Date), strings.Join(parts, " "), day.Completed(), attendance.PrayersPerDay)
	if day.Fasted.Recorded() {
		fmt.Fprintf(w, "  fast: %s", day.Fasted)
	}
	fmt.Fprintln(w)
}
