package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/ramadan"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

const defaultRecapDays = 7

type recapFlags struct {
	days    int
	all     bool
	from    string
	to      string
	ramadan bool
	columns int
	year    int
	start   string
}

func newRecapCmd() *cobra.Command {
	var f recapFlags
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Summarize logged prayers and fasts",
		Long: "Show completion totals, a per-prayer breakdown, win rates, streaks and\n" +
			"a day-by-day grid. The default window is the last 7 logged days,\n" +
			"counting back from the most recent entry.\n\n" +
			"Win rates only count a day once its Isha has started, so an unfinished\n" +
			"today is left out.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecap(cmd, f)
		},
	}
	cmd.Flags().IntVar(&f.days, "days", defaultRecapDays, "Number of days to include")
	cmd.Flags().BoolVar(&f.all, "all", false, "Include every logged day")
	cmd.Flags().StringVar(&f.from, "from", "", "First day of a custom range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day of a custom range (default: today)")
	cmd.Flags().BoolVar(&f.ramadan, "ramadan", false, "Recap the days of Ramadan")
	cmd.Flags().IntVar(&f.columns, "columns", display.DefaultGridColumns, "Grid days per block")
	cmd.Flags().IntVar(&f.year, "year", 0, "Hijri year for --ramadan")
	cmd.Flags().StringVar(&f.start, "start", "", "First day of Ramadan for --ramadan (YYYY-MM-DD); --days sets its length")
	cmd.MarkFlagsMutuallyExclusive("all", "from", "ramadan")
	cmd.MarkFlagsMutuallyExclusive("all", "days")
	cmd.MarkFlagsMutuallyExclusive("from", "days")
	return cmd
}

// recapReport is everything a recap prints.
type recapReport struct {
	Title       string                  `json:"title"`
	From        string                  `json:"from,omitempty"`
	To          string                  `json:"to,omitempty"`
	Cutoff      string                  `json:"cutoff"`
	Summary     attendance.Summary      `json:"summary"`
	Prayers     []attendance.PrayerStat `json:"prayers"`
	PrayerRate  attendance.Rate         `json:"prayerRate"`
	FastingRate *attendance.Rate        `json:"fastingRate,omitempty"`
	Streak      attendance.Streak       `json:"streak"`
	Daily       []attendance.DailyStat  `json:"daily"`

	grid attendance.Grid
}

func runRecap(cmd *cobra.Command, f recapFlags) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := validate.Positive("days", f.days); err != nil {
		return err
	}
	if f.to != "" && f.from == "" {
		return fmt.Errorf("--to requires --from")
	}

	db, err := s.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	rows, err := db.List(s.ctx)
	if err != nil {
		return err
	}

	var (
		window []attendance.Day
		title  string
	)
	switch {
	case f.ramadan:
		rf := ramadanFlags{year: f.year, start: f.start}
		if cmd.Flags().Changed("days") {
			rf.days = f.days
		}
		ds, err := s.ramadanDates(rf, false)
		if err != nil {
			return err
		}
		keys := ramadan.Keys(ds)
		window = attendance.Fill(attendance.FilterDates(rows, keys), keys)
		title = "Ramadan Recap"
	case f.from != "":
		to := f.to
		if to == "" {
			to = clock.TodayIn(s.cfg.Timezone)
		}
		keys, err := rangeKeys(f.from, to)
		if err != nil {
			return err
		}
		window = attendance.Fill(attendance.FilterRange(rows, f.from, to), keys)
		title = "Recap"
	case f.all:
		window = attendance.Expand(rows)
		title = "All-Time Recap"
	default:
		window = attendance.FilterByDays(attendance.Expand(rows), f.days)
		title = fmt.Sprintf("Recap: Last %d Days", f.days)
	}

	cutoff := attendance.WinRateCutoff(s.ctx, clock, s.cfg.Timezone, s.ishaLookup)
	report := buildRecap(title, window, cutoff, f.ramadan)

	out := cmd.OutOrStdout()
	if FlagJSON {
		return writeJSON(out, report)
	}
	printRecap(out, report, f.columns)
	return nil
}

// rangeKeys lists every day key from..to inclusive.
func rangeKeys(from, to string) ([]string, error) {
	if err := validate.Range(from, to); err != nil {
		return nil, err
	}
	n, err := dates.DaysBetween(from, to)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, n+1)
	for i := 0; i <= n; i++ {
		k, err := dates.AddDays(from, i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// buildRecap aggregates window. Totals skip unlogged days after cutoff while
// the grid and daily rows keep the whole window. Fasting is reported during
// Ramadan or when any fast in the window was recorded.
func buildRecap(title string, window []attendance.Day, cutoff string, fasting bool) recapReport {
	counted := attendance.Elapsed(window, cutoff)
	r := recapReport{
		Title:      title,
		Cutoff:     cutoff,
		Summary:    attendance.Summarize(counted),
		Prayers:    attendance.Breakdown(counted),
		PrayerRate: attendance.PrayerRate(window, cutoff),
		Streak:     attendance.Streaks(window, cutoff),
		Daily:      attendance.DailyStats(window),
		grid:       attendance.BuildGrid(window),
	}
	if len(window) > 0 {
		r.From, r.To = window[0].Date, window[len(window)-1].Date
	}

	showFasting := fasting
	for _, d := range window {
		if d.Fasted.Recorded() {
			showFasting = true
			break
		}
	}
	if showFasting {
		rate := attendance.FastingRate(window, cutoff)
		r.FastingRate = &rate
	}
	return r
}

func printRecap(w io.Writer, r recapReport, columns int) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(r.Title))
	if r.From == "" {
		fmt.Fprintf(w, "\n  No prayers logged yet. Try: prayer-tracker mark --all\n\n")
		return
	}
	fmt.Fprintf(w, "  %s\n\n", display.Dim(r.From+" → "+r.To))

	sum := r.Summary
	fmt.Fprintf(w, "  Prayers     %d/%d  %s\n", sum.Completed, sum.Total, display.Percent(sum.Percent))
	fmt.Fprintf(w, "  Active days %d/%d\n", sum.ActiveDays, sum.TotalDays)
	fmt.Fprintf(w, "  Perfect     %d\n", sum.PerfectDays)
	fmt.Fprintf(w, "  Per day     %.2f\n\n", sum.AveragePerDay)

	tbl := display.NewTable([]string{"Prayer", "Done", "", "Rate"})
	for _, p := range r.Prayers {
		tbl.AddRow([]string{p.Name, fmt.Sprintf("%d/%d", p.Completed, p.Total), display.Bar(p.Percent, 10), display.Percent(p.Percent)})
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Win rate    %d/%d perfect days  %s\n", r.PrayerRate.Completed, r.PrayerRate.Total, display.Percent(r.PrayerRate.Percent))
	if r.FastingRate != nil {
		fmt.Fprintf(w, "  Fasting     %d/%d days  %s\n", r.FastingRate.Completed, r.FastingRate.Total, display.Percent(r.FastingRate.Percent))
	}
	fmt.Fprintf(w, "  Streak      %d (best %d)\n", r.Streak.Current, r.Streak.Best)
	fmt.Fprintf(w, "  %s\n\n", display.Dim("counted through "+r.Cutoff))

	fmt.Fprint(w, display.RenderGrid(r.grid, columns))
	fmt.Fprintln(w)
}
