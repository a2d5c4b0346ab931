package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/ramadan"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

// ramadanFlags pick which Ramadan to resolve; they override the ramadan_*
// config keys.
type ramadanFlags struct {
	year  int
	start string
	days  int
}

func (f *ramadanFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "Hijri year (default: config, else the current Hijri year)")
	cmd.Flags().StringVar(&f.start, "start", "", "First day of Ramadan (YYYY-MM-DD); skips the calendar lookup")
	cmd.Flags().IntVar(&f.days, "days", 0, "Length of Ramadan when --start is used (1-30, default 30)")
}

func newRamadanCmd() *cobra.Command {
	var f ramadanFlags
	cmd := &cobra.Command{
		Use:   "ramadan",
		Short: "Show the days of Ramadan and their log",
		Long: "Resolve the Gregorian days of Ramadan, either from the Hijri calendar\n" +
			"for your location or from a known start date, and show each day's\n" +
			"prayers and fast.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRamadan(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

// cachedCalendar serves Hijri months from the cache before asking the API.
type cachedCalendar struct {
	s *session
}

func (c cachedCalendar) FetchHijriCalendar(year, month int, loc api.Location, method, school int) (*api.CalendarResponse, error) {
	if c.s.cache != nil {
		if entry := c.s.cache.LoadHijriCalendar(year, month, loc, method, school); entry != nil {
			return &api.CalendarResponse{Code: 200, Status: "OK", Data: entry.Days}, nil
		}
	}
	resp, err := c.s.client.FetchHijriCalendar(year, month, loc, method, school)
	if err != nil {
		return nil, err
	}
	if c.s.cache != nil {
		if err := c.s.cache.SaveHijriCalendar(year, month, loc, method, school, resp); err != nil {
			c.s.log().Debug().Err(err).Msg("could not cache hijri calendar")
		}
	}
	return resp, nil
}

func (s *session) resolver() *ramadan.Resolver {
	return &ramadan.Resolver{Calendar: cachedCalendar{s: s}, Converter: s.client}
}

// ramadanDates resolves the requested Ramadan. A start date wins over a
// year; with neither, the current Hijri year is used.
func (s *session) ramadanDates(f ramadanFlags, labels bool) ([]ramadan.Date, error) {
	start, days, year := s.cfg.RamadanStart, s.cfg.RamadanDays, s.cfg.RamadanYear
	if f.start != "" {
		start = f.start
	}
	if f.days != 0 {
		days = f.days
	}
	if f.year != 0 {
		year = f.year
		if f.start == "" {
			start = ""
		}
	}

	r := s.resolver()
	if start != "" {
		if days == 0 {
			days = validate.MaxRamadanDays
		}
		return r.FromStart(s.ctx, start, days, labels)
	}

	if year == 0 {
		y, err := s.currentHijriYear()
		if err != nil {
			return nil, err
		}
		year = y
	}
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	return r.FromCalendar(s.ctx, loc.Location, year, s.method, s.school)
}

func (s *session) currentHijriYear() (int, error) {
	today, err := dates.ParseKey(clock.TodayIn(s.cfg.Timezone))
	if err != nil {
		return 0, err
	}
	resp, err := s.client.FetchHijriForDate(today)
	if err != nil {
		return 0, fmt.Errorf("determining the current Hijri year: %w", err)
	}
	return validate.HijriYear(resp.Data.Hijri.Year)
}

type ramadanJSONDay struct {
	Day       int                  `json:"day"`
	Date      string               `json:"date"`
	Hijri     string               `json:"hijri,omitempty"`
	Completed int                  `json:"completed"`
	Fasted    attendance.FastState `json:"fasted"`
}

func runRamadan(cmd *cobra.Command, f ramadanFlags) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	ds, err := s.ramadanDates(f, true)
	if err != nil {
		return err
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
	keys := ramadan.Keys(ds)
	logged := attendance.Fill(attendance.FilterDates(rows, keys), keys)

	out := cmd.OutOrStdout()
	if FlagJSON {
		days := make([]ramadanJSONDay, len(ds))
		for i, d := range ds {
			days[i] = ramadanJSONDay{
				Day:       i + 1,
				Date:      d.Key,
				Hijri:     d.Label(),
				Completed: logged[i].Completed(),
				Fasted:    logged[i].Fasted,
			}
		}
		return writeJSON(out, days)
	}

	cutoff := attendance.WinRateCutoff(s.ctx, clock, s.cfg.Timezone, s.ishaLookup)
	printRamadan(out, ds, logged, clock.TodayIn(s.cfg.Timezone), cutoff)
	return nil
}

func printRamadan(w io.Writer, ds []ramadan.Date, logged []attendance.Day, today, cutoff string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("Ramadan: %s to %s", ds[0].Key, ds[len(ds)-1].Key)))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"#", "Date", "Hijri", "Prayers", "Fast"})
	for i, d := range ds {
		t, _ := dates.ParseKey(d.Key)
		fast := "-"
		if logged[i].Fasted.Recorded() {
			fast = logged[i].Fasted.String()
		}
		prayers := "-"
		if !logged[i].IsPlaceholder() {
			prayers = fmt.Sprintf("%d/%d", logged[i].Completed(), attendance.PrayersPerDay)
		}
		tbl.AddRow([]string{strconv.Itoa(i + 1), t.Format("Mon 02 Jan"), d.Label(), prayers, fast})
		if d.Key == today {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Fprint(w, tbl.Render())

	fasting := attendance.FastingRate(logged, cutoff)
	fmt.Fprintf(w, "\n  Fasts kept: %d/%d  %s\n\n", fasting.Completed, fasting.Total, display.Percent(fasting.Percent))
}
