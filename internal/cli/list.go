package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

const (
	defaultListDays = 7
	monthDays       = 30
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show a timetable for the coming days",
		Long:  fmt.Sprintf("Show prayer times for the next N days, starting today (default %d).", defaultListDays),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, defaultListDays)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, monthDays)
		},
	}
}

// dayData holds a single day's parsed data for list output.
type dayData struct {
	Date     time.Time
	Timings  api.Timings
	DateInfo api.DateInfo
	Meta     api.Meta
}

func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return &validate.Error{Field: "days", Value: args[0], Reason: "must be a positive integer"}
		}
		if err := validate.Positive("days", n); err != nil {
			return err
		}
		days = n
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	selected := s.selectedPrayers()
	layout := s.timeLayout()

	now := clock.NowIn(s.cfg.Timezone)
	daysList, err := s.calendarDays(now, days)
	if err != nil {
		return err
	}

	tz := s.timezone(daysList[0].Meta)
	tzLoc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	todayStr := now.In(tzLoc).Format(dates.KeyLayout)

	loc, _ := s.location()
	out := cmd.OutOrStdout()
	if FlagJSON {
		return printListJSON(out, daysList, selected, loc, tz, layout, tzLoc)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", display.Bold(fmt.Sprintf("Prayer Times: %d Days", days)))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", buildLocationStr(loc, daysList[0].Meta))
	fmt.Fprintln(out)

	headers := append([]string{"Date", "Hijri"}, selected...)
	tbl := display.NewTable(headers)

	for i, dd := range daysList {
		dateInTZ := sameDayIn(dd.Date, tzLoc)
		parsed, err := prayer.ParseTimings(dd.Timings, dateInTZ, tzLoc, selected)
		if err != nil {
			return err
		}

		row := []string{dateInTZ.Format("Mon 02 Jan"), shortHijri(dd.DateInfo.Hijri)}
		for _, p := range parsed {
			row = append(row, p.Time.Format(layout))
		}
		tbl.AddRow(row)

		if dateInTZ.Format(dates.KeyLayout) == todayStr {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(out, tbl.Render())
	fmt.Fprintln(out)
	return nil
}

// sameDayIn keeps t's calendar day but places midnight in loc.
func sameDayIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// shortHijri is "3 Ramaḍān" without the year.
func shortHijri(h api.HijriDate) string {
	if h.Day == "" {
		return ""
	}
	return strings.TrimLeft(h.Day, "0") + " " + h.Month.En
}

type yearMonth struct {
	year, month int
}

// calendarDays returns `days` consecutive days starting from start. It
// fetches whole months from the calendar endpoint, through the cache.
func (s *session) calendarDays(start time.Time, days int) ([]dayData, error) {
	loc, err := s.location()
	if err != nil {
		return nil, err
	}

	monthData := make(map[yearMonth][]api.Data)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		ym := yearMonth{d.Year(), int(d.Month())}
		if _, ok := monthData[ym]; ok {
			continue
		}

		if s.cache != nil {
			if entry := s.cache.LoadCalendar(ym.year, ym.month, loc.Location, s.method, s.school); entry != nil {
				monthData[ym] = entry.Days
				continue
			}
		}

		resp, err := s.client.FetchCalendar(ym.year, ym.month, loc.Location, s.method, s.school)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch calendar for %d-%02d: %w", ym.year, ym.month, err)
		}
		monthData[ym] = resp.Data

		if s.cache != nil {
			if err := s.cache.SaveCalendar(ym.year, ym.month, loc.Location, s.method, s.school, resp); err != nil {
				s.log().Debug().Err(err).Msg("could not cache calendar")
			}
		}
	}

	result := make([]dayData, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		daysInMonth := monthData[yearMonth{d.Year(), int(d.Month())}]

		dayIdx := d.Day() - 1
		if dayIdx >= len(daysInMonth) {
			return nil, fmt.Errorf("day %d out of range for %d-%02d (got %d days)", d.Day(), d.Year(), d.Month(), len(daysInMonth))
		}

		apiData := daysInMonth[dayIdx]
		result = append(result, dayData{
			Date:     d,
			Timings:  apiData.Timings,
			DateInfo: apiData.Date,
			Meta:     apiData.Meta,
		})
	}
	return result, nil
}

type listJSONOutput struct {
	Location locationJSON  `json:"location"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, daysList []dayData, selected []string, loc resolvedLocation, tz, layout string, tzLoc *time.Location) error {
	out := listJSONOutput{Location: newLocationJSON(loc, daysList[0].Meta, tz)}

	for _, dd := range daysList {
		dateInTZ := sameDayIn(dd.Date, tzLoc)
		parsed, err := prayer.ParseTimings(dd.Timings, dateInTZ, tzLoc, selected)
		if err != nil {
			return err
		}

		timings := make(map[string]string)
		for _, p := range parsed {
			timings[strings.ToLower(p.Name)] = p.Time.Format(layout)
		}

		out.Days = append(out.Days, listJSONDay{
			Date:    dateInTZ.Format(dates.KeyLayout),
			Hijri:   dd.DateInfo.Hijri.Format(),
			Timings: timings,
		})
	}
	return writeJSON(w, out)
}
