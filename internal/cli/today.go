package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule (default)",
		Long:  "Show today's prayer times with the current and next prayer highlighted.\nDuring Ramadan the Imsak time is listed before Fajr.",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}
}

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	result, tzLoc, now, err := s.today()
	if err != nil {
		return err
	}

	selected := withImsak(s.selectedPrayers(), result.DateInfo.Hijri.IsRamadan())
	prayers, err := prayer.ParseTimings(result.Timings, now, tzLoc, selected)
	if err != nil {
		return err
	}

	current := prayer.CurrentPrayer(prayers, now)
	next := prayer.NextPrayer(prayers, now)

	loc, _ := s.location()
	locationStr := buildLocationStr(loc, result.Meta)

	out := cmd.OutOrStdout()
	if FlagJSON {
		return printTodayJSON(out, prayers, current, next, now, result, loc, tzLoc.String(), s.timeLayout())
	}
	printTodayRich(out, prayers, current, next, now, result, locationStr, tzLoc.String(), s.timeLayout())
	return nil
}

// withImsak puts Imsak ahead of the selection during Ramadan, when the
// start of the fast matters.
func withImsak(selected []string, ramadan bool) []string {
	if !ramadan || slices.Contains(selected, "Imsak") {
		return selected
	}
	return append([]string{"Imsak"}, selected...)
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, prayers []prayer.Prayer, current, next *prayer.Prayer, now time.Time, result *fetchResult, locationStr, tz, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", locationStr)
	fmt.Fprintf(w, "  %s\n", tz)
	fmt.Fprintf(w, "  %s\n", formatGregorianDate(now, result))
	if hijri := result.DateInfo.Hijri.Format(); hijri != "" {
		fmt.Fprintf(w, "  %s\n", hijri)
	}
	fmt.Fprintln(w)

	maxNameLen := 0
	for _, p := range prayers {
		if len(p.Name) > maxNameLen {
			maxNameLen = len(p.Name)
		}
	}

	for _, p := range prayers {
		line := fmt.Sprintf("  %s  %s", padRight(p.Name, maxNameLen), p.Time.Format(layout))

		switch {
		case current != nil && p.Name == current.Name:
			fmt.Fprintln(w, display.Dim(line))
		case next != nil && p.Name == next.Name:
			remaining := prayer.FormatRemaining(prayer.TimeRemaining(p, now))
			fmt.Fprintln(w, display.Accent(line+"  <- next in "+remaining))
		default:
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

// formatGregorianDate prefers the API's date and falls back to now.
func formatGregorianDate(now time.Time, result *fetchResult) string {
	g := result.DateInfo.Gregorian
	if g.Day != "" && g.Month.En != "" && g.Year != "" {
		return g.Day + " " + g.Month.En + " " + g.Year
	}
	return now.Format("02 Jan 2006")
}

// padRight pads a string to the given width with spaces.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

type todayJSON struct {
	Location locationJSON      `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
}

type locationJSON struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
	Ramadan   bool   `json:"ramadan"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func newLocationJSON(loc resolvedLocation, meta api.Meta, tz string) locationJSON {
	out := locationJSON{
		City:      loc.City,
		Country:   loc.Country,
		Timezone:  tz,
		Latitude:  meta.Latitude,
		Longitude: meta.Longitude,
	}
	if out.City == "" {
		if parts := strings.SplitN(loc.Label, ", ", 2); len(parts) == 2 {
			out.City, out.Country = parts[0], parts[1]
		}
	}
	return out
}

func printTodayJSON(w io.Writer, prayers []prayer.Prayer, current, next *prayer.Prayer, now time.Time, result *fetchResult, loc resolvedLocation, tz, layout string) error {
	timings := make(map[string]string)
	for _, p := range prayers {
		timings[strings.ToLower(p.Name)] = p.Time.Format(layout)
	}

	out := todayJSON{
		Location: newLocationJSON(loc, result.Meta, tz),
		Date: todayJSONDate{
			Gregorian: formatGregorianDate(now, result),
			Hijri:     result.DateInfo.Hijri.Format(),
			Ramadan:   result.DateInfo.Hijri.IsRamadan(),
		},
		Timings: timings,
	}
	if current != nil {
		out.Current = strings.ToLower(current.Name)
	}
	if next != nil {
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(next.Name),
			Time:      next.Time.Format(layout),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*next, now)),
		}
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
