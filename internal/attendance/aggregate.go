package attendance

import (
	"math"
	"sort"

	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

// Summary is the completion overview of a set of days.
type Summary struct {
	TotalDays     int     `json:"totalDays"`
	Completed     int     `json:"completed"`
	Total         int     `json:"total"`
	Percent       int     `json:"percent"`
	ActiveDays    int     `json:"activeDays"`
	PerfectDays   int     `json:"perfectDays"`
	AveragePerDay float64 `json:"averagePerDay"`
}

// Rate is a win rate: Completed out of Total eligible days.
type Rate struct {
	Percent   int `json:"percent"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// DailyStat is one day's row in a recap.
type DailyStat struct {
	Date      string    `json:"date"`
	Completed int       `json:"completed"`
	Perfect   bool      `json:"perfect"`
	Fasted    FastState `json:"fasted"`
}

// PrayerStat is the completion count of one prayer across a range.
type PrayerStat struct {
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// Streak holds perfect-day runs.
type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Summarize computes completion totals over days.
func Summarize(days []Day) Summary {
	s := Summary{TotalDays: len(days), Total: len(days) * PrayersPerDay}
	for _, d := range days {
		n := d.Completed()
		s.Completed += n
		if n > 0 {
			s.ActiveDays++
		}
		if n == PrayersPerDay {
			s.PerfectDays++
		}
	}
	s.Percent = percent(s.Completed, s.Total)
	if s.TotalDays > 0 {
		s.AveragePerDay = math.Round(float64(s.Completed)/float64(s.TotalDays)*100) / 100
	}
	return s
}

// sorted returns a date-ascending copy of days.
func sorted(days []Day) []Day {
	out := make([]Day, len(days))
	copy(out, days)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Expand fills the gaps between the first and last day with placeholders so
// there is exactly one row per calendar day. Rows with unparseable dates are
// dropped.
func Expand(days []Day) []Day {
	in := sorted(days)
	byDate := make(map[string]Day, len(in))
	var valid []string
	for _, d := range in {
		if _, err := dates.ParseKey(d.Date); err != nil {
			continue
		}
		if _, dup := byDate[d.Date]; !dup {
			valid = append(valid, d.Date)
		}
		byDate[d.Date] = d
	}
	if len(valid) == 0 {
		return nil
	}

	first, last := valid[0], valid[len(valid)-1]
	span, _ := dates.DaysBetween(first, last)
	out := make([]Day, 0, span+1)
	for i := 0; i <= span; i++ {
		key, _ := dates.AddDays(first, i)
		if d, ok := byDate[key]; ok {
			out = append(out, d)
		} else {
			out = append(out, Placeholder(key))
		}
	}
	return out
}

// FilterByDays keeps the rows from the last n days, counting back from the
// most recent row rather than from today.
func FilterByDays(days []Day, n int) []Day {
	if n <= 0 || len(days) == 0 {
		return nil
	}
	latest := ""
	for _, d := range days {
		if d.Date > latest {
			latest = d.Date
		}
	}
	start, err := dates.AddDays(latest, -(n - 1))
	if err != nil {
		return nil
	}
	return FilterRange(days, start, latest)
}

// FilterRange keeps rows with from <= date <= to, date ascending.
func FilterRange(days []Day, from, to string) []Day {
	var out []Day
	for _, d := range sorted(days) {
		if d.Date >= from && d.Date <= to {
			out = append(out, d)
		}
	}
	return out
}

// FilterDates keeps rows whose date is in keys, in date order.
func FilterDates(days []Day, keys []string) []Day {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []Day
	for _, d := range sorted(days) {
		if want[d.Date] {
			out = append(out, d)
		}
	}
	return out
}

// Fill returns one row per key in keys order, using placeholders for keys
// that have no record.
func Fill(days []Day, keys []string) []Day {
	byDate := make(map[string]Day, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}
	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		if d, ok := byDate[k]; ok {
			out = append(out, d)
		} else {
			out = append(out, Placeholder(k))
		}
	}
	return out
}

// Elapsed drops placeholder days after cutoff. Those days have not happened
// yet, so they are left out of totals; logged days are always kept.
func Elapsed(days []Day, cutoff string) []Day {
	var out []Day
	for _, d := range days {
		if d.Date > cutoff && d.IsPlaceholder() {
			continue
		}
		out = append(out, d)
	}
	return out
}

func eligible(days []Day, cutoff string) []Day {
	var out []Day
	for _, d := range days {
		if d.Date <= cutoff {
			out = append(out, d)
		}
	}
	return out
}

// PrayerRate is the share of days up to cutoff on which all five prayers
// were marked.
func PrayerRate(days []Day, cutoff string) Rate {
	rows := eligible(days, cutoff)
	r := Rate{Total: len(rows)}
	for _, d := range rows {
		if d.Perfect() {
			r.Completed++
		}
	}
	r.Percent = percent(r.Completed, r.Total)
	return r
}

// FastingRate is the share of days up to cutoff with a kept fast.
func FastingRate(days []Day, cutoff string) Rate {
	rows := eligible(days, cutoff)
	r := Rate{Total: len(rows)}
	for _, d := range rows {
		if d.Fasted == FastKept {
			r.Completed++
		}
	}
	r.Percent = percent(r.Completed, r.Total)
	return r
}

// DailyStats projects each day into a recap row, date ascending.
func DailyStats(days []Day) []DailyStat {
	in := sorted(days)
	out := make([]DailyStat, 0, len(in))
	for _, d := range in {
		out = append(out, DailyStat{
			Date:      d.Date,
			Completed: d.Completed(),
			Perfect:   d.Perfect(),
			Fasted:    d.Fasted,
		})
	}
	return out
}

// Breakdown counts completions per prayer across days.
func Breakdown(days []Day) []PrayerStat {
	out := make([]PrayerStat, 0, len(prayer.FivePrayers))
	for _, name := range prayer.FivePrayers {
		st := PrayerStat{Name: name, Total: len(days)}
		for _, d := range days {
			if d.Prayers[name] {
				st.Completed++
			}
		}
		st.Percent = percent(st.Completed, st.Total)
		out = append(out, st)
	}
	return out
}

// Streaks measures consecutive perfect days up to cutoff. Gaps in the log
// break a run. Current is the run ending on cutoff; it is zero when the
// cutoff day is not perfect, since that day is already over.
func Streaks(days []Day, cutoff string) Streak {
	perfect := map[string]bool{}
	for _, d := range eligible(days, cutoff) {
		if d.Perfect() {
			perfect[d.Date] = true
		}
	}

	var s Streak
	for _, d := range Expand(eligible(days, cutoff)) {
		if !perfect[d.Date] {
			continue
		}
		prev, _ := dates.AddDays(d.Date, -1)
		if perfect[prev] {
			continue
		}
		// d starts a run.
		n := 0
		for key := d.Date; perfect[key]; key, _ = dates.AddDays(key, 1) {
			n++
		}
		if n > s.Best {
			s.Best = n
		}
	}

	for key := cutoff; perfect[key]; key, _ = dates.AddDays(key, -1) {
		s.Current++
	}
	return s
}
