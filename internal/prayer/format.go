package prayer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
	FormatCurrentAndNext     = "current-and-next"
	FormatProgress           = "progress"
)

// FormatModes lists the built-in modes in the order help text shows them.
var FormatModes = []string{
	FormatTimeRemaining,
	FormatNextPrayerTime,
	FormatNameAndTime,
	FormatNameAndRemaining,
	FormatShortNameAndTime,
	FormatShortNameAndRemain,
	FormatFull,
	FormatCurrentAndNext,
	FormatProgress,
}

// Line is everything a countdown line can show.
type Line struct {
	Next    Prayer
	Now     time.Time
	Layout  string // "15:04" or "3:04 PM"
	Current string // last prayer that started, or NightLabel
	Done    int    // of the five prayers, how many are logged today
}

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Full prayer name, e.g. "Asr"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Formatted prayer time, e.g. "15:02" or "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
	Current   string // Prayer in progress, e.g. "Dhuhr", or "Night"
	Done      int    // Prayers logged today
	Tracked   int    // Always five
}

// Data flattens the line for templates.
func (l Line) Data() FormatData {
	d := TimeRemaining(l.Next, l.Now)
	return FormatData{
		Name:      l.Next.Name,
		ShortName: ShortNames[l.Next.Name],
		Time:      l.Next.Time.Format(l.Layout),
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Current:   l.Current,
		Done:      l.Done,
		Tracked:   len(FivePrayers),
	}
}

// Formatter renders lines in one mode.
type Formatter struct {
	mode string
	tmpl *template.Template
}

// ParseFormat accepts a built-in mode or, when mode contains "{{", a Go
// template over FormatData. Templates are checked against an empty line so
// a bad field fails here rather than on every render.
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func ParseFormat(mode string) (*Formatter, error) {
	if strings.Contains(mode, "{{") {
		t, err := template.New("format").Parse(mode)
		if err != nil {
			return nil, fmt.Errorf("invalid format template: %w", err)
		}
		if err := t.Execute(io.Discard, FormatData{}); err != nil {
			return nil, fmt.Errorf("invalid format template: %w", err)
		}
		return &Formatter{mode: mode, tmpl: t}, nil
	}
	for _, m := range FormatModes {
		if m == mode {
			return &Formatter{mode: mode}, nil
		}
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s, or a template)", mode, strings.Join(FormatModes, ", "))
}

// UsesLog reports whether rendering needs today's attendance.
func (f *Formatter) UsesLog() bool {
	if f.tmpl != nil {
		return strings.Contains(f.mode, ".Done")
	}
	return f.mode == FormatProgress
}

// Render formats l in the formatter's mode.
func (f *Formatter) Render(l Line) (string, error) {
	d := l.Data()
	if f.tmpl != nil {
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, d); err != nil {
			return "", fmt.Errorf("rendering format template: %w", err)
		}
		return buf.String(), nil
	}

	switch f.mode {
	case FormatTimeRemaining:
		return d.Remaining, nil
	case FormatNextPrayerTime:
		return d.Time, nil
	case FormatNameAndRemaining:
		return d.Name + " " + d.Remaining, nil
	case FormatShortNameAndTime:
		return d.ShortName + " " + d.Time, nil
	case FormatShortNameAndRemain:
		return d.ShortName + " " + d.Remaining, nil
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining), nil
	case FormatCurrentAndNext:
		return fmt.Sprintf("%s → %s %s", d.Current, d.Name, d.Time), nil
	case FormatProgress:
		return fmt.Sprintf("%s %s %d/%d", d.Name, d.Time, d.Done, d.Tracked), nil
	default:
		return d.Name + " " + d.Time, nil
	}
}
