package display

import (
	"fmt"
	"strings"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
)

// Grid glyphs.
const (
	GlyphDone   = "■"
	GlyphMissed = "□"
	GlyphEmpty  = "·"
)

// DefaultGridColumns is how many days a grid block shows before wrapping.
const DefaultGridColumns = 31

func glyph(c attendance.Cell) string {
	switch c {
	case attendance.CellDone:
		return Green(GlyphDone)
	case attendance.CellMissed:
		return Red(GlyphMissed)
	default:
		return Gray(GlyphEmpty)
	}
}

// RenderGrid draws g as blocks of at most columns days. Each block starts
// with a header of day-of-month numbers; each row is a prayer label followed
// by one glyph per day.
func RenderGrid(g attendance.Grid, columns int) string {
	if len(g.Dates) == 0 {
		return ""
	}
	if columns <= 0 {
		columns = DefaultGridColumns
	}

	labelWidth := 0
	for _, r := range g.Rows {
		if w := width(r.Label); w > labelWidth {
			labelWidth = w
		}
	}

	var sb strings.Builder
	for start := 0; start < len(g.Dates); start += columns {
		end := start + columns
		if end > len(g.Dates) {
			end = len(g.Dates)
		}
		if start > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString("  " + Dim(fmt.Sprintf("%s → %s", g.Dates[start], g.Dates[end-1])) + "\n")

		header := make([]string, 0, end-start)
		for _, d := range g.Dates[start:end] {
			header = append(header, fmt.Sprintf("%2s", strings.TrimLeft(d[8:], "0")))
		}
		sb.WriteString("  " + pad("", labelWidth) + " " + Dim(strings.Join(header, " ")) + "\n")

		for _, r := range g.Rows {
			cells := make([]string, 0, end-start)
			for _, c := range r.Cells[start:end] {
				cells = append(cells, " "+glyph(c))
			}
			sb.WriteString("  " + pad(r.Label, labelWidth) + " " + strings.Join(cells, " ") + "\n")
		}
	}
	return sb.String()
}

// Bar renders a percentage as a fixed-width bar.
func Bar(percent, cells int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * cells / 100
	return Green(strings.Repeat("█", filled)) + Gray(strings.Repeat("░", cells-filled))
}
