package attendance

import "github.com/smokyabdulrahman/prayer-tracker/internal/prayer"

// Cell is one square of a grid.
type Cell int

const (
	CellEmpty Cell = iota // nothing logged
	CellMissed
	CellDone
)

// GridRow is one prayer (or the fasting line) across the grid's days.
type GridRow struct {
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

// Grid has one column per calendar day and one row per prayer. A fasting
// row is added when any day has a recorded fast.
type Grid struct {
	Dates []string  `json:"dates"`
	Rows  []GridRow `json:"rows"`
}

// FastingLabel labels the grid's fasting row.
const FastingLabel = "Fast"

// BuildGrid expands days to a dense range and lays it out as a grid.
func BuildGrid(days []Day) Grid {
	dense := Expand(days)
	g := Grid{Dates: make([]string, 0, len(dense))}
	for _, d := range dense {
		g.Dates = append(g.Dates, d.Date)
	}

	for _, name := range prayer.FivePrayers {
		row := GridRow{Label: name, Cells: make([]Cell, 0, len(dense))}
		for _, d := range dense {
			row.Cells = append(row.Cells, prayerCell(d, name))
		}
		g.Rows = append(g.Rows, row)
	}

	anyFast := false
	for _, d := range dense {
		if d.Fasted.Recorded() {
			anyFast = true
			break
		}
	}
	if anyFast {
		row := GridRow{Label: FastingLabel, Cells: make([]Cell, 0, len(dense))}
		for _, d := range dense {
			switch d.Fasted {
			case FastKept:
				row.Cells = append(row.Cells, CellDone)
			case FastBroken:
				row.Cells = append(row.Cells, CellMissed)
			default:
				row.Cells = append(row.Cells, CellEmpty)
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func prayerCell(d Day, name string) Cell {
	switch {
	case d.Prayers[name]:
		return CellDone
	case d.IsPlaceholder():
		return CellEmpty
	default:
		return CellMissed
	}
}
