package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-tracker/internal/attendance"
)

func plain(t *testing.T) {
	t.Helper()
	prev := Enabled()
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(prev) })
}

func sampleGrid() attendance.Grid {
	return attendance.Grid{
		Dates: []string{"2026-02-19", "2026-02-20", "2026-02-21"},
		Rows: []attendance.GridRow{
			{Label: "Fajr", Cells: []attendance.Cell{attendance.CellDone, attendance.CellEmpty, attendance.CellMissed}},
			{Label: "Maghrib", Cells: []attendance.Cell{attendance.CellDone, attendance.CellDone, attendance.CellDone}},
		},
	}
}

func TestRenderGrid(t *testing.T) {
	plain(t)

	out := RenderGrid(sampleGrid(), 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "  2026-02-19 → 2026-02-21", lines[0])
	assert.Equal(t, "          19 20 21", lines[1])
	assert.Equal(t, "  Fajr     ■  ·  □", lines[2])
	assert.Equal(t, "  Maghrib  ■  ■  ■", lines[3])
}

func TestRenderGrid_WrapsBlocks(t *testing.T) {
	plain(t)

	out := RenderGrid(sampleGrid(), 2)

	assert.Equal(t, 2, strings.Count(out, "→"))
	assert.Contains(t, out, "2026-02-19 → 2026-02-20")
	assert.Contains(t, out, "2026-02-21 → 2026-02-21")
	assert.Contains(t, out, "  Fajr     □\n")
}

func TestRenderGrid_Empty(t *testing.T) {
	assert.Equal(t, "", RenderGrid(attendance.Grid{}, 7))
}

func TestRenderGrid_FromAttendance(t *testing.T) {
	plain(t)
	days := []attendance.Day{
		{Date: "2026-03-01", Prayers: map[string]bool{"Fajr": true}},
		{Date: "2026-03-03", Prayers: map[string]bool{}},
	}

	out := RenderGrid(attendance.BuildGrid(days), 0)

	assert.Contains(t, out, " 1  2  3")
	assert.Contains(t, out, "Isha")
	assert.NotContains(t, out, attendance.FastingLabel)
}

func TestBar(t *testing.T) {
	plain(t)

	assert.Equal(t, "█████░░░░░", Bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", Bar(-5, 10))
	assert.Equal(t, "██████████", Bar(140, 10))
}

func TestPercent(t *testing.T) {
	plain(t)
	assert.Equal(t, "67%", Percent(67))

	SetEnabled(true)
	assert.Contains(t, Percent(90), green)
	assert.Contains(t, Percent(60), yellow)
	assert.Contains(t, Percent(10), red)
}

func TestTable_UnicodeWidth(t *testing.T) {
	plain(t)
	tbl := NewTable([]string{"Hijri", "Day"})
	tbl.AddRow([]string{"1 Ramaḍān", "Thu"})
	tbl.AddRow([]string{"10 Shawwal", "Fri"})

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "  1 Ramaḍān   Thu", lines[2])
	assert.Equal(t, "  10 Shawwal  Fri", lines[3])
}
