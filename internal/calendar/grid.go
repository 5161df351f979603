package calendar

import (
	"fmt"
	"math"
	"time"
)

// Columns is fixed for every calendar grid: one column per weekday,
// Monday first.
const Columns = 7

// Mode selects the reference period of a grid.
type Mode string

const (
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWeek, ModeMonth:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown grid mode %q (want week or month)", s)
	}
}

// ParseReference parses a YYYY-MM-DD reference date in loc.
func ParseReference(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q: %w", s, err)
	}
	return t, nil
}

// Grid is the geometry of one calendar period laid out row-major over
// seven columns. The zero value is the empty grid (no cells), which is
// what invalid reference dates fall back to.
type Grid struct {
	Mode     Mode
	Start    time.Time // first calendar day of the period, midnight in the grid timezone
	Days     int       // days in the period
	Rows     int
	Leading  int // placeholder cells before day 1
	Trailing int // placeholder cells after the last day
}

// mondayIndex converts a time.Weekday to a Monday-first index (0=Mon..6=Sun).
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// BuildGrid computes grid geometry for the period containing ref.
//
// Month grids: leading placeholders equal the Monday-indexed weekday of the
// first day, trailing placeholders equal 6 minus the weekday index of the
// last day, and rows = ceil((leading + days) / 7). A month whose last day
// is a Sunday has zero trailing placeholders. Week grids are a single row
// of seven day cells anchored to the Monday of ref's week.
func BuildGrid(ref time.Time, mode Mode, loc *time.Location) (Grid, error) {
	if ref.IsZero() {
		return Grid{}, fmt.Errorf("reference date is not set")
	}
	ref = ref.In(loc)

	switch mode {
	case ModeWeek:
		monday := ref.AddDate(0, 0, -mondayIndex(ref.Weekday()))
		start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
		return Grid{
			Mode:  ModeWeek,
			Start: start,
			Days:  Columns,
			Rows:  1,
		}, nil

	case ModeMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		days := first.AddDate(0, 1, -1).Day()
		leading := mondayIndex(first.Weekday())
		last := first.AddDate(0, 0, days-1)
		trailing := 6 - mondayIndex(last.Weekday())
		rows := (leading + days + Columns - 1) / Columns
		return Grid{
			Mode:     ModeMonth,
			Start:    first,
			Days:     days,
			Rows:     rows,
			Leading:  leading,
			Trailing: trailing,
		}, nil

	default:
		return Grid{}, fmt.Errorf("unknown grid mode %q", mode)
	}
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return g.Rows == 0
}

// TotalCells is rows times columns, placeholders included.
func (g Grid) TotalCells() int {
	return g.Rows * Columns
}

// End returns the last calendar day of the period.
func (g Grid) End() time.Time {
	return g.Start.AddDate(0, 0, g.Days-1)
}

// IsPlaceholder reports whether a cell index is calendar padding.
func (g Grid) IsPlaceholder(cell int) bool {
	return cell < g.Leading || cell >= g.Leading+g.Days
}

// DayAt maps a cell index to its calendar day. The boolean is false for
// placeholder cells and out-of-range indices.
func (g Grid) DayAt(cell int) (time.Time, bool) {
	if g.Empty() || cell < 0 || cell >= g.TotalCells() || g.IsPlaceholder(cell) {
		return time.Time{}, false
	}
	return g.Start.AddDate(0, 0, cell-g.Leading), true
}

// CellFor maps a calendar day to its cell index. The boolean is false for
// days outside the period.
func (g Grid) CellFor(day time.Time) (int, bool) {
	if g.Empty() {
		return 0, false
	}
	day = day.In(g.Start.Location())
	offset := daysBetween(g.Start, day)
	if offset < 0 || offset >= g.Days {
		return 0, false
	}
	return g.Leading + offset, true
}

// daysBetween counts whole calendar days from a to b in a's location.
func daysBetween(a, b time.Time) int {
	loc := a.Location()
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)
	b = b.In(loc)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	// Hours division tolerates DST shifts inside the span
	return int(math.Round(b.Sub(a).Hours() / 24.0))
}

// DaysBetween is the exported whole-day delta used by the timeline
// metrics calculator.
func DaysBetween(a, b time.Time) int {
	return daysBetween(a, b)
}
