// Package layout turns session state and user choices into the immutable
// view model the compositor renders. Building a model is pure: identical
// inputs produce identical models.
package layout

import (
	"fmt"

	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/session"
)

// Kind identifies one template of the fixed catalog. The catalog is a
// closed set; Build dispatches on it.
type Kind string

const (
	KindWeeklySingle Kind = "weekly-single"
	KindWeeklyDouble Kind = "weekly-double"
	KindMonthly      Kind = "monthly"
	KindFourImage    Kind = "four-image"
	KindYearly       Kind = "yearly"
	KindTimeline     Kind = "timeline"
	KindComparison   Kind = "comparison"
)

// Kinds lists the catalog in display order.
func Kinds() []Kind {
	return []Kind{
		KindWeeklySingle, KindWeeklyDouble, KindMonthly,
		KindFourImage, KindYearly, KindTimeline, KindComparison,
	}
}

// ParseKind validates a template kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if Kind(s) == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown template kind %q", s)
}

// GridMode returns the calendar period the template is anchored to.
func (k Kind) GridMode() calendar.Mode {
	switch k {
	case KindMonthly:
		return calendar.ModeMonth
	default:
		return calendar.ModeWeek
	}
}

// Fill returns the auto-fill strategy for the template.
func (k Kind) Fill() session.FillStrategy {
	switch k {
	case KindWeeklySingle, KindWeeklyDouble, KindMonthly:
		return session.FillByDay
	case KindYearly:
		return session.FillByMonth
	default:
		return session.FillByRecency
	}
}

// CellCount returns how many cells a session of this kind owns.
// Day-mapped templates size to the grid; slot templates have fixed counts.
func (k Kind) CellCount(grid calendar.Grid) int {
	switch k {
	case KindWeeklySingle, KindWeeklyDouble, KindMonthly:
		return grid.TotalCells()
	case KindFourImage:
		return 4
	case KindYearly:
		return 12
	case KindTimeline:
		return 8
	case KindComparison:
		return 2
	default:
		return 0
	}
}
