package layout

import (
	"fmt"
	"image/color"
	"time"

	"github.com/atelierlog/reportcard/internal/session"
)

// MaxTags caps the badge row; extra selected tags are dropped after
// deduplication.
const MaxTags = 6

// CellView is the resolved render state of one cell. Placeholder cells
// (calendar padding or empty slots) draw the dashed watermark pattern.
type CellView struct {
	Index       int
	ArtworkID   string
	Crop        *session.CropRect
	Placeholder bool
	DayNumber   int    // 1-based day of month for calendar cells, 0 elsewhere
	Stamp       string // right-aligned stamp under the cell, empty when hidden
}

// TimelineItem is one entry of the progress timeline payload, already
// date-sorted.
type TimelineItem struct {
	ArtworkID      string
	DateLabel      string
	DaysOffset     int
	ImageOffset    int
	DurationOffset int
}

// ComparisonDelta is the comparison template payload: the gap between the
// two picks.
type ComparisonDelta struct {
	Days            int
	DurationMinutes int
	BeforeLabel     string
	AfterLabel      string
}

// ViewModel is the immutable per-template snapshot the compositor
// consumes. It carries no live session state and no bitmaps.
type ViewModel struct {
	Kind   Kind
	Width  int
	Height int

	Margin       int
	CellGap      int
	CornerRadius float64

	Title       string
	Subtitle    string
	Username    string
	PeriodLabel string

	Accent      color.NRGBA
	Shadow      color.NRGBA
	TextOpacity float64

	ShowGradient        bool
	ShowTimestamps      bool
	ShowDuration        bool
	ShowDayOffsets      bool
	ShowImageOffsets    bool
	ShowDurationOffsets bool

	Tags []string

	Rows    int
	Columns int
	Cells   []CellView

	Timeline   []TimelineItem
	Comparison *ComparisonDelta
}

// formatDuration renders minutes as "45 min" or "2 h 15 min".
func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}

// formatStampDate renders the short per-cell date, e.g. "Apr 3".
func formatStampDate(t time.Time) string {
	return t.Format("Jan 2")
}

// dedupeTags drops duplicates (first occurrence wins) and caps at MaxTags.
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}
