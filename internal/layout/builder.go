package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/gallery"
	"github.com/atelierlog/reportcard/internal/session"
	"github.com/atelierlog/reportcard/internal/timeline"
)

// Build produces the view model for one template from the session state
// and the template's canvas spec. It never mutates the session and holds
// no hidden state: identical inputs yield an identical model.
func Build(kind Kind, spec config.CanvasSpec, s *session.Session) (ViewModel, error) {
	if s == nil {
		return ViewModel{}, fmt.Errorf("session is nil")
	}

	accent, err := ParseHexColor(s.Style.AccentColor)
	if err != nil {
		// A broken slider value degrades to the default accent; style
		// errors must never block a preview.
		accent, _ = ParseHexColor(session.DefaultStyle().AccentColor)
	}

	vm := ViewModel{
		Kind:   kind,
		Width:  spec.Width,
		Height: spec.Height(s.Content.Aspect, s.Grid.Rows),

		Margin:       spec.Margin,
		CellGap:      spec.CellGap,
		CornerRadius: spec.CornerRadius,

		Title:       strings.TrimSpace(s.Content.Title),
		Subtitle:    strings.TrimSpace(s.Content.Subtitle),
		Username:    strings.TrimSpace(s.Content.Username),
		PeriodLabel: periodLabel(kind, s),

		Accent:      accent,
		Shadow:      ShadowColor(s.Style),
		TextOpacity: clamp01(s.Style.TextOpacity),

		ShowGradient:        s.Content.ShowGradient,
		ShowTimestamps:      s.Content.ShowTimestamps,
		ShowDuration:        s.Content.ShowDuration,
		ShowDayOffsets:      s.Content.ShowDayOffsets,
		ShowImageOffsets:    s.Content.ShowImageOffsets,
		ShowDurationOffsets: s.Content.ShowDurationOffsets,

		Tags: dedupeTags(s.Content.Tags),
	}

	switch kind {
	case KindMonthly, KindWeeklySingle, KindWeeklyDouble:
		vm.Rows = s.Grid.Rows
		vm.Columns = 7
		vm.Cells = calendarCells(s)
	case KindYearly:
		vm.Columns = 3
		vm.Rows = 4
		vm.Cells = yearlyCells(s)
	case KindTimeline:
		vm.Cells = slotCells(s)
		vm.Timeline = timelineItems(s)
	case KindComparison:
		vm.Cells = slotCells(s)
		vm.Comparison = comparisonDelta(s)
	case KindFourImage:
		vm.Columns = 2
		vm.Rows = 2
		vm.Cells = slotCells(s)
	default:
		return ViewModel{}, fmt.Errorf("unknown template kind %q", kind)
	}

	return vm, nil
}

// stamp builds the per-cell date/duration stamp honoring the visibility
// flags. An empty stamp suppresses the line entirely.
func stamp(s *session.Session, art gallery.Artwork) string {
	var parts []string
	if s.Content.ShowTimestamps {
		if uploaded, ok := art.UploadedTime(s.Reference.Location()); ok {
			parts = append(parts, formatStampDate(uploaded))
		}
	}
	if s.Content.ShowDuration && art.DurationMinutes > 0 {
		parts = append(parts, formatDuration(art.DurationMinutes))
	}
	return strings.Join(parts, " · ")
}

func calendarCells(s *session.Session) []CellView {
	cells := make([]CellView, len(s.Cells))
	for i, c := range s.Cells {
		view := CellView{Index: i}
		day, hasDay := s.Grid.DayAt(i)
		if hasDay {
			view.DayNumber = day.Day()
		}
		if !hasDay || !c.Assigned() {
			view.Placeholder = true
			cells[i] = view
			continue
		}
		view.ArtworkID = c.ArtworkID
		view.Crop = c.Crop
		if art, ok := s.Artwork(c.ArtworkID); ok {
			view.Stamp = stamp(s, art)
		}
		cells[i] = view
	}
	return cells
}

func yearlyCells(s *session.Session) []CellView {
	cells := make([]CellView, len(s.Cells))
	for i, c := range s.Cells {
		view := CellView{
			Index: i,
			Stamp: time.Month(i + 1).String()[:3],
		}
		if !c.Assigned() {
			view.Placeholder = true
			cells[i] = view
			continue
		}
		view.ArtworkID = c.ArtworkID
		view.Crop = c.Crop
		cells[i] = view
	}
	return cells
}

func slotCells(s *session.Session) []CellView {
	cells := make([]CellView, len(s.Cells))
	for i, c := range s.Cells {
		view := CellView{Index: i}
		if !c.Assigned() {
			view.Placeholder = true
			cells[i] = view
			continue
		}
		view.ArtworkID = c.ArtworkID
		view.Crop = c.Crop
		if art, ok := s.Artwork(c.ArtworkID); ok {
			view.Stamp = stamp(s, art)
		}
		cells[i] = view
	}
	return cells
}

// selections collects the assigned cells as ordered (position, artwork)
// pairs for the timeline calculator.
func selections(s *session.Session) []timeline.Selection {
	var sel []timeline.Selection
	for _, c := range s.Cells {
		if !c.Assigned() {
			continue
		}
		art, ok := s.Artwork(c.ArtworkID)
		if !ok {
			continue
		}
		sel = append(sel, timeline.Selection{Position: c.Index, Artwork: art})
	}
	return sel
}

func timelineItems(s *session.Session) []TimelineItem {
	metrics := timeline.Compute(selections(s), s.Reference.Location())
	items := make([]TimelineItem, len(metrics))
	for i, m := range metrics {
		items[i] = TimelineItem{
			ArtworkID:      m.ArtworkID,
			DateLabel:      formatStampDate(m.Date),
			DaysOffset:     m.DaysOffset,
			ImageOffset:    m.ImageOffset,
			DurationOffset: m.DurationOffset,
		}
	}
	return items
}

func comparisonDelta(s *session.Session) *ComparisonDelta {
	metrics := timeline.Compute(selections(s), s.Reference.Location())
	if len(metrics) < 2 {
		return nil
	}
	first, last := metrics[0], metrics[len(metrics)-1]

	var firstDur, lastDur int
	if art, ok := s.Artwork(first.ArtworkID); ok {
		firstDur = art.DurationMinutes
	}
	if art, ok := s.Artwork(last.ArtworkID); ok {
		lastDur = art.DurationMinutes
	}

	return &ComparisonDelta{
		Days:            last.DaysOffset,
		DurationMinutes: lastDur - firstDur,
		BeforeLabel:     first.Date.Format("Jan 2, 2006"),
		AfterLabel:      last.Date.Format("Jan 2, 2006"),
	}
}

// periodLabel derives the header label for the reference period.
func periodLabel(kind Kind, s *session.Session) string {
	if s.Grid.Empty() {
		return ""
	}
	switch kind {
	case KindMonthly:
		return s.Grid.Start.Format("January 2006")
	case KindYearly:
		return s.Reference.Format("2006")
	case KindTimeline, KindComparison:
		metrics := timeline.Compute(selections(s), s.Reference.Location())
		if len(metrics) == 0 {
			return ""
		}
		first, last := metrics[0].Date, metrics[len(metrics)-1].Date
		if first.Equal(last) {
			return first.Format("Jan 2, 2006")
		}
		return fmt.Sprintf("%s – %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
	default:
		start, end := s.Grid.Start, s.Grid.End()
		return fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
	}
}
