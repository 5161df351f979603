// Package timeline computes the per-item offsets shown by the progress
// timeline and comparison templates.
package timeline

import (
	"sort"
	"time"

	"github.com/atelierlog/reportcard/internal/calendar"
	"github.com/atelierlog/reportcard/internal/gallery"
)

// Selection is one ordered pick: the slot position the user placed the
// artwork in, plus the artwork itself.
type Selection struct {
	Position int
	Artwork  gallery.Artwork
}

// Metrics are the signed offsets of one item relative to the first item
// after date-sorting. Zero means "no offset" and may be suppressed by
// display settings.
type Metrics struct {
	ArtworkID      string
	Date           time.Time
	DaysOffset     int // whole-day delta from the first item's date
	ImageOffset    int // slot position delta from the first item
	DurationOffset int // running duration sum minus the first item's own duration
}

// Compute sorts the selections by resolved date ascending (stable on
// ties) and derives the three offsets per item. Selections whose artwork
// has no parsable timestamp are dropped before sorting.
func Compute(selections []Selection, loc *time.Location) []Metrics {
	type dated struct {
		sel  Selection
		date time.Time
	}

	items := make([]dated, 0, len(selections))
	for _, sel := range selections {
		uploaded, ok := sel.Artwork.UploadedTime(loc)
		if !ok {
			continue
		}
		items = append(items, dated{sel: sel, date: uploaded})
	}
	if len(items) == 0 {
		return nil
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].date.Before(items[b].date)
	})

	first := items[0]
	out := make([]Metrics, len(items))
	running := 0
	for i, item := range items {
		running += item.sel.Artwork.DurationMinutes
		out[i] = Metrics{
			ArtworkID:      item.sel.Artwork.ID,
			Date:           item.date,
			DaysOffset:     calendar.DaysBetween(first.date, item.date),
			ImageOffset:    item.sel.Position - first.sel.Position,
			DurationOffset: running - first.sel.Artwork.DurationMinutes,
		}
	}
	return out
}
