// Package calendar implements day bucketing of artworks and calendar grid
// geometry for the weekly and monthly report card templates.
package calendar

import (
	"sort"
	"time"

	"github.com/atelierlog/reportcard/internal/gallery"
)

// BucketIndex maps ISO calendar-day keys (YYYY-MM-DD, in a fixed timezone)
// to the artworks uploaded that day, most recent first.
type BucketIndex struct {
	loc  *time.Location
	days map[string][]bucketEntry
}

type bucketEntry struct {
	artwork  gallery.Artwork
	uploaded time.Time
	order    int // input position, preserves order on timestamp ties
}

// DayKey formats a time as the bucket key for its calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// NewBucketIndex indexes artworks by calendar day in loc. Artworks with a
// missing or unparsable timestamp are excluded from every bucket.
func NewBucketIndex(artworks []gallery.Artwork, loc *time.Location) *BucketIndex {
	idx := &BucketIndex{
		loc:  loc,
		days: make(map[string][]bucketEntry),
	}

	for i, art := range artworks {
		uploaded, ok := art.UploadedTime(loc)
		if !ok {
			continue
		}
		key := DayKey(uploaded, loc)
		idx.days[key] = append(idx.days[key], bucketEntry{
			artwork:  art,
			uploaded: uploaded,
			order:    i,
		})
	}

	// Most recent first; equal timestamps keep input order.
	for key := range idx.days {
		entries := idx.days[key]
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].uploaded.After(entries[b].uploaded)
		})
	}

	return idx
}

// Day returns the artworks uploaded on the given day key, most recent first.
func (b *BucketIndex) Day(key string) []gallery.Artwork {
	entries := b.days[key]
	if len(entries) == 0 {
		return nil
	}
	out := make([]gallery.Artwork, len(entries))
	for i, e := range entries {
		out[i] = e.artwork
	}
	return out
}

// Latest returns the most recently uploaded artwork of the given day.
func (b *BucketIndex) Latest(key string) (gallery.Artwork, bool) {
	entries := b.days[key]
	if len(entries) == 0 {
		return gallery.Artwork{}, false
	}
	return entries[0].artwork, true
}

// LatestIn returns the most recent artwork uploaded within [from, to]
// (whole calendar days, inclusive). Used by month-slot auto-fill.
func (b *BucketIndex) LatestIn(from, to time.Time) (gallery.Artwork, bool) {
	var best bucketEntry
	found := false
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		entries := b.days[DayKey(day, b.loc)]
		for _, e := range entries {
			if !found || e.uploaded.After(best.uploaded) ||
				(e.uploaded.Equal(best.uploaded) && e.order < best.order) {
				best = e
				found = true
			}
		}
	}
	return best.artwork, found
}

// DayCount returns how many distinct days hold at least one artwork.
func (b *BucketIndex) DayCount() int {
	return len(b.days)
}

// DaysWithArt returns the day keys that hold artworks, newest day first.
func (b *BucketIndex) DaysWithArt() []string {
	keys := make([]string, 0, len(b.days))
	for key := range b.days {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}
