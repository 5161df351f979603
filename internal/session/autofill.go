package session

import (
	"time"

	"github.com/atelierlog/reportcard/internal/calendar"
)

// AutoFill assigns a best-match artwork to every unassigned cell and
// returns how many cells it filled. It is idempotent: a second run over
// the same grid and index changes nothing, and it never overwrites an
// existing assignment, manual or otherwise. The assignment check happens
// immediately before each write so a manual edit always wins.
func (s *Session) AutoFill(idx *calendar.BucketIndex) int {
	switch s.Fill {
	case FillByMonth:
		return s.fillByMonth(idx)
	case FillByRecency:
		return s.fillByRecency(idx)
	default:
		return s.fillByDay(idx)
	}
}

// fillByDay assigns the most recently uploaded artwork of each cell's
// calendar day. Placeholder cells have no day and stay empty.
func (s *Session) fillByDay(idx *calendar.BucketIndex) int {
	loc := s.Grid.Start.Location()
	filled := 0
	for i := range s.Cells {
		day, ok := s.Grid.DayAt(i)
		if !ok {
			continue
		}
		art, ok := idx.Latest(calendar.DayKey(day, loc))
		if !ok {
			continue
		}
		if s.Cells[i].Assigned() {
			continue
		}
		s.Cells[i].ArtworkID = art.ID
		filled++
	}
	return filled
}

// fillByMonth assigns each of the twelve cells the most recent artwork of
// the matching month of the reference year.
func (s *Session) fillByMonth(idx *calendar.BucketIndex) int {
	loc := s.Reference.Location()
	year := s.Reference.Year()
	filled := 0
	for i := range s.Cells {
		if i >= 12 {
			break
		}
		from := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, loc)
		to := from.AddDate(0, 1, -1)
		art, ok := idx.LatestIn(from, to)
		if !ok {
			continue
		}
		if s.Cells[i].Assigned() {
			continue
		}
		s.Cells[i].ArtworkID = art.ID
		filled++
	}
	return filled
}

// fillByRecency fills slots with the most recent artworks drawn from
// distinct days, skipping artworks already placed elsewhere in the
// session.
func (s *Session) fillByRecency(idx *calendar.BucketIndex) int {
	used := make(map[string]bool, len(s.Cells))
	for _, c := range s.Cells {
		if c.Assigned() {
			used[c.ArtworkID] = true
		}
	}

	days := idx.DaysWithArt()
	next := 0
	pick := func() (string, bool) {
		for next < len(days) {
			art, ok := idx.Latest(days[next])
			next++
			if ok && !used[art.ID] {
				return art.ID, true
			}
		}
		return "", false
	}

	filled := 0
	for i := range s.Cells {
		if s.Cells[i].Assigned() {
			continue
		}
		id, ok := pick()
		if !ok {
			break
		}
		if s.Cells[i].Assigned() {
			continue
		}
		s.Cells[i].ArtworkID = id
		used[id] = true
		filled++
	}
	return filled
}
