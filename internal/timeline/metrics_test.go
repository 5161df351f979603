package timeline

import (
	"testing"
	"time"

	"github.com/atelierlog/reportcard/internal/gallery"
)

func utc() *time.Location { return time.UTC }

func sel(pos int, id, uploaded string, minutes int) Selection {
	return Selection{
		Position: pos,
		Artwork: gallery.Artwork{
			ID:              id,
			UploadedAt:      uploaded,
			DurationMinutes: minutes,
		},
	}
}

func TestCompute_SortsAndOffsets(t *testing.T) {
	// Input order deliberately scrambled: Jan 1 (60), Jan 3 (30),
	// Jan 2 (45), Jan 5 (0). Date sorting yields Jan 1, 2, 3, 5.
	selections := []Selection{
		sel(0, "jan1", "2024-01-01T10:00:00Z", 60),
		sel(1, "jan3", "2024-01-03T10:00:00Z", 30),
		sel(2, "jan2", "2024-01-02T10:00:00Z", 45),
		sel(3, "jan5", "2024-01-05T10:00:00Z", 0),
	}

	metrics := Compute(selections, utc())
	if len(metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(metrics))
	}

	wantIDs := []string{"jan1", "jan2", "jan3", "jan5"}
	wantDays := []int{0, 1, 2, 4}
	wantImages := []int{0, 2, 1, 3}
	// Running duration sums 60, 105, 135, 135 minus the first item's 60.
	wantDurations := []int{0, 45, 75, 75}

	for i, m := range metrics {
		if m.ArtworkID != wantIDs[i] {
			t.Errorf("item %d id = %s, want %s", i, m.ArtworkID, wantIDs[i])
		}
		if m.DaysOffset != wantDays[i] {
			t.Errorf("item %d daysOffset = %d, want %d", i, m.DaysOffset, wantDays[i])
		}
		if m.ImageOffset != wantImages[i] {
			t.Errorf("item %d imageOffset = %d, want %d", i, m.ImageOffset, wantImages[i])
		}
		if m.DurationOffset != wantDurations[i] {
			t.Errorf("item %d durationOffset = %d, want %d", i, m.DurationOffset, wantDurations[i])
		}
	}
}

func TestCompute_StableOnEqualDates(t *testing.T) {
	selections := []Selection{
		sel(0, "first", "2024-01-01T10:00:00Z", 10),
		sel(1, "second", "2024-01-01T10:00:00Z", 20),
	}

	metrics := Compute(selections, utc())
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(metrics))
	}
	if metrics[0].ArtworkID != "first" || metrics[1].ArtworkID != "second" {
		t.Errorf("equal dates must keep input order: %s, %s", metrics[0].ArtworkID, metrics[1].ArtworkID)
	}
}

func TestCompute_DropsUnparsableDates(t *testing.T) {
	selections := []Selection{
		sel(0, "good", "2024-01-01T10:00:00Z", 10),
		sel(1, "bad", "whenever", 20),
	}

	metrics := Compute(selections, utc())
	if len(metrics) != 1 {
		t.Fatalf("expected 1 metric, got %d", len(metrics))
	}
	if metrics[0].ArtworkID != "good" {
		t.Errorf("expected 'good', got %s", metrics[0].ArtworkID)
	}
}

func TestCompute_Empty(t *testing.T) {
	if metrics := Compute(nil, utc()); metrics != nil {
		t.Errorf("expected nil for empty input, got %v", metrics)
	}
}

func TestCompute_NegativeImageOffset(t *testing.T) {
	// The earliest artwork sits in a later slot; offsets are signed.
	selections := []Selection{
		sel(3, "late-slot-early-date", "2024-01-01T10:00:00Z", 0),
		sel(0, "early-slot-late-date", "2024-01-09T10:00:00Z", 0),
	}

	metrics := Compute(selections, utc())
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(metrics))
	}
	if metrics[1].ImageOffset != -3 {
		t.Errorf("expected imageOffset -3, got %d", metrics[1].ImageOffset)
	}
	if metrics[1].DaysOffset != 8 {
		t.Errorf("expected daysOffset 8, got %d", metrics[1].DaysOffset)
	}
}
