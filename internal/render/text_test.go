package render

import (
	"strings"
	"testing"

	"golang.org/x/image/font"
)

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	fonts, err := LoadFonts()
	if err != nil {
		t.Fatalf("could not load fonts: %v", err)
	}
	face, err := fonts.Regular(size)
	if err != nil {
		t.Fatalf("could not create face: %v", err)
	}
	return face
}

func TestEllipsize_FittingStringUnchanged(t *testing.T) {
	face := testFace(t, 20)

	s := "April recap"
	w := MeasureWidth(face, s)
	got := Ellipsize(face, s, w+1)
	if got != s {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if strings.HasSuffix(got, Ellipsis) {
		t.Errorf("string that fits must not gain an ellipsis: %q", got)
	}
}

func TestEllipsize_TruncatedStringFitsAndEndsInEllipsis(t *testing.T) {
	face := testFace(t, 20)

	s := "a very long title that certainly does not fit in a narrow box"
	maxWidth := 120.0
	if MeasureWidth(face, s) <= maxWidth {
		t.Fatalf("test string unexpectedly fits %v px", maxWidth)
	}

	got := Ellipsize(face, s, maxWidth)
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("truncated string must end in ellipsis, got %q", got)
	}
	if w := MeasureWidth(face, got); w > maxWidth {
		t.Errorf("ellipsized width %v exceeds box %v", w, maxWidth)
	}
	if len([]rune(got)) >= len([]rune(s)) {
		t.Errorf("expected fewer runes after truncation")
	}
}

func TestEllipsize_TinyBoxYieldsBareEllipsis(t *testing.T) {
	face := testFace(t, 20)

	got := Ellipsize(face, "anything", 1)
	if got != Ellipsis {
		t.Errorf("expected bare ellipsis for unusable box, got %q", got)
	}
}

func TestEllipsize_EmptyString(t *testing.T) {
	face := testFace(t, 20)

	if got := Ellipsize(face, "", 100); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPackBadges_DropsWholeOverflowingBadges(t *testing.T) {
	face := testFace(t, 20)

	tags := []string{"inktober", "portrait", "study", "gouache"}
	full := PackBadges(face, tags, 10000, 10, 14)
	if len(full) != len(tags) {
		t.Fatalf("expected all %d badges to fit, got %d", len(tags), len(full))
	}

	// Cut the row just before the last badge ends; it must be dropped whole.
	last := full[len(full)-1]
	packed := PackBadges(face, tags, last.X+last.Width-1, 10, 14)
	if len(packed) != len(tags)-1 {
		t.Fatalf("expected %d badges, got %d", len(tags)-1, len(packed))
	}
	for i := 1; i < len(packed); i++ {
		if packed[i].X <= packed[i-1].X {
			t.Errorf("badge offsets must increase: %v then %v", packed[i-1].X, packed[i].X)
		}
	}
}

func TestPackBadges_EmptyAndTooNarrow(t *testing.T) {
	face := testFace(t, 20)

	if got := PackBadges(face, nil, 500, 10, 14); got != nil {
		t.Errorf("expected nil for no tags, got %v", got)
	}
	if got := PackBadges(face, []string{"inktober"}, 2, 10, 14); got != nil {
		t.Errorf("expected nil when nothing fits, got %v", got)
	}
}

func TestLerpColor(t *testing.T) {
	a := paperColor
	b := inkColor

	if got := lerpColor(a, b, 0); got != a {
		t.Errorf("t=0 should yield first color, got %+v", got)
	}
	if got := lerpColor(a, b, 1); got != b {
		t.Errorf("t=1 should yield second color, got %+v", got)
	}
	if got := lerpColor(a, b, -3); got != a {
		t.Errorf("t below range should clamp to first color, got %+v", got)
	}
	mid := lerpColor(a, b, 0.5)
	if mid.R <= b.R || mid.R >= a.R {
		t.Errorf("midpoint red channel %d not between %d and %d", mid.R, b.R, a.R)
	}
}

func TestWithAlpha(t *testing.T) {
	c := inkColor

	if got := withAlpha(c, 1); got.A != 0xff {
		t.Errorf("full opacity should keep alpha, got %d", got.A)
	}
	if got := withAlpha(c, 0); got.A != 0 {
		t.Errorf("zero opacity should zero alpha, got %d", got.A)
	}
	if got := withAlpha(c, 0.5); got.A != 128 {
		t.Errorf("half opacity should halve alpha, got %d", got.A)
	}
	if got := withAlpha(c, 7); got.A != 0xff {
		t.Errorf("opacity above range should clamp, got %d", got.A)
	}
}
