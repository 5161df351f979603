package render

import (
	"image/color"

	"golang.org/x/image/font"
)

// Ellipsis is the truncation glyph single-line fields end in when they
// do not fit their box.
const Ellipsis = "…"

// MeasureWidth returns the advance width of s in pixels for the face.
func MeasureWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// Ellipsize truncates s so its measured width fits maxWidth, appending
// the ellipsis glyph. The cut point is found by binary search on the
// measured width of prefix+ellipsis. Strings that already fit come back
// unchanged; a box too narrow for any prefix yields the bare ellipsis.
func Ellipsize(face font.Face, s string, maxWidth float64) string {
	if s == "" || MeasureWidth(face, s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	// Largest prefix length whose width with the ellipsis still fits.
	lo, hi := 0, len(runes)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if MeasureWidth(face, string(runes[:mid])+Ellipsis) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + Ellipsis
}

// Badge is one packed tag badge: an x offset relative to the row start
// and the full badge width including horizontal padding.
type Badge struct {
	Text  string
	X     float64
	Width float64
}

// PackBadges lays tags out left to right with a fixed gap, stopping
// before the first badge that would overflow maxWidth. Badges are never
// partially drawn.
func PackBadges(face font.Face, tags []string, maxWidth, gap, padX float64) []Badge {
	var out []Badge
	x := 0.0
	for _, tag := range tags {
		w := MeasureWidth(face, tag) + 2*padX
		if x+w > maxWidth {
			break
		}
		out = append(out, Badge{Text: tag, X: x, Width: w})
		x += w + gap
	}
	return out
}

// lerpColor interpolates two colors componentwise; t is clamped to [0,1].
func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}

// withAlpha scales a color's alpha by opacity in [0,1].
func withAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}
