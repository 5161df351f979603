package layout

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/atelierlog/reportcard/internal/session"
)

// ParseHexColor parses "#RGB" or "#RRGGBB" into an opaque NRGBA.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// HSLToRGB converts hue (degrees), saturation and lightness (0-1) to an
// opaque NRGBA.
func HSLToRGB(h, s, l float64) color.NRGBA {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	s = clamp01(s)
	l = clamp01(l)

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 0xff,
	}
}

// ShadowColor converts the style's HSL shadow sliders plus opacity to the
// NRGBA the gradient tint uses.
func ShadowColor(style session.StyleSettings) color.NRGBA {
	c := HSLToRGB(style.ShadowHue, style.ShadowSaturation, style.ShadowLightness)
	c.A = uint8(math.Round(clamp01(style.ShadowOpacity) * 255))
	return c
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
