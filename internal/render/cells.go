package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/atelierlog/reportcard/internal/session"
)

// fitCell prepares a source bitmap for a cell. A contained crop rectangle
// blits exactly that region scaled to the cell; anything else cover-fits:
// scale = max(cellW/srcW, cellH/srcH), centered, edges cropped.
func fitCell(src image.Image, crop *session.CropRect, w, h int) image.Image {
	if crop != nil && crop.In(src.Bounds()) {
		region := imaging.Crop(src, crop.Rect())
		return imaging.Resize(region, w, h, imaging.Lanczos)
	}
	return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
}

// drawImageCell draws a bitmap clipped to a rounded rectangle. A nil
// bitmap falls through to the placeholder pattern.
func (c *Compositor) drawImageCell(dc *gg.Context, img image.Image, crop *session.CropRect, x, y, w, h, radius float64) {
	if img == nil {
		c.drawPlaceholderCell(dc, x, y, w, h, radius)
		return
	}

	fitted := fitCell(img, crop, int(w+0.5), int(h+0.5))

	dc.Push()
	dc.DrawRoundedRectangle(x, y, w, h, radius)
	dc.Clip()
	dc.DrawImage(fitted, int(x+0.5), int(y+0.5))
	dc.ResetClip()
	dc.Pop()
}

// drawPlaceholderCell draws the dashed-border pattern used both for
// calendar padding and for assigned-but-unresolved cells: a faint fill,
// a dashed rounded border, and a faint diagonal watermark glyph.
func (c *Compositor) drawPlaceholderCell(dc *gg.Context, x, y, w, h, radius float64) {
	dc.Push()

	dc.SetColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x0a})
	dc.DrawRoundedRectangle(x, y, w, h, radius)
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 0x9a, G: 0x93, B: 0x8c, A: 0xb0})
	dc.SetLineWidth(2)
	dc.SetDash(6, 6)
	dc.DrawRoundedRectangle(x+1, y+1, w-2, h-2, radius)
	dc.Stroke()
	dc.SetDash()

	// Watermark glyph, rotated onto the cell diagonal.
	size := w
	if h < w {
		size = h
	}
	if face, err := c.fonts.Regular(size * 0.5); err == nil {
		cx, cy := x+w/2, y+h/2
		dc.SetFontFace(face)
		dc.SetColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x14})
		dc.RotateAbout(-0.5, cx, cy)
		dc.DrawStringAnchored("×", cx, cy, 0.5, 0.35)
	}

	dc.Pop()
}

// drawDayNumber labels a calendar cell with its day of month. Assigned
// cells get a light number over the image; empty days a muted one.
func (c *Compositor) drawDayNumber(dc *gg.Context, day int, assigned bool, x, y float64) {
	if day == 0 {
		return
	}
	face, err := c.fonts.Bold(22)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	if assigned {
		dc.SetColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x66})
		dc.DrawStringAnchored(numString(day), x+13, y+13, 0, 0.5)
		dc.SetColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xf0})
	} else {
		dc.SetColor(color.NRGBA{R: 0x9a, G: 0x93, B: 0x8c, A: 0xff})
	}
	dc.DrawStringAnchored(numString(day), x+12, y+12, 0, 0.5)
}

// drawStamp draws the date/duration stamp right-aligned below a cell,
// honoring the text opacity. An empty stamp draws nothing.
func (c *Compositor) drawStamp(dc *gg.Context, stamp string, opacity float64, x, y, w float64) {
	if stamp == "" {
		return
	}
	face, err := c.fonts.Regular(20)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(withAlpha(inkColor, opacity))
	dc.DrawStringAnchored(Ellipsize(face, stamp, w), x+w, y+6, 1, 1)
}

func numString(n int) string {
	if n < 0 {
		n = 0
	}
	// Day numbers stay below 32; avoid strconv import churn in hot path.
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
