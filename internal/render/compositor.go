package render

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/fogleman/gg"
	"github.com/atelierlog/reportcard/internal/layout"
)

// Compositor turns a view model plus resolved bitmaps into a finished
// canvas. It holds only the parsed typefaces; rendering is stateless and
// two calls with the same inputs produce identical pixels.
type Compositor struct {
	fonts *FontSet
}

// New creates a compositor with the embedded typefaces loaded.
func New() (*Compositor, error) {
	fonts, err := LoadFonts()
	if err != nil {
		return nil, fmt.Errorf("could not load fonts: %w", err)
	}
	return &Compositor{fonts: fonts}, nil
}

// Render draws the view model onto a fresh canvas. Bitmaps are looked up
// by artwork ID; cells whose bitmap is missing draw as placeholders, which
// keeps preview rendering usable while assets are still loading. The
// export pipeline guarantees completeness before calling Render.
func (c *Compositor) Render(vm layout.ViewModel, bitmaps map[string]image.Image) (*image.RGBA, error) {
	if vm.Width <= 0 || vm.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", vm.Width, vm.Height)
	}

	dc := gg.NewContext(vm.Width, vm.Height)
	drawBackground(dc, vm)

	bodyTop := c.drawHeader(dc, vm)
	bodyBottom := float64(vm.Height-vm.Margin) - footerReserve(vm)

	switch vm.Kind {
	case layout.KindMonthly:
		c.drawGridBody(dc, vm, bitmaps, bodyTop, bodyBottom, true)
	case layout.KindFourImage, layout.KindYearly:
		c.drawGridBody(dc, vm, bitmaps, bodyTop, bodyBottom, false)
	case layout.KindWeeklySingle:
		c.drawWeeklyBody(dc, vm, bitmaps, bodyTop, bodyBottom, 1)
	case layout.KindWeeklyDouble:
		c.drawWeeklyBody(dc, vm, bitmaps, bodyTop, bodyBottom, 2)
	case layout.KindTimeline:
		c.drawTimelineBody(dc, vm, bitmaps, bodyTop, bodyBottom)
	case layout.KindComparison:
		c.drawComparisonBody(dc, vm, bitmaps, bodyTop, bodyBottom)
	default:
		return nil, fmt.Errorf("unknown template kind %q", vm.Kind)
	}

	c.drawFooter(dc, vm)

	if rgba, ok := dc.Image().(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, vm.Width, vm.Height))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out, nil
}

// drawHeader draws the title, subtitle and period label and returns the
// y coordinate where the body starts.
func (c *Compositor) drawHeader(dc *gg.Context, vm layout.ViewModel) float64 {
	margin := float64(vm.Margin)
	maxW := float64(vm.Width) - 2*margin
	y := margin

	if vm.Title != "" {
		if face, err := c.fonts.Bold(54); err == nil {
			dc.SetFontFace(face)
			title := Ellipsize(face, vm.Title, maxW)
			if vm.ShowGradient {
				c.drawGradientString(dc, title, margin, y+48, vm)
			} else {
				dc.SetColor(vm.Accent)
				dc.DrawString(title, margin, y+48)
			}
		}
		y += 66
	}

	if vm.Subtitle != "" || vm.PeriodLabel != "" {
		if face, err := c.fonts.Regular(28); err == nil {
			dc.SetFontFace(face)
			right := 0.0
			if vm.PeriodLabel != "" {
				dc.SetColor(withAlpha(inkColor, vm.TextOpacity))
				right = MeasureWidth(face, vm.PeriodLabel)
				dc.DrawString(vm.PeriodLabel, margin+maxW-right, y+26)
			}
			if vm.Subtitle != "" {
				dc.SetColor(mutedColor)
				dc.DrawString(Ellipsize(face, vm.Subtitle, maxW-right-24), margin, y+26)
			}
		}
		y += 44
	}

	return y + 24
}

// drawGradientString renders the string one rune at a time, interpolating
// from the accent color to the shadow color across its width.
func (c *Compositor) drawGradientString(dc *gg.Context, s string, x, y float64, vm layout.ViewModel) {
	face, err := c.fonts.Bold(54)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	runes := []rune(s)
	pos := x
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		dc.SetColor(lerpColor(vm.Accent, vm.Shadow, t))
		glyph := string(r)
		dc.DrawString(glyph, pos, y)
		pos += MeasureWidth(face, glyph)
	}
}

// drawGridBody lays the cells out on a rows-by-columns grid. Calendar
// grids additionally draw day numbers; any cell stamp draws below it.
func (c *Compositor) drawGridBody(dc *gg.Context, vm layout.ViewModel, bitmaps map[string]image.Image, top, bottom float64, dayNumbers bool) {
	if vm.Rows == 0 || vm.Columns == 0 || len(vm.Cells) == 0 {
		return
	}

	margin := float64(vm.Margin)
	gap := float64(vm.CellGap)
	stampPad := 0.0
	for _, cell := range vm.Cells {
		if cell.Stamp != "" {
			stampPad = 30
			break
		}
	}

	cols, rows := float64(vm.Columns), float64(vm.Rows)
	cellW := (float64(vm.Width) - 2*margin - gap*(cols-1)) / cols
	cellH := (bottom - top - (gap+stampPad)*(rows-1) - stampPad) / rows

	for _, cell := range vm.Cells {
		row := cell.Index / vm.Columns
		col := cell.Index % vm.Columns
		x := margin + float64(col)*(cellW+gap)
		y := top + float64(row)*(cellH+gap+stampPad)

		if cell.Placeholder {
			c.drawPlaceholderCell(dc, x, y, cellW, cellH, vm.CornerRadius)
		} else {
			c.drawImageCell(dc, bitmaps[cell.ArtworkID], cell.Crop, x, y, cellW, cellH, vm.CornerRadius)
		}
		if dayNumbers {
			c.drawDayNumber(dc, cell.DayNumber, !cell.Placeholder, x, y)
		}
		c.drawStamp(dc, cell.Stamp, vm.TextOpacity, x, y+cellH, cellW)
	}
}

// drawWeeklyBody draws the hero band (one or two large cells, the most
// recent assignments) above a strip of the seven day cells.
func (c *Compositor) drawWeeklyBody(dc *gg.Context, vm layout.ViewModel, bitmaps map[string]image.Image, top, bottom float64, heroes int) {
	if len(vm.Cells) == 0 {
		return
	}

	margin := float64(vm.Margin)
	gap := float64(vm.CellGap)
	contentW := float64(vm.Width) - 2*margin

	stripH := (contentW - 6*gap) / 7
	stampPad := 30.0
	heroH := bottom - top - stripH - stampPad - 2*gap
	if heroH < stripH {
		heroH = stripH
	}

	// Latest assigned days fill the hero band; the full week strip keeps
	// its calendar positions underneath.
	var picked []layout.CellView
	for i := len(vm.Cells) - 1; i >= 0 && len(picked) < heroes; i-- {
		if !vm.Cells[i].Placeholder {
			picked = append(picked, vm.Cells[i])
		}
	}

	heroW := (contentW - gap*float64(heroes-1)) / float64(heroes)
	for i := 0; i < heroes; i++ {
		x := margin + float64(i)*(heroW+gap)
		if i < len(picked) {
			// picked is newest-first; draw oldest on the left.
			cell := picked[len(picked)-1-i]
			c.drawImageCell(dc, bitmaps[cell.ArtworkID], cell.Crop, x, top, heroW, heroH, vm.CornerRadius)
			c.drawStamp(dc, cell.Stamp, vm.TextOpacity, x, top+heroH, heroW)
		} else {
			c.drawPlaceholderCell(dc, x, top, heroW, heroH, vm.CornerRadius)
		}
	}

	stripTop := top + heroH + stampPad + gap
	for _, cell := range vm.Cells {
		if cell.Index >= 7 {
			break
		}
		x := margin + float64(cell.Index)*(stripH+gap)
		if cell.Placeholder {
			c.drawPlaceholderCell(dc, x, stripTop, stripH, stripH, vm.CornerRadius)
		} else {
			c.drawImageCell(dc, bitmaps[cell.ArtworkID], cell.Crop, x, stripTop, stripH, stripH, vm.CornerRadius)
		}
		c.drawDayNumber(dc, cell.DayNumber, !cell.Placeholder, x, stripTop)
	}
}

// drawTimelineBody draws one row per timeline entry: the image on the
// left, the date and offset labels beside it. With no datable entries the
// slots render as placeholder rows.
func (c *Compositor) drawTimelineBody(dc *gg.Context, vm layout.ViewModel, bitmaps map[string]image.Image, top, bottom float64) {
	margin := float64(vm.Margin)
	gap := float64(vm.CellGap)
	contentW := float64(vm.Width) - 2*margin

	rows := len(vm.Timeline)
	if rows == 0 {
		rows = len(vm.Cells)
	}
	if rows == 0 {
		return
	}
	rowH := (bottom - top - gap*float64(rows-1)) / float64(rows)
	cellW := rowH * 4 / 3
	if cellW > contentW/2 {
		cellW = contentW / 2
	}

	cropByID := make(map[string]*layout.CellView, len(vm.Cells))
	for i := range vm.Cells {
		if !vm.Cells[i].Placeholder {
			cropByID[vm.Cells[i].ArtworkID] = &vm.Cells[i]
		}
	}

	for i := 0; i < rows; i++ {
		y := top + float64(i)*(rowH+gap)
		if i >= len(vm.Timeline) {
			c.drawPlaceholderCell(dc, margin, y, cellW, rowH, vm.CornerRadius)
			continue
		}
		item := vm.Timeline[i]

		var crop *layout.CellView
		if cv, ok := cropByID[item.ArtworkID]; ok {
			crop = cv
		}
		if crop != nil {
			c.drawImageCell(dc, bitmaps[item.ArtworkID], crop.Crop, margin, y, cellW, rowH, vm.CornerRadius)
		} else {
			c.drawPlaceholderCell(dc, margin, y, cellW, rowH, vm.CornerRadius)
		}

		textX := margin + cellW + 2*gap
		if face, err := c.fonts.Bold(30); err == nil {
			dc.SetFontFace(face)
			dc.SetColor(inkColor)
			dc.DrawString(item.DateLabel, textX, y+rowH/2-6)
		}
		offsets := offsetLine(vm, item)
		if offsets != "" {
			if face, err := c.fonts.Regular(24); err == nil {
				dc.SetFontFace(face)
				dc.SetColor(withAlpha(mutedColor, vm.TextOpacity))
				dc.DrawString(Ellipsize(face, offsets, contentW-cellW-2*gap), textX, y+rowH/2+26)
			}
		}
	}
}

// offsetLine joins the enabled offset metrics for one timeline row. The
// anchor entry (all offsets zero) gets no line.
func offsetLine(vm layout.ViewModel, item layout.TimelineItem) string {
	var parts []string
	if vm.ShowDayOffsets && item.DaysOffset != 0 {
		parts = append(parts, plural(item.DaysOffset, "day"))
	}
	if vm.ShowImageOffsets && item.ImageOffset != 0 {
		parts = append(parts, plural(item.ImageOffset, "image"))
	}
	if vm.ShowDurationOffsets && item.DurationOffset != 0 {
		parts = append(parts, fmt.Sprintf("+%d min", item.DurationOffset))
	}
	return strings.Join(parts, " · ")
}

func plural(n int, unit string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%+d %s", n, unit)
	}
	return fmt.Sprintf("%+d %ss", n, unit)
}

// drawComparisonBody draws the before/after pair with their date labels
// and the centered delta line underneath.
func (c *Compositor) drawComparisonBody(dc *gg.Context, vm layout.ViewModel, bitmaps map[string]image.Image, top, bottom float64) {
	margin := float64(vm.Margin)
	gap := float64(vm.CellGap)
	contentW := float64(vm.Width) - 2*margin

	labelPad := 44.0
	deltaPad := 56.0
	cellW := (contentW - gap) / 2
	cellH := bottom - top - labelPad - deltaPad
	if cellH < 0 {
		cellH = bottom - top
	}

	for i := 0; i < 2; i++ {
		x := margin + float64(i)*(cellW+gap)
		if i < len(vm.Cells) && !vm.Cells[i].Placeholder {
			cell := vm.Cells[i]
			c.drawImageCell(dc, bitmaps[cell.ArtworkID], cell.Crop, x, top, cellW, cellH, vm.CornerRadius)
		} else {
			c.drawPlaceholderCell(dc, x, top, cellW, cellH, vm.CornerRadius)
		}
	}

	if vm.Comparison == nil {
		return
	}
	if face, err := c.fonts.Regular(26); err == nil {
		dc.SetFontFace(face)
		dc.SetColor(withAlpha(inkColor, vm.TextOpacity))
		dc.DrawStringAnchored(vm.Comparison.BeforeLabel, margin+cellW/2, top+cellH+12, 0.5, 1)
		dc.DrawStringAnchored(vm.Comparison.AfterLabel, margin+cellW+gap+cellW/2, top+cellH+12, 0.5, 1)
	}

	delta := comparisonLine(vm.Comparison)
	if delta == "" {
		return
	}
	if face, err := c.fonts.Bold(32); err == nil {
		dc.SetFontFace(face)
		dc.SetColor(vm.Accent)
		dc.DrawStringAnchored(delta, margin+contentW/2, top+cellH+labelPad+16, 0.5, 1)
	}
}

// comparisonLine summarizes the gap between the two picks, e.g.
// "60 days later · +1 h".
func comparisonLine(d *layout.ComparisonDelta) string {
	var parts []string
	if d.Days > 0 {
		parts = append(parts, fmt.Sprintf("%s later", strings.TrimPrefix(plural(d.Days, "day"), "+")))
	}
	if d.DurationMinutes != 0 {
		sign := "+"
		mins := d.DurationMinutes
		if mins < 0 {
			sign = "-"
			mins = -mins
		}
		if mins >= 60 && mins%60 == 0 {
			parts = append(parts, fmt.Sprintf("%s%d h", sign, mins/60))
		} else {
			parts = append(parts, fmt.Sprintf("%s%d min", sign, mins))
		}
	}
	return strings.Join(parts, " · ")
}

// footerReserve returns the vertical space held back for the footer band.
func footerReserve(vm layout.ViewModel) float64 {
	if vm.Username == "" && len(vm.Tags) == 0 {
		return 0
	}
	return 56
}

// drawFooter draws the username on the left and the tag badges packed on
// the right. Badges that do not fit are dropped whole.
func (c *Compositor) drawFooter(dc *gg.Context, vm layout.ViewModel) {
	if footerReserve(vm) == 0 {
		return
	}

	margin := float64(vm.Margin)
	contentW := float64(vm.Width) - 2*margin
	baseY := float64(vm.Height) - margin

	usedW := 0.0
	if vm.Username != "" {
		if face, err := c.fonts.Bold(26); err == nil {
			dc.SetFontFace(face)
			dc.SetColor(withAlpha(inkColor, vm.TextOpacity))
			name := "@" + vm.Username
			dc.DrawStringAnchored(name, margin, baseY, 0, 0.5)
			usedW = MeasureWidth(face, name) + 32
		}
	}

	if len(vm.Tags) == 0 {
		return
	}
	face, err := c.fonts.Regular(20)
	if err != nil {
		return
	}
	badges := PackBadges(face, vm.Tags, contentW-usedW, 10, 14)
	if len(badges) == 0 {
		return
	}
	total := badges[len(badges)-1].X + badges[len(badges)-1].Width
	startX := margin + contentW - total

	dc.SetFontFace(face)
	for _, b := range badges {
		x := startX + b.X
		dc.SetColor(withAlpha(vm.Accent, 0.15))
		dc.DrawRoundedRectangle(x, baseY-18, b.Width, 36, 18)
		dc.Fill()
		dc.SetColor(vm.Accent)
		dc.DrawStringAnchored(b.Text, x+b.Width/2, baseY, 0.5, 0.35)
	}
}
