package render

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/atelierlog/reportcard/internal/layout"
)

var (
	paperColor = color.NRGBA{R: 0xFA, G: 0xF7, B: 0xF2, A: 0xff}
	inkColor   = color.NRGBA{R: 0x2B, G: 0x2B, B: 0x2B, A: 0xff}
	mutedColor = color.NRGBA{R: 0x8A, G: 0x84, B: 0x7C, A: 0xff}
)

// drawBackground paints the paper fill and, when the gradient toggle is
// on, a vertical wash tinted by the shadow color fading to transparent.
func drawBackground(dc *gg.Context, vm layout.ViewModel) {
	dc.SetColor(paperColor)
	dc.Clear()

	if !vm.ShowGradient {
		return
	}

	w, h := float64(vm.Width), float64(vm.Height)
	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, withAlpha(vm.Shadow, 0.45))
	grad.AddColorStop(1, withAlpha(vm.Shadow, 0))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}
