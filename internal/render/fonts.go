package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the two embedded typefaces every template draws with.
// Faces are created per size; opentype faces are cheap and the compositor
// only needs a handful per render.
type FontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// LoadFonts parses the embedded Go Regular and Go Bold typefaces.
func LoadFonts() (*FontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse bold font: %w", err)
	}
	return &FontSet{regular: regular, bold: bold}, nil
}

func (f *FontSet) face(src *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Regular returns a regular face at the given point size.
func (f *FontSet) Regular(size float64) (font.Face, error) {
	return f.face(f.regular, size)
}

// Bold returns a bold face at the given point size.
func (f *FontSet) Bold(size float64) (font.Face, error) {
	return f.face(f.bold, size)
}
