package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/layout"
	"github.com/atelierlog/reportcard/internal/render"
	"github.com/atelierlog/reportcard/internal/session"
)

// Pipeline produces finished PNG bytes from a view model. Export runs in
// two phases: every referenced asset must resolve before a single pixel is
// drawn, so a failed export never yields a partial card.
type Pipeline struct {
	resolver     *Resolver
	compositor   *render.Compositor
	previewScale float64
}

// NewPipeline wires a resolver and compositor from the export config.
func NewPipeline(cfg config.ExportConfig, galleryHost string) (*Pipeline, error) {
	compositor, err := render.New()
	if err != nil {
		return nil, err
	}

	scale := cfg.PreviewScale
	if scale <= 0 || scale > 1 {
		scale = 0.5
	}

	return &Pipeline{
		resolver:     NewResolver(cfg, galleryHost),
		compositor:   compositor,
		previewScale: scale,
	}, nil
}

// Resolver exposes the asset resolver, mainly so callers can attach a
// progress callback.
func (p *Pipeline) Resolver() *Resolver {
	return p.resolver
}

// Export renders the card at full resolution and encodes it as PNG. Any
// asset failure aborts before rendering and no bytes are returned.
func (p *Pipeline) Export(ctx context.Context, vm layout.ViewModel, s *session.Session) ([]byte, error) {
	refs := AssetsFor(vm, s)

	bitmaps, err := p.resolver.Resolve(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("asset resolution failed: %w", err)
	}

	img, err := p.compositor.Render(vm, bitmaps)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview renders a downscaled card on a best-effort basis: assets that
// fail to load draw as placeholders instead of failing the whole render.
func (p *Pipeline) Preview(ctx context.Context, vm layout.ViewModel, s *session.Session) ([]byte, error) {
	refs := AssetsFor(vm, s)

	bitmaps, err := p.resolver.ResolveAvailable(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("preview asset resolution failed: %w", err)
	}

	img, err := p.compositor.Render(vm, bitmaps)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	w := int(float64(vm.Width)*p.previewScale + 0.5)
	small := imaging.Resize(img, w, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
