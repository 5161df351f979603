package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atelierlog/reportcard/internal/config"
	"github.com/atelierlog/reportcard/internal/layout"
	"github.com/atelierlog/reportcard/internal/session"
)

// AssetRef names one image to fetch for a render.
type AssetRef struct {
	ArtworkID string
	URL       string
}

// Resolver fetches and decodes artwork bitmaps with a bounded worker pool.
// Hosts other than the gallery and the configured allowlist are rejected
// without a request.
type Resolver struct {
	client      *http.Client
	allowed     map[string]bool
	concurrency int
	timeout     time.Duration

	// OnProgress, when set, is called after each asset resolves (or fails)
	// with the completed and total counts.
	OnProgress func(done, total int)
}

// NewResolver builds a resolver from the export config. galleryHost is the
// host of the gallery base URL and is always allowed.
func NewResolver(cfg config.ExportConfig, galleryHost string) *Resolver {
	// The allowlist matches on hostname only; ports vary between the API
	// base URL and asset URLs on the same box.
	allowed := make(map[string]bool, len(cfg.AllowedImageHosts)+1)
	if galleryHost != "" {
		allowed[hostOnly(strings.ToLower(galleryHost))] = true
	}
	for _, host := range cfg.AllowedImageHosts {
		allowed[hostOnly(strings.ToLower(host))] = true
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	timeout := time.Duration(cfg.FetchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Resolver{
		client:      &http.Client{},
		allowed:     allowed,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// AssetsFor collects the distinct assets a view model needs, resolving
// artwork IDs to image URLs through the session.
func AssetsFor(vm layout.ViewModel, s *session.Session) []AssetRef {
	seen := make(map[string]bool)
	var refs []AssetRef
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		if art, ok := s.Artwork(id); ok {
			refs = append(refs, AssetRef{ArtworkID: id, URL: art.ImageURL})
		}
	}
	for _, cell := range vm.Cells {
		if !cell.Placeholder {
			add(cell.ArtworkID)
		}
	}
	return refs
}

// Resolve fetches every asset or fails. The first error wins, in-flight
// fetches are canceled, and no partial bitmap set is returned: the caller
// either composites a complete card or nothing.
func (r *Resolver) Resolve(ctx context.Context, refs []AssetRef) (map[string]image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bitmaps := make(map[string]image.Image, len(refs))
	var mu sync.Mutex
	var done int

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, ref := range refs {
		ref := ref // capture
		g.Go(func() error {
			img, err := r.fetchOne(ctx, ref)
			mu.Lock()
			done++
			progress := done
			if err == nil {
				bitmaps[ref.ArtworkID] = img
			}
			mu.Unlock()
			if r.OnProgress != nil {
				r.OnProgress(progress, len(refs))
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bitmaps, nil
}

// ResolveAvailable is the preview variant: per-asset failures are skipped
// and whatever decoded is returned. Only context cancellation aborts.
func (r *Resolver) ResolveAvailable(ctx context.Context, refs []AssetRef) (map[string]image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bitmaps := make(map[string]image.Image, len(refs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, ref := range refs {
		ref := ref // capture
		g.Go(func() error {
			img, err := r.fetchOne(ctx, ref)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			mu.Lock()
			bitmaps[ref.ArtworkID] = img
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bitmaps, nil
}

func (r *Resolver) fetchOne(ctx context.Context, ref AssetRef) (image.Image, error) {
	parsed, err := url.Parse(ref.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetNetwork,
			Err: fmt.Errorf("invalid image URL %q", ref.URL)}
	}
	if !r.allowed[strings.ToLower(parsed.Hostname())] {
		return nil, &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetCrossOrigin,
			Err: ErrCrossOrigin}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetNetwork, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, r.classifyTransportError(ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetNetwork,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, r.classifyTransportError(ref, err)
		}
		return nil, &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetDecode, Err: err}
	}
	return img, nil
}

func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func (r *Resolver) classifyTransportError(ref AssetRef, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetTimeout,
			Err: ErrExportTimeout}
	}
	return &AssetError{ArtworkID: ref.ArtworkID, URL: ref.URL, Kind: AssetNetwork, Err: err}
}
