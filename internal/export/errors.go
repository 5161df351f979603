package export

import (
	"errors"
	"fmt"
)

var (
	// ErrExportTimeout means the asset phase did not finish within the
	// configured export deadline.
	ErrExportTimeout = errors.New("export timed out while loading images")

	// ErrCrossOrigin means an image URL points at a host outside the
	// gallery and the configured allowlist. Such hosts would poison the
	// canvas, so they are rejected before any bytes are fetched.
	ErrCrossOrigin = errors.New("image host is not allowed")
)

// AssetKind classifies why a single asset failed to resolve.
type AssetKind string

const (
	AssetNetwork     AssetKind = "network"
	AssetDecode      AssetKind = "decode"
	AssetCrossOrigin AssetKind = "cross-origin"
	AssetTimeout     AssetKind = "timeout"
)

// AssetError carries the failing artwork and the failure class so callers
// can tell a flaky network apart from a blocked host or a broken file.
type AssetError struct {
	ArtworkID string
	URL       string
	Kind      AssetKind
	Err       error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s (%s): %v", e.ArtworkID, e.Kind, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
