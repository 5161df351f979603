// Package gallery is the client for the external artwork source. It covers
// the three consumed collaborator interfaces: the ordered artwork list,
// profile preferences (default display name), and the tag vocabulary.
package gallery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gallery is a client for the gallery API.
type Gallery struct {
	baseURL   string
	parsedURL *url.URL
	token     string
	client    *http.Client
}

// New creates a gallery client for the given base URL and bearer token.
func New(baseURL, token string) (*Gallery, error) {
	trimmed := strings.TrimRight(baseURL, "/")
	parsed, err := url.Parse(trimmed + "/api/v1")
	if err != nil {
		return nil, fmt.Errorf("invalid gallery URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("gallery URL must be http(s), got %q", baseURL)
	}

	return &Gallery{
		baseURL:   trimmed,
		parsedURL: parsed,
		token:     token,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Host returns the gallery host, used as the always-allowed asset origin.
func (g *Gallery) Host() string {
	return g.parsedURL.Host
}

// resolveURL builds a full URL from the base API URL and the endpoint path.
// A query string in the endpoint is preserved.
func (g *Gallery) resolveURL(endpoint string) string {
	path := endpoint
	query := ""
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		path, query = endpoint[:i], endpoint[i+1:]
	}
	full := g.parsedURL.JoinPath(path).String()
	if query != "" {
		full += "?" + query
	}
	return full
}

// GetArtworks fetches the artworks uploaded within [from, to], ordered as
// the gallery returns them. The order is significant: auto-fill tie-breaks
// preserve it.
func (g *Gallery) GetArtworks(ctx context.Context, from, to time.Time) ([]Artwork, error) {
	endpoint := fmt.Sprintf("artworks?from=%s&to=%s",
		url.QueryEscape(from.Format("2006-01-02")),
		url.QueryEscape(to.Format("2006-01-02")))

	resp, err := doGetJSON[artworksResponse](ctx, g, endpoint)
	if err != nil {
		return nil, fmt.Errorf("could not fetch artworks: %w", err)
	}
	return resp.Artworks, nil
}

// GetProfile fetches the user profile preferences.
func (g *Gallery) GetProfile(ctx context.Context) (*Profile, error) {
	profile, err := doGetJSON[Profile](ctx, g, "profile")
	if err != nil {
		return nil, fmt.Errorf("could not fetch profile: %w", err)
	}
	return profile, nil
}

// GetTagVocabulary fetches the tag vocabulary as an id-to-name map.
func (g *Gallery) GetTagVocabulary(ctx context.Context) (map[int]string, error) {
	resp, err := doGetJSON[tagsResponse](ctx, g, "tags")
	if err != nil {
		return nil, fmt.Errorf("could not fetch tag vocabulary: %w", err)
	}

	vocab := make(map[int]string, len(resp.Tags))
	for _, tag := range resp.Tags {
		vocab[tag.ID] = tag.Name
	}
	return vocab, nil
}
