// Package provider holds the concrete media capability clients: a curated
// catalog lookup over an OAuth2 client-credentials API and an on-demand
// audio synthesizer. Both are process-wide, read-only after construction,
// and safe for concurrent use.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/soulsync-ai/soulsync/internal/media"
	"github.com/soulsync-ai/soulsync/internal/taxonomy"
)

// CatalogConfig configures the curated catalog client.
type CatalogConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Catalog fetches 30-second audio previews from a track catalog using the
// client-credentials flow. Requests run through a circuit breaker so a
// flapping catalog degrades to fast provider-unavailable errors instead of
// piling up timed-out calls.
type Catalog struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
}

// NewCatalog builds a Catalog. Returns media.ErrUnavailable when the
// credentials are not configured, so callers can wire a nil capability.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("catalog credentials not set: %w", media.ErrUnavailable)
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "curated-catalog",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
		// An empty catalog result is a normal outcome, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, media.ErrNoPreview)
		},
	})

	return &Catalog{
		baseURL: cfg.BaseURL,
		client:  cc.Client(context.Background()),
		breaker: breaker,
	}, nil
}

// searchResponse mirrors the catalog's track search payload.
type searchResponse struct {
	Tracks struct {
		Items []struct {
			PreviewURL   string `json:"preview_url"`
			ExternalURLs struct {
				Page string `json:"page"`
			} `json:"external_urls"`
		} `json:"items"`
	} `json:"tracks"`
}

// FetchPreview searches the catalog for the emotion's query and returns the
// first playable preview URL. A track page URL is an acceptable fallback
// when no item carries a preview; an empty result set is media.ErrNoPreview.
func (c *Catalog) FetchPreview(ctx context.Context, emotion taxonomy.Label) (string, error) {
	preview, err := c.breaker.Execute(func() (string, error) {
		return c.search(ctx, media.QueryFor(emotion))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("catalog circuit open: %w", media.ErrUnavailable)
	}
	return preview, err
}

func (c *Catalog) search(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalog search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("catalog search: status %d: %s", resp.StatusCode, body)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	// Prefer items with a direct preview URL.
	for _, item := range sr.Tracks.Items {
		if item.PreviewURL != "" {
			return item.PreviewURL, nil
		}
	}
	// Fall back to the first track's page URL.
	if len(sr.Tracks.Items) > 0 && sr.Tracks.Items[0].ExternalURLs.Page != "" {
		return sr.Tracks.Items[0].ExternalURLs.Page, nil
	}

	return "", media.ErrNoPreview
}
