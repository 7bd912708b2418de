// Package catalog downloads the TLE catalog of active satellites and stores
// it next to the visualization.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/pelageech/browsergator/config"
)

var (
	// ErrEmptyResponse is returned when the endpoint answers with no data.
	ErrEmptyResponse = errors.New("empty response body")

	// ErrDecode is returned when the body is not UTF-8 text.
	ErrDecode = errors.New("response body is not valid UTF-8")
)

// NetworkError represents a failed request: transport failure or an HTTP
// error status.
type NetworkError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("GET %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("GET %s: HTTP status %d", e.URL, e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Fetcher downloads the catalog text.
type Fetcher struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewFetcher creates a Fetcher for the URL and headers of cfg.
func NewFetcher(cfg *config.UpdaterConfig) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
	}
}

// URL returns the address the catalog is downloaded from.
func (f *Fetcher) URL() string {
	return f.url
}

// Download performs a single GET of the catalog. There is no retry.
func (f *Fetcher) Download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", &NetworkError{URL: f.url, Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: f.url, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if !utf8.Valid(body) {
		return "", ErrDecode
	}
	if len(body) == 0 {
		return "", ErrEmptyResponse
	}

	return string(body), nil
}
