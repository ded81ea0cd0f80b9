// Package results normalizes upstream live-results feeds into canonical game
// events. Several interchangeable sources are supported; each implements only
// the feed-specific extraction and emits the same GameEvent shape, so new
// feeds are added without touching the standings engine.
package results

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guttman/pickx/internal/domain/model"
)

// Source fetches today's completed games as canonical events.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Fetch returns today's completed games. A tie or an in-progress game
	// emits nothing; a malformed record is skipped, not fatal. Feed
	// unavailability is returned as an error wrapping ErrUnavailable so the
	// caller can degrade that cycle to empty results.
	Fetch(ctx context.Context) ([]model.GameEvent, error)
}

// Default HTTP client configuration constants.
const (
	defaultFetchTimeout = 15 * time.Second
	maxResponseBytes    = 8 << 20
)

// httpGet performs a bounded GET and returns the body, mapping transport and
// non-2xx failures to ErrUnavailable.
func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	return body, nil
}

const userAgent = "pickx-scoreboard/1.0"

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultFetchTimeout}
}
