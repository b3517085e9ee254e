package webtools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/firescout/firescout/internal/config"
)

// maxFetchBytes caps response bodies so a single page cannot blow up
// the conversation payload.
const maxFetchBytes = 5 << 20

const userAgent = "firescout/1.0 (+https://github.com/firescout/firescout)"

// fetcher is the shared HTTP layer for the scrape and links tools.
type fetcher struct {
	client *http.Client
}

func newFetcher(cfg config.WebToolsConfig) *fetcher {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// get fetches a URL and returns its body, capped at maxFetchBytes.
// Only http and https schemes are accepted.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, *url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("fetching %s: status %d", u, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "text") {
		return nil, nil, fmt.Errorf("fetching %s: unsupported content type %q", u, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", u, err)
	}
	return body, u, nil
}
