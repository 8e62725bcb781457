// ABOUTME: HTTP-backed legal catalog client
// ABOUTME: Queries a JSON search endpoint and downloads act sources with size and time limits

package legal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/docket/internal/errs"
)

// HTTPCatalog talks to a catalog service exposing GET <base>/search.
type HTTPCatalog struct {
	baseURL  string
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTPCatalog creates a client for baseURL. maxBytes bounds a single
// fetched source; zero means unlimited.
func NewHTTPCatalog(baseURL string, timeout time.Duration, maxBytes int64, logger *slog.Logger) *HTTPCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPCatalog{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger.With("component", "legal"),
	}
}

type searchResponse struct {
	Documents []Entry `json:"documents"`
}

// Search queries the remote catalog. Results are filtered locally as well,
// so a catalog that ignores some parameters still honors q.
func (c *HTTPCatalog) Search(ctx context.Context, q Query) ([]Entry, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}

	params := url.Values{}
	if q.Text != "" {
		params.Set("q", q.Text)
	}
	if q.DocumentType != "" {
		params.Set("type", q.DocumentType)
	}
	if !q.IssuedAfter.IsZero() {
		params.Set("issuedAfter", q.IssuedAfter.Format(time.DateOnly))
	}
	if !q.IssuedBefore.IsZero() {
		params.Set("issuedBefore", q.IssuedBefore.Format(time.DateOnly))
	}

	endpoint := c.baseURL + "/search"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", ErrUnavailable, err)
	}

	out := []Entry{}
	for _, e := range body.Documents {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Fetch downloads sourceURL.
func (c *HTTPCatalog) Fetch(ctx context.Context, sourceURL string) (*Source, error) {
	if err := ValidateSourceURL(sourceURL); err != nil {
		return nil, errs.Validation("%v", err)
	}

	resp, err := c.get(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, sourceURL, err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, errs.Validation("source document exceeds maximum size of %d bytes", c.maxBytes)
	}

	return &Source{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func (c *HTTPCatalog) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", "url", target, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.logger.Warn("catalog returned error status", "url", target, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, target, resp.StatusCode)
	}
	return resp, nil
}
