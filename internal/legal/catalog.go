// ABOUTME: Legal document catalog abstraction with static and HTTP implementations
// ABOUTME: Searches acts by text, type and issue date and fetches their source bytes

package legal

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/2389/docket/internal/errs"
)

// ErrUnavailable is returned when the catalog or a source URL cannot be reached.
var ErrUnavailable = errors.New("legal catalog unavailable")

// Entry is one act listed by a catalog.
type Entry struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	SourceURL    string    `json:"sourceUrl"`
	DocumentType string    `json:"documentType,omitempty"`
	IssuedAt     time.Time `json:"issuedAt,omitzero"`
}

// Query selects catalog entries. Zero fields match everything.
type Query struct {
	Text         string
	DocumentType string
	IssuedAfter  time.Time
	IssuedBefore time.Time
}

// Matches reports whether e satisfies q. Text matches case-insensitively
// against title and description. Date bounds are inclusive.
func (q Query) Matches(e Entry) bool {
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		if !strings.Contains(strings.ToLower(e.Title), text) &&
			!strings.Contains(strings.ToLower(e.Description), text) {
			return false
		}
	}
	if q.DocumentType != "" && !strings.EqualFold(q.DocumentType, e.DocumentType) {
		return false
	}
	if !q.IssuedAfter.IsZero() && e.IssuedAt.Before(q.IssuedAfter) {
		return false
	}
	if !q.IssuedBefore.IsZero() && e.IssuedAt.After(q.IssuedBefore) {
		return false
	}
	return true
}

// Source is the fetched body of an act.
type Source struct {
	Data        []byte
	ContentType string
}

// Catalog searches an external registry of legal acts and fetches their sources.
type Catalog interface {
	Search(ctx context.Context, q Query) ([]Entry, error)
	Fetch(ctx context.Context, sourceURL string) (*Source, error)
}

// ValidateSourceURL accepts absolute http and https URLs only.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return errors.New("source URL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("source URL must use http or https")
	}
	return nil
}

// StaticCatalog serves a fixed list of entries. Fetch is delegated so that
// imports still download real bytes, and only URLs listed in the catalog are
// ever requested.
type StaticCatalog struct {
	entries []Entry
	fetcher *HTTPCatalog
}

// NewStaticCatalog returns a catalog over entries. A nil fetcher disables Fetch.
func NewStaticCatalog(entries []Entry, fetcher *HTTPCatalog) *StaticCatalog {
	return &StaticCatalog{entries: slices.Clone(entries), fetcher: fetcher}
}

// Search returns the entries matching q in catalog order.
func (c *StaticCatalog) Search(ctx context.Context, q Query) ([]Entry, error) {
	out := []Entry{}
	for _, e := range c.entries {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Fetch downloads sourceURL through the configured fetcher. URLs that no
// entry lists are rejected before any request is made.
func (c *StaticCatalog) Fetch(ctx context.Context, sourceURL string) (*Source, error) {
	if !c.Lists(sourceURL) {
		return nil, errs.Validation("source URL is not listed in the legal catalog")
	}
	if c.fetcher == nil {
		return nil, ErrUnavailable
	}
	return c.fetcher.Fetch(ctx, sourceURL)
}

// Lists reports whether some entry has exactly sourceURL as its source.
func (c *StaticCatalog) Lists(sourceURL string) bool {
	return slices.ContainsFunc(c.entries, func(e Entry) bool {
		return e.SourceURL == sourceURL
	})
}

// DefaultEntries is the built-in catalog of federal banking acts.
var DefaultEntries = []Entry{
	{
		Title:        "Federal Law No. 395-1",
		Description:  "On Banks and Banking Activity",
		SourceURL:    "https://pravo.gov.ru/proxy/ips/?doc_itself=&nd=102010268",
		DocumentType: "FEDERAL_LAW",
		IssuedAt:     time.Date(1990, 12, 2, 0, 0, 0, 0, time.UTC),
	},
	{
		Title:        "Federal Law No. 86-FZ",
		Description:  "On the Central Bank of the Russian Federation (Bank of Russia)",
		SourceURL:    "https://pravo.gov.ru/proxy/ips/?doc_itself=&nd=102076584",
		DocumentType: "FEDERAL_LAW",
		IssuedAt:     time.Date(2002, 7, 10, 0, 0, 0, 0, time.UTC),
	},
	{
		Title:        "Federal Law No. 173-FZ",
		Description:  "On Currency Regulation and Currency Control",
		SourceURL:    "https://pravo.gov.ru/proxy/ips/?doc_itself=&nd=102084008",
		DocumentType: "FEDERAL_LAW",
		IssuedAt:     time.Date(2003, 12, 10, 0, 0, 0, 0, time.UTC),
	},
}
