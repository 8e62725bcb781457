// ABOUTME: Paged document listing with optional status and department filters
// ABOUTME: Pages are zero-based; size defaults to 10 and is capped at 100

package documents

import (
	"context"
	"strings"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
)

// ListFilter narrows a listing. Empty fields match everything.
type ListFilter struct {
	Status     string
	Department string
}

// Page is one page of a listing.
type Page struct {
	Documents     []*store.Document
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// ListDocuments returns page number page of the documents matching filter,
// newest first.
func (s *Service) ListDocuments(ctx context.Context, p *auth.Principal, filter ListFilter, page, size int) (*Page, error) {
	if err := s.authorize(p, policy.OpListDocuments, policy.Resource{}); err != nil {
		return nil, err
	}

	f := store.DocumentFilter{Department: strings.TrimSpace(filter.Department)}
	if filter.Status != "" {
		status, err := store.ParseStatus(filter.Status)
		if err != nil {
			return nil, errs.Validation("unknown status %q", filter.Status)
		}
		f.Status = status
	}

	if page < 0 {
		return nil, errs.Validation("page must not be negative")
	}
	switch {
	case size < 0:
		return nil, errs.Validation("size must not be negative")
	case size == 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	f.Limit = size
	f.Offset = page * size

	docs, total, err := s.store.ListDocuments(ctx, f)
	if err != nil {
		return nil, errs.Internal("listing documents", err)
	}

	return &Page{
		Documents:     docs,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}, nil
}
