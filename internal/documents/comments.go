// ABOUTME: Free-text comments on documents, independent of status transitions
// ABOUTME: Text is trimmed, non-blank, and at most 1000 characters

package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
)

// AddComment attaches text to a document on behalf of p.
func (s *Service) AddComment(ctx context.Context, p *auth.Principal, documentID, text string) (*store.Comment, error) {
	if err := s.authorize(p, policy.OpAddComment, policy.Resource{}); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, errs.Validation("document id is required")
	}
	text, err := requiredText("comment text", text, MaxCommentLength)
	if err != nil {
		return nil, err
	}

	c := &store.Comment{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		UserID:     p.ID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AddComment(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.NotFound("document not found")
		}
		return nil, errs.Internal("adding comment", err)
	}
	return c, nil
}
