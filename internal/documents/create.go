// ABOUTME: Document creation with optional attachment and client request idempotency
// ABOUTME: A repeated request ID from the same principal returns the original document

package documents

import (
	"context"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/dedupe"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

// CreateInput holds the fields of a CreateDocument request.
type CreateInput struct {
	Title       string
	Description string
	Department  string
	FileName    string
	FileType    string
	FileContent []byte
	// RequestID is an optional client-chosen key. Retrying with the same key
	// within the idempotency window returns the first result.
	RequestID string
}

// CreateDocument creates a DRAFT document authored by p.
func (s *Service) CreateDocument(ctx context.Context, p *auth.Principal, in CreateInput) (*store.Document, error) {
	if err := s.authorize(p, policy.OpCreateDocument, policy.Resource{}); err != nil {
		return nil, err
	}

	draft, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}

	if in.RequestID == "" || s.requests == nil {
		return s.create(ctx, p, draft, in)
	}

	key := p.ID + "\x00" + in.RequestID
	id, state := s.requests.Claim(key)
	switch state {
	case dedupe.Done:
		s.logger.Debug("replaying create", "request_id", in.RequestID, "document_id", id)
		return s.loadDocument(ctx, id)
	case dedupe.InFlight:
		return nil, errs.Conflict("a request with this id is already in progress")
	}

	doc, err := s.create(ctx, p, draft, in)
	if err != nil {
		s.requests.Release(key)
		return nil, err
	}
	s.requests.Complete(key, doc.ID)
	return doc, nil
}

func (s *Service) validateCreate(in CreateInput) (workflow.Draft, error) {
	title, err := requiredText("title", in.Title, MaxTitleLength)
	if err != nil {
		return workflow.Draft{}, err
	}
	department, err := requiredText("department", in.Department, MaxDepartmentLength)
	if err != nil {
		return workflow.Draft{}, err
	}
	description, err := optionalText("description", in.Description, MaxDescriptionLength)
	if err != nil {
		return workflow.Draft{}, err
	}
	if len(in.FileContent) > 0 {
		if s.files == nil {
			return workflow.Draft{}, errs.Validation("file attachments are not enabled")
		}
		if limit := s.files.MaxSize(); limit > 0 && int64(len(in.FileContent)) > limit {
			return workflow.Draft{}, errs.Validation("file exceeds maximum size of %d bytes", limit)
		}
	}
	return workflow.Draft{Title: title, Description: description, Department: department}, nil
}

// create stores the attachment, if any, and hands the draft to the engine.
func (s *Service) create(ctx context.Context, p *auth.Principal, draft workflow.Draft, in CreateInput) (*store.Document, error) {
	if len(in.FileContent) > 0 {
		ref, err := s.files.Save(ctx, in.FileName, in.FileType, in.FileContent)
		if err != nil {
			return nil, err
		}
		draft.File = ref
	}

	doc, _, err := s.engine.Create(ctx, p, draft)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
