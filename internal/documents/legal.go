// ABOUTME: Legal catalog search and import into the document workflow
// ABOUTME: Imported acts become DRAFT documents with the fetched source attached

package documents

import (
	"context"
	"errors"
	"strings"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/legal"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

// ImportedDescriptionPrefix starts the description of an imported act when
// the caller supplies none.
const ImportedDescriptionPrefix = "Legal act imported from external source: "

// ImportInput holds the fields of an ImportLegalDocument request.
type ImportInput struct {
	SourceURL   string
	Title       string
	Description string
	Department  string
}

// SearchLegalDocuments queries the configured catalog.
func (s *Service) SearchLegalDocuments(ctx context.Context, p *auth.Principal, q legal.Query) ([]legal.Entry, error) {
	if err := s.authorize(p, policy.OpSearchLegalDocuments, policy.Resource{}); err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return []legal.Entry{}, nil
	}
	if !q.IssuedAfter.IsZero() && !q.IssuedBefore.IsZero() && q.IssuedAfter.After(q.IssuedBefore) {
		return nil, errs.Validation("issuedAfter must not be later than issuedBefore")
	}

	entries, err := s.catalog.Search(ctx, q)
	if err != nil {
		return nil, errs.Internal("searching legal catalog", err)
	}
	return entries, nil
}

// ImportLegalDocument fetches an act from the catalog and creates a DRAFT
// document for it, authored by p.
func (s *Service) ImportLegalDocument(ctx context.Context, p *auth.Principal, in ImportInput) (*store.Document, error) {
	if err := s.authorize(p, policy.OpImportLegalDocument, policy.Resource{}); err != nil {
		return nil, err
	}

	sourceURL := strings.TrimSpace(in.SourceURL)
	if err := legal.ValidateSourceURL(sourceURL); err != nil {
		return nil, errs.Validation("%v", err)
	}
	title, err := requiredText("title", in.Title, MaxTitleLength)
	if err != nil {
		return nil, err
	}
	department, err := requiredText("department", in.Department, MaxDepartmentLength)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = ImportedDescriptionPrefix + sourceURL
	}
	description, err = optionalText("description", description, MaxDescriptionLength)
	if err != nil {
		return nil, err
	}
	if s.catalog == nil || s.files == nil {
		return nil, errs.Validation("legal document import is not enabled")
	}

	src, err := s.catalog.Fetch(ctx, sourceURL)
	if err != nil {
		if errs.KindOf(err) == errs.KindValidation {
			return nil, err
		}
		if errors.Is(err, legal.ErrUnavailable) {
			s.logger.Warn("legal source unavailable", "source_url", sourceURL, "error", err)
		}
		return nil, errs.Internal("fetching legal document", err)
	}

	contentType := src.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	ref, err := s.files.Save(ctx, title+".pdf", contentType, src.Data)
	if err != nil {
		return nil, err
	}

	doc, _, err := s.engine.Create(ctx, p, workflow.Draft{
		Title:       title,
		Description: description,
		Department:  department,
		File:        ref,
		SourceURL:   sourceURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendAuditLog(ctx, &store.AuditEntry{
		ActorID:    p.ID,
		Action:     store.AuditImportLegalDocument,
		TargetType: "document",
		TargetID:   doc.ID,
		Detail:     map[string]any{"source_url": sourceURL},
	}); err != nil {
		s.logger.Error("failed to append audit log", "action", store.AuditImportLegalDocument, "error", err)
	}
	return doc, nil
}
