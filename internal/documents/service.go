// ABOUTME: Document workflow service exposing the public document operations
// ABOUTME: Every call authorizes the principal before touching the store, engine or collaborators

package documents

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/docket/internal/audit"
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/dedupe"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/filestore"
	"github.com/2389/docket/internal/legal"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
	"github.com/2389/docket/internal/workflow"
)

// Deps are the collaborators a Service needs. Catalog and Requests may be
// nil; Files may be nil when attachments are disabled.
type Deps struct {
	Store    store.Store
	Engine   *workflow.Engine
	Trail    *audit.Trail
	Policy   *policy.Policy
	Files    *filestore.Store
	Catalog  legal.Catalog
	Requests *dedupe.Cache
	Logger   *slog.Logger
}

// Service implements the document operations.
type Service struct {
	store    store.Store
	engine   *workflow.Engine
	trail    *audit.Trail
	policy   *policy.Policy
	files    *filestore.Store
	catalog  legal.Catalog
	requests *dedupe.Cache
	logger   *slog.Logger
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    deps.Store,
		engine:   deps.Engine,
		trail:    deps.Trail,
		policy:   deps.Policy,
		files:    deps.Files,
		catalog:  deps.Catalog,
		requests: deps.Requests,
		logger:   logger.With("component", "documents"),
	}
}

// Details is a document with its full history and comments.
type Details struct {
	Document *store.Document
	History  []*store.HistoryEntry
	Comments []*store.Comment
}

// authorize rejects a missing principal as Unauthenticated and otherwise
// defers to the policy.
func (s *Service) authorize(p *auth.Principal, op policy.Operation, r policy.Resource) error {
	if p == nil {
		return errs.Unauthenticated(auth.MsgMissingCredential)
	}
	return s.policy.Check(p, op, r)
}

// loadDocument maps store lookups onto the error taxonomy.
func (s *Service) loadDocument(ctx context.Context, id string) (*store.Document, error) {
	if id == "" {
		return nil, errs.Validation("document id is required")
	}
	doc, err := s.store.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.NotFound("document not found")
	}
	if err != nil {
		return nil, errs.Internal("loading document", err)
	}
	return doc, nil
}

// GetDocument returns a document with its history and comments.
func (s *Service) GetDocument(ctx context.Context, p *auth.Principal, id string) (*Details, error) {
	if err := s.authorize(p, policy.OpGetDocument, policy.Resource{}); err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.trail.ListFor(ctx, doc.ID)
	if err != nil {
		return nil, errs.Internal("loading history", err)
	}
	comments, err := s.store.ListComments(ctx, doc.ID)
	if err != nil {
		return nil, errs.Internal("loading comments", err)
	}
	return &Details{Document: doc, History: history, Comments: comments}, nil
}

// History returns the ordered status history of a document.
func (s *Service) History(ctx context.Context, p *auth.Principal, id string) ([]*store.HistoryEntry, error) {
	if err := s.authorize(p, policy.OpGetDocument, policy.Resource{}); err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.trail.ListFor(ctx, doc.ID)
	if err != nil {
		return nil, errs.Internal("loading history", err)
	}
	return history, nil
}

// TransitionStatus moves a document to target. The document is read fresh
// and handed to the engine, which rejects the write if another transition
// lands first.
func (s *Service) TransitionStatus(ctx context.Context, p *auth.Principal, id, target, comment string) (*store.Document, *store.HistoryEntry, error) {
	if p == nil {
		return nil, nil, errs.Unauthenticated(auth.MsgMissingCredential)
	}
	status, err := store.ParseStatus(target)
	if err != nil {
		return nil, nil, errs.Validation("unknown status %q", target)
	}
	comment, err = optionalText("comment", comment, MaxCommentLength)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.loadDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.engine.Transition(ctx, doc, status, p, comment)
}
