// ABOUTME: Workflow engine applying transitions with their history entries atomically
// ABOUTME: Delegates authorization to the policy and concurrency control to a version check

package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/docket/internal/audit"
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/policy"
	"github.com/2389/docket/internal/store"
)

// CreatedComment is the history comment recorded for every new document.
const CreatedComment = "document created"

// Draft holds the caller-supplied fields of a new document.
type Draft struct {
	Title       string
	Description string
	Department  string
	File        *store.FileRef
	SourceURL   string
}

// Engine validates and applies document status changes.
type Engine struct {
	store  store.Store
	trail  *audit.Trail
	policy *policy.Policy
	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(s store.Store, trail *audit.Trail, pol *policy.Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  s,
		trail:  trail,
		policy: pol,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With("component", "workflow"),
	}
}

// Create inserts a new DRAFT document authored by p together with its first
// history entry.
func (e *Engine) Create(ctx context.Context, p *auth.Principal, d Draft) (*store.Document, *store.HistoryEntry, error) {
	if p == nil {
		return nil, nil, errs.Unauthenticated(auth.MsgMissingCredential)
	}
	if err := e.policy.Check(p, policy.OpCreateDocument, policy.Resource{}); err != nil {
		return nil, nil, err
	}

	now := e.now()
	doc := &store.Document{
		ID:          uuid.New().String(),
		Title:       d.Title,
		Description: d.Description,
		Department:  d.Department,
		AuthorID:    p.ID,
		Status:      InitialStatus,
		File:        d.File,
		SourceURL:   d.SourceURL,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := &store.HistoryEntry{
		DocumentID: doc.ID,
		UserID:     p.ID,
		Status:     InitialStatus,
		Comment:    CreatedComment,
		CreatedAt:  now,
	}

	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertDocument(ctx, doc); err != nil {
			return err
		}
		return e.trail.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, nil, errs.Internal("creating document", err)
	}

	e.logger.Info("document created", "document_id", doc.ID, "author_id", p.ID, "department", doc.Department)
	return doc, entry, nil
}

// Transition moves doc to target on behalf of p. doc is the snapshot the
// caller read; if another writer changed the document since, the call fails
// with a Conflict error and nothing is written.
//
// Checks run in order: standing over the document, the state machine, then
// the transition rule for the specific edge.
func (e *Engine) Transition(ctx context.Context, doc *store.Document, target store.Status, p *auth.Principal, comment string) (*store.Document, *store.HistoryEntry, error) {
	if p == nil {
		return nil, nil, errs.Unauthenticated(auth.MsgMissingCredential)
	}
	if !IsKnown(target) {
		return nil, nil, errs.Validation("unknown status %q", target)
	}

	res := policy.Resource{Document: doc, Target: target}
	if err := e.policy.Check(p, policy.OpActOnDocument, res); err != nil {
		return nil, nil, err
	}
	if err := Validate(doc.Status, target); err != nil {
		return nil, nil, err
	}
	if err := e.policy.Check(p, policy.OpTransitionStatus, res); err != nil {
		return nil, nil, err
	}

	updated := *doc
	updated.Status = target
	updated.UpdatedAt = e.now()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}
	updated.Version = doc.Version + 1

	entry := &store.HistoryEntry{
		DocumentID: doc.ID,
		UserID:     p.ID,
		Status:     target,
		Comment:    comment,
		CreatedAt:  updated.UpdatedAt,
	}

	err := e.store.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.UpdateDocumentStatus(ctx, &updated, doc.Version); err != nil {
			return err
		}
		return e.trail.Append(ctx, tx, entry)
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrVersionConflict):
		e.logger.Info("transition lost race", "document_id", doc.ID, "from", doc.Status, "to", target)
		return nil, nil, errs.Conflict("document was modified concurrently")
	case errors.Is(err, store.ErrNotFound):
		return nil, nil, errs.NotFound("document not found")
	default:
		return nil, nil, errs.Internal("applying transition", err)
	}

	e.logger.Info("document transitioned",
		"document_id", doc.ID,
		"from", doc.Status,
		"to", target,
		"actor_id", p.ID,
		"version", updated.Version,
	)
	return &updated, entry, nil
}
