// ABOUTME: Append-only status history per document
// ABOUTME: Entries are written inside the caller's transaction and read back in sequence order

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/docket/internal/store"
)

// Trail is the ordered ledger of status changes for each document.
type Trail struct {
	store store.Store
	now   func() time.Time
}

// NewTrail creates a Trail reading history from s.
func NewTrail(s store.Store) *Trail {
	return &Trail{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Append writes entry through tx, filling ID and CreatedAt when unset. A
// failure is returned to the caller, which must abandon the transaction.
func (t *Trail) Append(ctx context.Context, tx store.Tx, entry *store.HistoryEntry) error {
	if entry.DocumentID == "" {
		return fmt.Errorf("history entry has no document id")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = t.now()
	}
	if err := tx.AppendHistory(ctx, entry); err != nil {
		return fmt.Errorf("appending history for %s: %w", entry.DocumentID, err)
	}
	return nil
}

// ListFor returns every history entry of a document in append order.
func (t *Trail) ListFor(ctx context.Context, documentID string) ([]*store.HistoryEntry, error) {
	entries, err := t.store.ListHistory(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing history for %s: %w", documentID, err)
	}
	return entries, nil
}
