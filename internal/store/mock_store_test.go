// ABOUTME: Tests for the in-memory MockStore
// ABOUTME: Verifies transaction staging, version checks, and failure injection match SQLite behavior

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_TxStagesUntilCommit(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	doc := newTestDocument("finance")

	boom := errors.New("abort")
	err := m.WithinTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.InsertDocument(ctx, doc))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = m.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	insertDocument(t, m, doc)
	history, err := m.ListHistory(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].Seq)
}

func TestMockStore_VersionConflict(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	doc := newTestDocument("finance")
	insertDocument(t, m, doc)

	next := *doc
	next.Status = StatusSubmitted
	next.Version = 1
	next.UpdatedAt = time.Now().UTC()
	require.NoError(t, m.WithinTx(ctx, func(tx Tx) error {
		return tx.UpdateDocumentStatus(ctx, &next, 0)
	}))

	err := m.WithinTx(ctx, func(tx Tx) error {
		return tx.UpdateDocumentStatus(ctx, &next, 0)
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMockStore_AppendHistoryErr(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	doc := newTestDocument("finance")
	insertDocument(t, m, doc)

	m.AppendHistoryErr = errors.New("disk full")
	err := m.WithinTx(ctx, func(tx Tx) error {
		next := *doc
		next.Status = StatusSubmitted
		next.Version = 1
		if err := tx.UpdateDocumentStatus(ctx, &next, 0); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, &HistoryEntry{DocumentID: doc.ID, Status: StatusSubmitted})
	})
	assert.Error(t, err)

	got, err := m.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got.Status)
}

func TestMockStore_EmailUniqueIgnoresCase(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.CreateUser(ctx, &User{ID: "1", Email: "a@example.com", Role: RoleUser}))
	assert.ErrorIs(t, m.CreateUser(ctx, &User{ID: "2", Email: "A@EXAMPLE.com", Role: RoleUser}), ErrEmailExists)
}
