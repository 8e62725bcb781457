// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject write failures

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu        sync.RWMutex
	txMu      sync.Mutex // serializes transactions like the single SQLite connection
	users     map[string]*User
	documents map[string]*Document
	history   map[string][]*HistoryEntry // keyed by document ID
	comments  map[string][]*Comment      // keyed by document ID
	audit     []AuditEntry
	seq       int64

	// AppendHistoryErr, when set, is returned by every Tx.AppendHistory call.
	AppendHistoryErr error
	// PingErr, when set, is returned by Ping.
	PingErr error
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:     make(map[string]*User),
		documents: make(map[string]*Document),
		history:   make(map[string][]*HistoryEntry),
		comments:  make(map[string][]*Comment),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailExists
		}
	}
	u := *user
	m.users[u.ID] = &u
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *u
	return &result, nil
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			result := *u
			return &result, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsers returns all users, oldest first.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteUser removes a user.
func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// CountUsers returns the number of users.
func (m *MockStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// GetDocument retrieves a document by ID.
func (m *MockStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(d), nil
}

// ListDocuments returns a page of matching documents, newest first.
func (m *MockStore) ListDocuments(ctx context.Context, f DocumentFilter) ([]*Document, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*Document
	for _, d := range m.documents {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Department != "" && d.Department != f.Department {
			continue
		}
		matched = append(matched, copyDocument(d))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return append([]*Document{}, matched[start:end]...), total, nil
}

// ListHistory returns a document's history in append order.
func (m *MockStore) ListHistory(ctx context.Context, documentID string) ([]*HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*HistoryEntry, 0, len(m.history[documentID]))
	for _, e := range m.history[documentID] {
		c := *e
		result = append(result, &c)
	}
	return result, nil
}

// AddComment appends a comment.
func (m *MockStore) AddComment(ctx context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.documents[c.DocumentID]; !ok {
		return ErrNotFound
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	m.seq++
	c.Seq = m.seq
	stored := *c
	m.comments[c.DocumentID] = append(m.comments[c.DocumentID], &stored)
	return nil
}

// ListComments returns a document's comments in append order.
func (m *MockStore) ListComments(ctx context.Context, documentID string) ([]*Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Comment, 0, len(m.comments[documentID]))
	for _, c := range m.comments[documentID] {
		cc := *c
		result = append(result, &cc)
	}
	return result, nil
}

// WithinTx stages writes and applies them only if fn succeeds.
func (m *MockStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &mockTx{store: m, docs: make(map[string]*Document)}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range tx.docs {
		m.documents[id] = d
	}
	for _, e := range tx.history {
		m.seq++
		e.Seq = m.seq
		stored := *e
		m.history[e.DocumentID] = append(m.history[e.DocumentID], &stored)
	}
	return nil
}

// mockTx buffers writes until WithinTx commits them.
type mockTx struct {
	store   *MockStore
	docs    map[string]*Document
	history []*HistoryEntry
}

func (t *mockTx) current(id string) (*Document, bool) {
	if d, ok := t.docs[id]; ok {
		return d, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	d, ok := t.store.documents[id]
	return d, ok
}

func (t *mockTx) InsertDocument(ctx context.Context, doc *Document) error {
	t.docs[doc.ID] = copyDocument(doc)
	return nil
}

func (t *mockTx) UpdateDocumentStatus(ctx context.Context, doc *Document, expectedVersion int64) error {
	cur, ok := t.current(doc.ID)
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	updated := copyDocument(cur)
	updated.Status = doc.Status
	updated.UpdatedAt = doc.UpdatedAt
	updated.Version = doc.Version
	t.docs[doc.ID] = updated
	return nil
}

func (t *mockTx) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	if t.store.AppendHistoryErr != nil {
		return t.store.AppendHistoryErr
	}
	t.history = append(t.history, e)
	return nil
}

// AppendAuditLog records an audit entry.
func (m *MockStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	m.audit = append(m.audit, *e)
	return nil
}

// ListAuditLog returns matching audit entries, newest first.
func (m *MockStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := []AuditEntry{}
	for i := len(m.audit) - 1; i >= 0; i-- {
		e := m.audit[i]
		if f.Since != nil && e.Timestamp.Before(*f.Since) {
			continue
		}
		if f.ActorID != nil && e.ActorID != *f.ActorID {
			continue
		}
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.TargetType != nil && e.TargetType != *f.TargetType {
			continue
		}
		if f.TargetID != nil && e.TargetID != *f.TargetID {
			continue
		}
		entries = append(entries, e)
		if len(entries) == normalizeAuditLimit(f.Limit) {
			break
		}
	}
	return entries, nil
}

// Ping returns PingErr.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

func copyDocument(d *Document) *Document {
	c := *d
	if d.File != nil {
		f := *d.File
		c.File = &f
	}
	return &c
}
