// ABOUTME: Store interface and data types for docket persistence
// ABOUTME: Defines users, documents, status history, comments and the transactional write surface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering a user with an email already in use
var ErrEmailExists = errors.New("email already exists")

// ErrVersionConflict is returned when a compare-and-swap on a document version
// loses to a concurrent writer
var ErrVersionConflict = errors.New("document version conflict")

// User is a registered account. Principals are resolved from users per request.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash
	Department   string
	Role         Role
	CreatedAt    time.Time
}

// FileRef describes an uploaded file attached to a document.
// Ref is the opaque storage reference returned by the file store.
type FileRef struct {
	Ref  string
	Name string
	Type string
	Size int64
}

// Document is a unit of work moving through the approval workflow
type Document struct {
	ID          string
	Title       string
	Description string
	Department  string
	AuthorID    string
	Status      Status
	File        *FileRef // nil when no file was attached
	SourceURL   string   // set for documents imported from the legal catalog
	Version     int64    // incremented by one on every status change
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HistoryEntry records one status change of a document. Entries are never
// updated or deleted. Seq is assigned by the store and orders entries even when
// timestamps collide.
type HistoryEntry struct {
	ID         string
	Seq        int64
	DocumentID string
	UserID     string
	Status     Status
	Comment    string
	CreatedAt  time.Time
}

// Comment is free text attached to a document, independent of transitions
type Comment struct {
	ID         string
	Seq        int64
	DocumentID string
	UserID     string
	Text       string
	CreatedAt  time.Time
}

// DocumentFilter selects documents for listing. Empty fields match everything.
type DocumentFilter struct {
	Status     Status
	Department string
	Offset     int
	Limit      int
}

// Tx is the write surface available inside a transaction. Everything written
// through one Tx commits or rolls back together.
type Tx interface {
	InsertDocument(ctx context.Context, doc *Document) error
	// UpdateDocumentStatus writes doc.Status, doc.UpdatedAt and doc.Version only
	// if the stored version still equals expectedVersion. Returns
	// ErrVersionConflict when it does not and ErrNotFound when the row is gone.
	UpdateDocumentStatus(ctx context.Context, doc *Document, expectedVersion int64) error
	// AppendHistory inserts entry and sets entry.Seq.
	AppendHistory(ctx context.Context, entry *HistoryEntry) error
}

// Store defines the interface for docket persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)

	// Documents
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, int, error)

	// History, ordered by Seq ascending
	ListHistory(ctx context.Context, documentID string) ([]*HistoryEntry, error)

	// Comments, ordered by Seq ascending
	AddComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, documentID string) ([]*Comment, error)

	// WithinTx runs fn in a single transaction. A non-nil error from fn rolls
	// back every write made through the Tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// Account audit log
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error)

	// Ping reports whether the backing database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
