// ABOUTME: Document, status history, and comment store methods
// ABOUTME: Status changes go through Tx so the version check and history append commit together

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const documentColumns = `id, title, description, department, author_id, status,
	file_ref, file_name, file_type, file_size, source_url, version, created_at, updated_at`

// GetDocument retrieves a document by ID.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns one page of documents matching the filter, newest
// first, along with the total number of matches.
func (s *SQLiteStore) ListDocuments(ctx context.Context, f DocumentFilter) ([]*Document, int, error) {
	where := `WHERE (? IS NULL OR status = ?) AND (? IS NULL OR department = ?)`
	status := nullString(string(f.Status))
	department := nullString(f.Department)

	var total int
	countQuery := `SELECT COUNT(*) FROM documents ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, status, status, department, department).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + documentColumns + ` FROM documents ` + where + `
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, status, status, department, department, limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []*Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, total, nil
}

// ListHistory returns the full status history of a document in append order.
func (s *SQLiteStore) ListHistory(ctx context.Context, documentID string) ([]*HistoryEntry, error) {
	query := `
		SELECT seq, id, document_id, user_id, status, comment, created_at
		FROM status_history
		WHERE document_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []*HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var status, createdAtStr string
		if err := rows.Scan(&e.Seq, &e.ID, &e.DocumentID, &e.UserID, &status, &e.Comment, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Status = Status(status)
		if e.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}

	return entries, nil
}

// AddComment appends a comment to a document. Returns ErrNotFound if the
// document does not exist.
func (s *SQLiteStore) AddComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT INTO comments (id, document_id, user_id, text, created_at)
		SELECT ?, id, ?, ?, ? FROM documents WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, c.ID, c.UserID, c.Text, formatTime(c.CreatedAt), c.DocumentID)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if c.Seq, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("reading comment seq: %w", err)
	}

	s.logger.Debug("added comment", "id", c.ID, "document_id", c.DocumentID)
	return nil
}

// ListComments returns all comments on a document in append order.
func (s *SQLiteStore) ListComments(ctx context.Context, documentID string) ([]*Comment, error) {
	query := `
		SELECT seq, id, document_id, user_id, text, created_at
		FROM comments
		WHERE document_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := []*Comment{}
	for rows.Next() {
		var c Comment
		var createdAtStr string
		if err := rows.Scan(&c.Seq, &c.ID, &c.DocumentID, &c.UserID, &c.Text, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// InsertDocument creates a document row inside the transaction.
func (t *sqliteTx) InsertDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var fileRef, fileName, fileType, fileSize any
	if doc.File != nil {
		fileRef = doc.File.Ref
		fileName = doc.File.Name
		fileType = nullString(doc.File.Type)
		fileSize = doc.File.Size
	}

	_, err := t.tx.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.Department,
		doc.AuthorID,
		doc.Status,
		fileRef,
		fileName,
		fileType,
		fileSize,
		nullString(doc.SourceURL),
		doc.Version,
		formatTime(doc.CreatedAt),
		formatTime(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	t.logger.Debug("inserted document", "id", doc.ID, "author_id", doc.AuthorID)
	return nil
}

// UpdateDocumentStatus performs a compare-and-swap on the document version.
func (t *sqliteTx) UpdateDocumentStatus(ctx context.Context, doc *Document, expectedVersion int64) error {
	query := `
		UPDATE documents
		SET status = ?, updated_at = ?, version = ?
		WHERE id = ? AND version = ?
	`

	result, err := t.tx.ExecContext(ctx, query,
		doc.Status,
		formatTime(doc.UpdatedAt),
		doc.Version,
		doc.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists int
	err = t.tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, doc.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking document existence: %w", err)
	}
	return ErrVersionConflict
}

// AppendHistory inserts a history entry and records its sequence number.
func (t *sqliteTx) AppendHistory(ctx context.Context, e *HistoryEntry) error {
	query := `
		INSERT INTO status_history (id, document_id, user_id, status, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := t.tx.ExecContext(ctx, query,
		e.ID,
		e.DocumentID,
		e.UserID,
		e.Status,
		e.Comment,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}

	if e.Seq, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("reading history seq: %w", err)
	}
	return nil
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var status, createdAtStr, updatedAtStr string
	var fileRef, fileName, fileType, sourceURL sql.NullString
	var fileSize sql.NullInt64

	if err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.Department,
		&doc.AuthorID,
		&status,
		&fileRef,
		&fileName,
		&fileType,
		&fileSize,
		&sourceURL,
		&doc.Version,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, err
	}

	doc.Status = Status(status)
	doc.SourceURL = sourceURL.String
	if fileRef.Valid {
		doc.File = &FileRef{
			Ref:  fileRef.String,
			Name: fileName.String,
			Type: fileType.String,
			Size: fileSize.Int64,
		}
	}

	var err error
	if doc.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, err
	}
	return &doc, nil
}
