// Package store provides persistent storage for docket using SQLite.
//
// # Architecture
//
// Store is the single interface consumed by the rest of the gateway.
// SQLiteStore implements it on modernc.org/sqlite; MockStore implements it in
// memory for unit tests and can inject failures into history appends.
//
// # Data Models
//
//   - User: registered account with role and department
//   - Document: workflow item with status and optimistic-concurrency version
//   - HistoryEntry: append-only status change record, ordered by Seq
//   - Comment: append-only free text, ordered by Seq
//   - AuditEntry: account-level events (registration, login, import)
//
// # Transactions
//
// Status changes run inside WithinTx. The Tx interface exposes only the writes
// that must commit together: inserting a document, a version compare-and-swap
// on its status, and appending a history entry.
//
//	err := s.WithinTx(ctx, func(tx store.Tx) error {
//	    if err := tx.UpdateDocumentStatus(ctx, doc, prevVersion); err != nil {
//	        return err
//	    }
//	    return tx.AppendHistory(ctx, entry)
//	})
//
// # SQLite Configuration
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//	PRAGMA busy_timeout=5000;
//
// The pool is limited to one open connection so writers are serialized.
// Triggers reject UPDATE and DELETE on status_history.
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//   - ErrEmailExists: registration with an email already in use
//   - ErrVersionConflict: a concurrent writer changed the document first
package store
