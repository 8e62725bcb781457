// Package workflow implements the document status state machine.
//
// # States
//
//	DRAFT -> SUBMITTED
//	SUBMITTED -> REVIEW_REQUIRED | APPROVED | REJECTED
//	REVIEW_REQUIRED -> APPROVED | REJECTED | SUBMITTED
//
// DRAFT is the only initial state. APPROVED and REJECTED are terminal.
//
// # Engine
//
// Engine.Create inserts a DRAFT document and its "document created" history
// entry in one transaction. Engine.Transition checks the caller's standing,
// the state machine, and the per-edge policy, then updates the document with
// a version compare-and-swap and appends the history entry in the same
// transaction. A lost compare-and-swap surfaces as errs.KindConflict.
//
// The engine receives the principal explicitly and never reads it from
// context.
package workflow
