// ABOUTME: Document status state machine
// ABOUTME: Fixed transition table with DRAFT as the only initial state and two terminal states

package workflow

import (
	"fmt"
	"slices"

	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

// InitialStatus is the status every document is created in.
const InitialStatus = store.StatusDraft

// transitions lists the allowed targets for each source status. Statuses
// with no entry are terminal.
var transitions = map[store.Status][]store.Status{
	store.StatusDraft:          {store.StatusSubmitted},
	store.StatusSubmitted:      {store.StatusReviewRequired, store.StatusApproved, store.StatusRejected},
	store.StatusReviewRequired: {store.StatusApproved, store.StatusRejected, store.StatusSubmitted},
}

// AllowedTargets returns the statuses reachable from from in one step.
func AllowedTargets(from store.Status) []store.Status {
	return slices.Clone(transitions[from])
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to store.Status) bool {
	return slices.Contains(transitions[from], to)
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s store.Status) bool {
	return IsKnown(s) && len(transitions[s]) == 0
}

// IsKnown reports whether s is one of the defined statuses.
func IsKnown(s store.Status) bool {
	return slices.Contains(store.ValidStatuses, s)
}

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	From store.Status
	To   store.Status
}

func (e *TransitionError) Error() string {
	if IsTerminal(e.From) {
		return fmt.Sprintf("cannot transition from terminal status %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// ErrKind classifies the error as an invalid transition.
func (e *TransitionError) ErrKind() errs.Kind { return errs.KindInvalidTransition }

// Is matches errs.ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	t, ok := target.(*errs.Error)
	return ok && t.Kind == errs.KindInvalidTransition
}

// Validate returns a TransitionError unless from -> to is allowed, or a
// validation error when to is not a defined status.
func Validate(from, to store.Status) error {
	if !IsKnown(to) {
		return errs.Validation("unknown status %q", to)
	}
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
