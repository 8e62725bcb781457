// ABOUTME: Tests for the status transition table
// ABOUTME: Covers every edge, terminal states, and unknown targets

package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

func TestCanTransition_Table(t *testing.T) {
	allowed := map[store.Status][]store.Status{
		store.StatusDraft:          {store.StatusSubmitted},
		store.StatusSubmitted:      {store.StatusReviewRequired, store.StatusApproved, store.StatusRejected},
		store.StatusReviewRequired: {store.StatusApproved, store.StatusRejected, store.StatusSubmitted},
		store.StatusApproved:       nil,
		store.StatusRejected:       nil,
	}

	for _, from := range store.ValidStatuses {
		for _, to := range store.ValidStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(store.StatusApproved))
	assert.True(t, IsTerminal(store.StatusRejected))
	assert.False(t, IsTerminal(store.StatusDraft))
	assert.False(t, IsTerminal(store.StatusSubmitted))
	assert.False(t, IsTerminal(store.StatusReviewRequired))
	assert.False(t, IsTerminal(store.Status("ARCHIVED")))
}

func TestValidate_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []store.Status{store.StatusApproved, store.StatusRejected} {
		for _, to := range store.ValidStatuses {
			err := Validate(from, to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidTransition), "%s -> %s", from, to)

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, from, te.From)
			assert.Equal(t, to, te.To)
		}
	}
}

func TestValidate_UnknownTarget(t *testing.T) {
	err := Validate(store.StatusDraft, store.Status("PUBLISHED"))
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.False(t, errors.Is(err, errs.ErrInvalidTransition))
}

func TestTransitionError_PublicMessage(t *testing.T) {
	err := Validate(store.StatusApproved, store.StatusSubmitted)
	assert.Equal(t, errs.KindInvalidTransition, errs.KindOf(err))
	assert.Equal(t, "cannot transition from terminal status APPROVED to SUBMITTED", errs.PublicMessage(err))
}

func TestAllowedTargets_ReturnsCopy(t *testing.T) {
	targets := AllowedTargets(store.StatusSubmitted)
	targets[0] = store.StatusDraft
	assert.Equal(t, store.StatusReviewRequired, AllowedTargets(store.StatusSubmitted)[0])
}
