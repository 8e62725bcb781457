// ABOUTME: Tests for the authorization policy table
// ABOUTME: Covers read roles, transition eligibility, and unconfigured operations

package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

var (
	admin     = &auth.Principal{ID: "admin", Role: store.RoleAdmin, Department: "it"}
	legalHead = &auth.Principal{ID: "head", Role: store.RoleDepartmentHead, Department: "legal"}
	opsHead   = &auth.Principal{ID: "ops-head", Role: store.RoleDepartmentHead, Department: "ops"}
	author    = &auth.Principal{ID: "author", Role: store.RoleUser, Department: "legal"}
	outsider  = &auth.Principal{ID: "outsider", Role: store.RoleUser, Department: "legal"}
)

func legalDoc(status store.Status) *store.Document {
	return &store.Document{ID: "doc", Department: "legal", AuthorID: "author", Status: status}
}

func TestPolicy_PublicOperationsNeedNoPrincipal(t *testing.T) {
	p := New()
	for _, op := range []Operation{OpLogin, OpRegister, OpValidateToken} {
		assert.True(t, p.Allow(nil, op, Resource{}), op)
	}
}

func TestPolicy_ReadOperations(t *testing.T) {
	p := New()
	ops := []Operation{OpGetDocument, OpListDocuments, OpAddComment, OpSearchLegalDocuments, OpDownloadFile}

	for _, op := range ops {
		assert.True(t, p.Allow(author, op, Resource{}), "USER %s", op)
		assert.True(t, p.Allow(admin, op, Resource{}), "ADMIN %s", op)
		assert.False(t, p.Allow(legalHead, op, Resource{}), "DEPARTMENT_HEAD %s", op)
		assert.False(t, p.Allow(nil, op, Resource{}), "anonymous %s", op)
	}
}

func TestPolicy_CreateOperationsAnyAuthenticated(t *testing.T) {
	p := New()
	for _, op := range []Operation{OpCreateDocument, OpImportLegalDocument} {
		assert.True(t, p.Allow(author, op, Resource{}))
		assert.True(t, p.Allow(legalHead, op, Resource{}))
		assert.True(t, p.Allow(admin, op, Resource{}))
		assert.False(t, p.Allow(nil, op, Resource{}))
	}
}

func TestPolicy_TransitionStatus(t *testing.T) {
	p := New()

	tests := []struct {
		name      string
		principal *auth.Principal
		from      store.Status
		to        store.Status
		want      bool
	}{
		{"admin any edge", admin, store.StatusSubmitted, store.StatusApproved, true},
		{"matching head", legalHead, store.StatusSubmitted, store.StatusRejected, true},
		{"other department head", opsHead, store.StatusSubmitted, store.StatusApproved, false},
		{"author submits draft", author, store.StatusDraft, store.StatusSubmitted, true},
		{"author approves own", author, store.StatusSubmitted, store.StatusApproved, false},
		{"author resubmits from review", author, store.StatusReviewRequired, store.StatusSubmitted, false},
		{"outsider submits", outsider, store.StatusDraft, store.StatusSubmitted, false},
		{"outsider approves", outsider, store.StatusSubmitted, store.StatusApproved, false},
		{"anonymous", nil, store.StatusDraft, store.StatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Allow(tt.principal, OpTransitionStatus, Resource{Document: legalDoc(tt.from), Target: tt.to})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_ActOnDocument(t *testing.T) {
	p := New()
	doc := legalDoc(store.StatusApproved)

	assert.True(t, p.Allow(admin, OpActOnDocument, Resource{Document: doc}))
	assert.True(t, p.Allow(legalHead, OpActOnDocument, Resource{Document: doc}))
	assert.True(t, p.Allow(author, OpActOnDocument, Resource{Document: doc}))
	assert.False(t, p.Allow(opsHead, OpActOnDocument, Resource{Document: doc}))
	assert.False(t, p.Allow(outsider, OpActOnDocument, Resource{Document: doc}))
}

func TestPolicy_OutsiderDeniedForEveryTarget(t *testing.T) {
	p := New()
	for _, from := range store.ValidStatuses {
		for _, to := range store.ValidStatuses {
			r := Resource{Document: legalDoc(from), Target: to}
			assert.False(t, p.Allow(outsider, OpActOnDocument, r))
			assert.False(t, p.Allow(outsider, OpTransitionStatus, r))
		}
	}
}

func TestPolicy_CheckReturnsPermissionDenied(t *testing.T) {
	p := New()

	err := p.Check(outsider, OpTransitionStatus, Resource{Document: legalDoc(store.StatusSubmitted), Target: store.StatusApproved})
	assert.True(t, errors.Is(err, errs.ErrPermissionDenied))
	assert.False(t, errors.Is(err, errs.ErrUnauthenticated))
	assert.Equal(t, "not permitted to TransitionStatus", errs.PublicMessage(err))

	assert.NoError(t, p.Check(admin, OpTransitionStatus, Resource{Document: legalDoc(store.StatusSubmitted), Target: store.StatusApproved}))
}

func TestPolicy_UnconfiguredOperationDenied(t *testing.T) {
	p := New()
	assert.False(t, p.Allow(admin, Operation("DeleteEverything"), Resource{}))
	assert.ErrorIs(t, p.Check(admin, Operation("DeleteEverything"), Resource{}), errs.ErrPermissionDenied)
}
