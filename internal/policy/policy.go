// ABOUTME: Authorization policy mapping operations to unanimous predicate lists
// ABOUTME: A caller is allowed only when every predicate configured for the operation passes

package policy

import (
	"fmt"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

// Operation names an authorizable action.
type Operation string

const (
	OpLogin         Operation = "Login"
	OpRegister      Operation = "Register"
	OpValidateToken Operation = "ValidateToken"

	OpGetDocument          Operation = "GetDocument"
	OpListDocuments        Operation = "ListDocuments"
	OpAddComment           Operation = "AddComment"
	OpSearchLegalDocuments Operation = "SearchLegalDocuments"
	OpDownloadFile         Operation = "DownloadFile"

	OpCreateDocument      Operation = "CreateDocument"
	OpImportLegalDocument Operation = "ImportLegalDocument"

	// OpActOnDocument asks whether the caller has any standing over a
	// document's workflow: admin, head of its department, or its author.
	OpActOnDocument Operation = "ActOnDocument"
	// OpTransitionStatus asks whether the caller may move a document to
	// Resource.Target.
	OpTransitionStatus Operation = "TransitionStatus"
)

// Resource carries the facts some predicates need. Document is nil for
// operations that do not target an existing document.
type Resource struct {
	Document *store.Document
	Target   store.Status
}

// Predicate is one independent check. A nil principal means the caller is
// not authenticated.
type Predicate func(p *auth.Principal, r Resource) bool

// Rule is a named predicate so denials can say which check failed.
type Rule struct {
	Name  string
	Check Predicate
}

// Policy maps each operation to an ordered list of rules.
type Policy struct {
	rules map[Operation][]Rule
}

// New returns the default policy table.
func New() *Policy {
	authenticated := Rule{"authenticated", Authenticated}
	readRole := Rule{"role is USER or ADMIN", HasRole(store.RoleUser, store.RoleAdmin)}
	standing := Rule{"admin, department head, or author", AnyOf(IsAdmin, IsDepartmentHeadOfDocument, IsAuthor)}

	return &Policy{rules: map[Operation][]Rule{
		OpLogin:         {},
		OpRegister:      {},
		OpValidateToken: {},

		OpGetDocument:          {authenticated, readRole},
		OpListDocuments:        {authenticated, readRole},
		OpAddComment:           {authenticated, readRole},
		OpSearchLegalDocuments: {authenticated, readRole},
		OpDownloadFile:         {authenticated, readRole},

		OpCreateDocument:      {authenticated},
		OpImportLegalDocument: {authenticated},

		OpActOnDocument: {authenticated, standing},
		OpTransitionStatus: {
			authenticated,
			{"admin, department head, or author self-transition", AnyOf(IsAdmin, IsDepartmentHeadOfDocument, IsAuthorSelfTransition)},
		},
	}}
}

// Allow reports whether every rule configured for op passes. Operations with
// no entry are denied.
func (p *Policy) Allow(principal *auth.Principal, op Operation, r Resource) bool {
	_, ok := p.firstFailure(principal, op, r)
	return ok
}

// Check returns a PermissionDenied error when Allow would return false.
func (p *Policy) Check(principal *auth.Principal, op Operation, r Resource) error {
	failed, ok := p.firstFailure(principal, op, r)
	if ok {
		return nil
	}
	return &errs.Error{
		Kind:    errs.KindPermissionDenied,
		Message: fmt.Sprintf("not permitted to %s", op),
		Err:     fmt.Errorf("rule %q failed", failed),
	}
}

func (p *Policy) firstFailure(principal *auth.Principal, op Operation, r Resource) (string, bool) {
	rules, ok := p.rules[op]
	if !ok {
		return "operation not configured", false
	}
	for _, rule := range rules {
		if !rule.Check(principal, r) {
			return rule.Name, false
		}
	}
	return "", true
}
