// ABOUTME: Predicates composed by the policy table
// ABOUTME: Each predicate is stateless and safe for concurrent use

package policy

import (
	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/store"
)

// Authenticated passes for any resolved principal.
func Authenticated(p *auth.Principal, _ Resource) bool {
	return p != nil
}

// HasRole passes when the principal holds one of roles.
func HasRole(roles ...store.Role) Predicate {
	return func(p *auth.Principal, _ Resource) bool {
		if p == nil {
			return false
		}
		for _, r := range roles {
			if p.Role == r {
				return true
			}
		}
		return false
	}
}

// IsAdmin passes for ADMIN principals.
func IsAdmin(p *auth.Principal, _ Resource) bool {
	return p.IsAdmin()
}

// IsDepartmentHeadOfDocument passes for a DEPARTMENT_HEAD whose department
// matches the document's.
func IsDepartmentHeadOfDocument(p *auth.Principal, r Resource) bool {
	return r.Document != nil && p.IsDepartmentHead(r.Document.Department)
}

// IsAuthor passes when the principal created the document.
func IsAuthor(p *auth.Principal, r Resource) bool {
	return p != nil && r.Document != nil && r.Document.AuthorID == p.ID
}

// authorTransitions lists the only edges an author may take on their own
// document without another role.
var authorTransitions = map[store.Status]store.Status{
	store.StatusDraft: store.StatusSubmitted,
}

// IsAuthorSelfTransition passes when the author moves their own document
// along an edge reserved for authors.
func IsAuthorSelfTransition(p *auth.Principal, r Resource) bool {
	if !IsAuthor(p, r) {
		return false
	}
	to, ok := authorTransitions[r.Document.Status]
	return ok && to == r.Target
}

// AnyOf passes when at least one of preds passes.
func AnyOf(preds ...Predicate) Predicate {
	return func(p *auth.Principal, r Resource) bool {
		for _, pred := range preds {
			if pred(p, r) {
				return true
			}
		}
		return false
	}
}
