// Package policy decides whether a principal may perform an operation.
//
// Each Operation maps to an ordered list of Rules and every rule must pass.
// Operations missing from the table are denied. Public operations map to an
// empty list and always pass, even without a principal.
//
//	p := policy.New()
//	err := p.Check(principal, policy.OpTransitionStatus, policy.Resource{
//	    Document: doc,
//	    Target:   store.StatusApproved,
//	})
//
// Check returns an errs.KindPermissionDenied error, never an authentication
// error; callers that have no principal must be stopped by the auth gate first.
package policy
