// ABOUTME: Role and status enumerations shared by the store and the workflow
// ABOUTME: Parsing helpers reject values outside the fixed sets

package store

import "fmt"

// Role is the coarse permission level of a user
type Role string

const (
	RoleUser           Role = "USER"
	RoleAdmin          Role = "ADMIN"
	RoleDepartmentHead Role = "DEPARTMENT_HEAD"
)

// ValidRoles lists all valid roles
var ValidRoles = []Role{
	RoleUser,
	RoleAdmin,
	RoleDepartmentHead,
}

// ParseRole converts a string into a Role. An empty string yields RoleUser.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleUser, nil
	}
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Status is the workflow state of a document
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusSubmitted      Status = "SUBMITTED"
	StatusReviewRequired Status = "REVIEW_REQUIRED"
	StatusApproved       Status = "APPROVED"
	StatusRejected       Status = "REJECTED"
)

// ValidStatuses lists every document status in workflow order
var ValidStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusReviewRequired,
	StatusApproved,
	StatusRejected,
}

// ParseStatus converts a string into a Status
func ParseStatus(s string) (Status, error) {
	for _, st := range ValidStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}
