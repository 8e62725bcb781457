// ABOUTME: Input limits and validation helpers for document operations
// ABOUTME: Lengths are counted in characters, not bytes

package documents

import (
	"strings"
	"unicode/utf8"

	"github.com/2389/docket/internal/errs"
)

// Input limits.
const (
	MaxTitleLength       = 255
	MaxDepartmentLength  = 255
	MaxDescriptionLength = 1000
	MaxCommentLength     = 1000
)

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// requiredText trims s and rejects it when blank or longer than max characters.
func requiredText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", errs.Validation("%s must not exceed %d characters", field, max)
	}
	return s, nil
}

// optionalText trims s and rejects it when longer than max characters.
func optionalText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return "", errs.Validation("%s must not exceed %d characters", field, max)
	}
	return s, nil
}
