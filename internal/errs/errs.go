// ABOUTME: Error taxonomy shared by every layer between the transport and the store
// ABOUTME: Kinds classify failures so transports can map them without string matching

package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for reporting to callers.
type Kind int

const (
	// KindInternal is any failure not covered by a more specific kind.
	// Its message is never shown to callers.
	KindInternal Kind = iota
	// KindUnauthenticated means the caller presented no usable credential.
	KindUnauthenticated
	// KindPermissionDenied means the caller is known but not entitled.
	KindPermissionDenied
	// KindInvalidTransition means a workflow rule rejected a status change.
	KindInvalidTransition
	// KindNotFound means a referenced document or account does not exist.
	KindNotFound
	// KindAlreadyExists means a unique value (e.g. email) is taken.
	KindAlreadyExists
	// KindConflict means a concurrent modification won the race.
	KindConflict
	// KindValidation means the input was malformed.
	KindValidation
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a classified error. Message is safe to return to callers unless
// Kind is KindInternal.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind reports the classification of the error.
func (e *Error) ErrKind() Kind { return e.Kind }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrPermissionDenied  = &Error{Kind: KindPermissionDenied}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInternal          = &Error{Kind: KindInternal}
)

// Unauthenticated returns a KindUnauthenticated error.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// PermissionDenied returns a KindPermissionDenied error.
func PermissionDenied(msg string) error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AlreadyExists returns a KindAlreadyExists error.
func AlreadyExists(msg string) error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

// Conflict returns a KindConflict error.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Validation returns a KindValidation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps err as KindInternal with context for the logs.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// kinded is implemented by errors that carry their own classification.
type kinded interface {
	ErrKind() Kind
}

// KindOf returns the kind of the first classified error in err's chain, or
// KindInternal when nothing in the chain is classified.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ErrKind()
	}
	return KindInternal
}

// PublicMessage returns the text that may be shown to a caller. Internal
// errors collapse to a fixed message.
func PublicMessage(err error) string {
	var k kinded
	if !errors.As(err, &k) || k.ErrKind() == KindInternal {
		return "internal error"
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
