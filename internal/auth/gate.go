// ABOUTME: Authentication gate resolving bearer tokens to principals
// ABOUTME: Checks signature, expiry, and that the token subject is still a live account

package auth

import (
	"context"
	"errors"

	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

// Credential failure messages returned to callers.
const (
	MsgMissingCredential = "missing credential"
	MsgInvalidCredential = "invalid credential"
)

// UserResolver looks up the account behind a token subject.
type UserResolver interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Gate authenticates bearer tokens. It holds no per-call state.
type Gate struct {
	users  UserResolver
	tokens TokenVerifier
}

// NewGate creates a Gate backed by the given user store and verifier.
func NewGate(users UserResolver, tokens TokenVerifier) *Gate {
	return &Gate{users: users, tokens: tokens}
}

// Authenticate resolves token to a Principal. A missing token yields
// Unauthenticated("missing credential"). A malformed, expired, or orphaned
// token yields Unauthenticated("invalid credential").
func (g *Gate) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, errs.Unauthenticated(MsgMissingCredential)
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: MsgInvalidCredential, Err: err}
	}

	user, err := g.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: MsgInvalidCredential, Err: err}
		}
		return nil, errs.Internal("resolving token subject", err)
	}

	return PrincipalFromUser(user), nil
}
