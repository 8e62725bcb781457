// ABOUTME: Account operations behind the public auth surface
// ABOUTME: Login, registration, token validation, and first-admin bootstrap with audit logging

package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

// Registration limits.
const (
	MinPasswordLength = 6
	MaxNameLength     = 100
)

// Tokens issues and verifies bearer tokens.
type Tokens interface {
	auth.TokenIssuer
	auth.TokenVerifier
}

// Result is returned by Login and Register.
type Result struct {
	Token string
	User  *store.User
}

// RegisterInput holds the fields of a registration request.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department string
	Role       string
}

// Service implements account operations.
type Service struct {
	store    store.Store
	tokens   Tokens
	gate     *auth.Gate
	tokenTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates an account Service. Tokens live for tokenTTL.
func NewService(s store.Store, tokens Tokens, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    s,
		tokens:   tokens,
		gate:     auth.NewGate(s, tokens),
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "accounts"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login exchanges credentials for a token. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.TrimSpace(email)
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errs.Internal("looking up user", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.audit(ctx, &store.AuditEntry{
			ActorID:    email,
			Action:     store.AuditLoginFailed,
			TargetType: "user",
			TargetID:   email,
		})
		return nil, errs.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, errs.Internal("issuing token", err)
	}

	s.audit(ctx, &store.AuditEntry{
		ActorID:    user.ID,
		Action:     store.AuditLoginSucceeded,
		TargetType: "user",
		TargetID:   user.ID,
	})
	return &Result{Token: token, User: user}, nil
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, errs.AlreadyExists("email already registered")
		}
		return nil, errs.Internal("creating user", err)
	}

	token, err := s.tokens.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, errs.Internal("issuing token", err)
	}

	s.audit(ctx, &store.AuditEntry{
		ActorID:    user.ID,
		Action:     store.AuditRegisterUser,
		TargetType: "user",
		TargetID:   user.ID,
		Detail:     map[string]any{"role": string(user.Role), "department": user.Department},
	})
	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return &Result{Token: token, User: user}, nil
}

// ValidateToken reports whether token is currently valid and, if so, whose
// it is. It never returns an error.
func (s *Service) ValidateToken(ctx context.Context, token string) (*store.User, bool) {
	p, err := s.gate.Authenticate(ctx, token)
	if err != nil {
		return nil, false
	}
	user, err := s.store.GetUser(ctx, p.ID)
	if err != nil {
		return nil, false
	}
	return user, true
}

// Me returns the account behind p.
func (s *Service) Me(ctx context.Context, p *auth.Principal) (*store.User, error) {
	if p == nil {
		return nil, errs.Unauthenticated(auth.MsgMissingCredential)
	}
	user, err := s.store.GetUser(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, errs.Internal("loading user", err)
	}
	return user, nil
}

// Bootstrap creates the first ADMIN account with a random password. It fails
// once any account exists.
func (s *Service) Bootstrap(ctx context.Context, name, email, department string) (*Result, string, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, "", errs.Internal("counting users", err)
	}
	if count > 0 {
		return nil, "", errs.AlreadyExists(fmt.Sprintf("bootstrap already complete: %d user(s) exist", count))
	}

	password, err := generatePassword()
	if err != nil {
		return nil, "", errs.Internal("generating password", err)
	}

	res, err := s.Register(ctx, RegisterInput{
		Name:       name,
		Email:      email,
		Password:   password,
		Department: department,
		Role:       string(store.RoleAdmin),
	})
	if err != nil {
		return nil, "", err
	}
	return res, password, nil
}

// DeleteUser removes an account. Outstanding tokens for it stop working.
// Administrators cannot delete themselves, so at least one always remains.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.Principal, userID string) error {
	if !actor.IsAdmin() {
		return errs.PermissionDenied("only administrators may delete users")
	}
	if userID == actor.ID {
		return errs.Validation("administrators cannot delete their own account")
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errs.NotFound("user not found")
		}
		return errs.Internal("deleting user", err)
	}
	s.audit(ctx, &store.AuditEntry{
		ActorID:    actor.ID,
		Action:     store.AuditDeleteUser,
		TargetType: "user",
		TargetID:   userID,
	})
	return nil
}

// ListUsers returns every account, oldest first. Administrators only.
func (s *Service) ListUsers(ctx context.Context, actor *auth.Principal) ([]*store.User, error) {
	if !actor.IsAdmin() {
		return nil, errs.PermissionDenied("only administrators may list users")
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, errs.Internal("listing users", err)
	}
	return users, nil
}

// ListAuditLog returns account audit entries, newest first. Administrators only.
func (s *Service) ListAuditLog(ctx context.Context, actor *auth.Principal, f store.AuditFilter) ([]store.AuditEntry, error) {
	if !actor.IsAdmin() {
		return nil, errs.PermissionDenied("only administrators may read the audit log")
	}
	if f.Action != nil && !slices.Contains(store.ValidAuditActions, *f.Action) {
		return nil, errs.Validation("unknown audit action %q", *f.Action)
	}
	if f.Limit < 0 {
		return nil, errs.Validation("limit must not be negative")
	}
	entries, err := s.store.ListAuditLog(ctx, f)
	if err != nil {
		return nil, errs.Internal("listing audit log", err)
	}
	return entries, nil
}

func (s *Service) newUser(in RegisterInput) (*store.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, errs.Validation("name must not exceed %d characters", MaxNameLength)
	}

	email := strings.TrimSpace(in.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, errs.Validation("invalid email address")
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, errs.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, errs.Validation("password must not exceed %d bytes", auth.MaxPasswordBytes)
	}

	role, err := store.ParseRole(strings.ToUpper(strings.TrimSpace(in.Role)))
	if err != nil {
		return nil, errs.Validation("%v", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal("hashing password", err)
	}

	return &store.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Department:   strings.TrimSpace(in.Department),
		Role:         role,
		CreatedAt:    s.now(),
	}, nil
}

// audit records an account event. Failures are logged, not returned, since
// the account operation itself already succeeded or failed on its own terms.
func (s *Service) audit(ctx context.Context, e *store.AuditEntry) {
	if err := s.store.AppendAuditLog(ctx, e); err != nil {
		s.logger.Error("failed to append audit log", "action", e.Action, "error", err)
	}
}

func generatePassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
