// ABOUTME: Tests for the account service
// ABOUTME: Covers login, registration validation, token validation, and bootstrap

package accounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
	"github.com/2389/docket/internal/store"
)

var testSecret = []byte("accounts-test-secret-32-bytes!!!")

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	s := store.NewMockStore()
	v, err := auth.NewJWTVerifier(testSecret)
	require.NoError(t, err)
	return NewService(s, v, time.Hour, nil), s
}

func register(t *testing.T, svc *Service, email, role string) *Result {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{
		Name:       "Test User",
		Email:      email,
		Password:   "secret123",
		Department: "legal",
		Role:       role,
	})
	require.NoError(t, err)
	return res
}

func TestRegister_DefaultsToUserRole(t *testing.T) {
	svc, s := newTestService(t)
	res := register(t, svc, "alice@example.com", "")

	assert.Equal(t, store.RoleUser, res.User.Role)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)

	stored, err := s.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, stored.ID)

	action := store.AuditRegisterUser
	entries, err := s.ListAuditLog(context.Background(), store.AuditFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.User.ID, entries[0].TargetID)
}

func TestRegister_RoleIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	res := register(t, svc, "head@example.com", "department_head")
	assert.Equal(t, store.RoleDepartmentHead, res.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"blank name", RegisterInput{Name: "  ", Email: "a@example.com", Password: "secret123"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}},
		{"display-name email", RegisterInput{Name: "A", Email: "A <a@example.com>", Password: "secret123"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "12345"}},
		{"unknown role", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123", Role: "ROOT"}},
		{"password over 72 bytes", RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("p", 73)}},
		{"multibyte password over 72 bytes", RegisterInput{Name: "A", Email: "a@example.com", Password: strings.Repeat("я", 37)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s := newTestService(t)
			_, err := svc.Register(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))

			count, _ := s.CountUsers(context.Background())
			assert.Zero(t, count)
		})
	}
}

func TestRegister_LongestPassword(t *testing.T) {
	svc, _ := newTestService(t)
	password := strings.Repeat("p", 72)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Max", Email: "max@example.com", Password: password,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "max@example.com", password)
	assert.NoError(t, err)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "dup@example.com", "")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "dup@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, s := newTestService(t)
	reg := register(t, svc, "bob@example.com", "ADMIN")
	ctx := context.Background()

	res, err := svc.Login(ctx, "bob@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	user, ok := svc.ValidateToken(ctx, res.Token)
	require.True(t, ok)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	failed := store.AuditLoginFailed
	entries, err := s.ListAuditLog(ctx, store.AuditFilter{Action: &failed})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	ok2 := store.AuditLoginSucceeded
	entries, err = s.ListAuditLog(ctx, store.AuditFilter{Action: &ok2})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestValidateToken_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, ok := svc.ValidateToken(ctx, "")
	assert.False(t, ok)

	_, ok = svc.ValidateToken(ctx, "garbage")
	assert.False(t, ok)

	other, err := auth.NewJWTVerifier([]byte("a-completely-different-secret-32b"))
	require.NoError(t, err)
	foreign, err := other.Generate("someone", time.Hour)
	require.NoError(t, err)
	_, ok = svc.ValidateToken(ctx, foreign)
	assert.False(t, ok)
}

func TestValidateToken_DeletedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := register(t, svc, "admin@example.com", "ADMIN")
	victim := register(t, svc, "victim@example.com", "")

	err := svc.DeleteUser(ctx, auth.PrincipalFromUser(admin.User), victim.User.ID)
	require.NoError(t, err)

	_, ok := svc.ValidateToken(ctx, victim.Token)
	assert.False(t, ok)
}

func TestDeleteUser_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "user@example.com", "")

	err := svc.DeleteUser(ctx, auth.PrincipalFromUser(user.User), user.User.ID)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	admin := register(t, svc, "admin@example.com", "ADMIN")
	err = svc.DeleteUser(ctx, auth.PrincipalFromUser(admin.User), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	err = svc.DeleteUser(ctx, auth.PrincipalFromUser(admin.User), admin.User.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestListUsers_AdminOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := register(t, svc, "admin@example.com", "ADMIN")
	user := register(t, svc, "user@example.com", "")

	_, err := svc.ListUsers(ctx, auth.PrincipalFromUser(user.User))
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	users, err := svc.ListUsers(ctx, auth.PrincipalFromUser(admin.User))
	require.NoError(t, err)
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{"admin@example.com", "user@example.com"}, emails)
}

func TestListAuditLog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := register(t, svc, "admin@example.com", "ADMIN")
	victim := register(t, svc, "victim@example.com", "")
	actor := auth.PrincipalFromUser(admin.User)
	require.NoError(t, svc.DeleteUser(ctx, actor, victim.User.ID))

	_, err := svc.ListAuditLog(ctx, auth.PrincipalFromUser(victim.User), store.AuditFilter{})
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	action := store.AuditDeleteUser
	entries, err := svc.ListAuditLog(ctx, actor, store.AuditFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, admin.User.ID, entries[0].ActorID)
	assert.Equal(t, victim.User.ID, entries[0].TargetID)

	all, err := svc.ListAuditLog(ctx, actor, store.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bogus := store.AuditAction("drop_tables")
	_, err = svc.ListAuditLog(ctx, actor, store.AuditFilter{Action: &bogus})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.ListAuditLog(ctx, actor, store.AuditFilter{Limit: -1})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestMe(t *testing.T) {
	svc, _ := newTestService(t)
	reg := register(t, svc, "me@example.com", "")

	user, err := svc.Me(context.Background(), auth.PrincipalFromUser(reg.User))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)

	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestBootstrap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, password, err := svc.Bootstrap(ctx, "Owner", "owner@example.com", "ops")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, password)

	login, err := svc.Login(ctx, "owner@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, _, err = svc.Bootstrap(ctx, "Second", "second@example.com", "ops")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}
