package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	appctx "pharmaledger/internal/core/context"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
	"pharmaledger/internal/core/tx"
)

type memUsers struct {
	byID map[id.ID]User
}

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (m *memUsers) Update(_ context.Context, u *User) error {
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) List(_ context.Context, f UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range m.byID {
		if f.Search == "" || strings.Contains(u.Username, f.Search) {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

func (m *memUsers) Exists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

type memTokens struct {
	byHash map[string]*RefreshToken
}

func (m *memTokens) SaveRefreshToken(_ context.Context, t *RefreshToken) error {
	m.byHash[t.TokenHash] = t
	return nil
}

func (m *memTokens) GetRefreshToken(_ context.Context, hash string) (*RefreshToken, error) {
	t, ok := m.byHash[hash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", hash)
	}
	return t, nil
}

func (m *memTokens) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
		}
	}
	return nil
}

func (m *memTokens) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = &reason
		}
	}
	return nil
}

func (m *memTokens) CleanupExpiredTokens(context.Context) (int, error) {
	n := 0
	for hash, t := range m.byHash {
		if time.Now().After(t.ExpiresAt) {
			delete(m.byHash, hash)
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *memUsers, *memTokens) {
	users := &memUsers{byID: map[id.ID]User{}}
	tokens := &memTokens{byHash: map[string]*RefreshToken{}}
	svc := NewService(users, tokens, &tx.MockManager{},
		NewJWTService(DefaultJWTConfig("test-secret")),
		security.NewRoleAuthorizer(),
		DefaultServiceConfig())
	return svc, users, tokens
}

func as(role security.Role) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New(), Role: role})
}

func TestRegisterRequiresSuperAdmin(t *testing.T) {
	svc, users, _ := newTestService()
	req := RegisterRequest{Username: "operator", Password: "password123"}

	_, err := svc.Register(context.Background(), req)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, err = svc.Register(as(security.RoleAdmin), req)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	assert.Empty(t, users.byID)

	u, err := svc.Register(as(security.RoleSuperAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, security.RoleAdmin, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err = svc.Register(as(security.RoleSuperAdmin), req)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := as(security.RoleSuperAdmin)

	_, err := svc.Register(ctx, RegisterRequest{Username: "x", Password: "short"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.Register(ctx, RegisterRequest{Username: "x", Password: "password123", Role: "root"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.Register(ctx, RegisterRequest{Password: "password123"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLoginRefreshLogout(t *testing.T) {
	svc, _, tokens := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.EnsureSuperAdmin(ctx, "root", "rootpassword"))
	require.NoError(t, svc.EnsureSuperAdmin(ctx, "root", "ignored-second-call"))

	pair, user, err := svc.Login(ctx, Credentials{Username: "root", Password: "rootpassword"})
	require.NoError(t, err)
	assert.Equal(t, security.RoleSuperAdmin, user.Role)
	assert.NotNil(t, user.LastLoginAt)

	uc, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uc.UserID)
	assert.True(t, uc.IsSuperAdmin())

	_, stored := tokens.byHash[hashToken(pair.RefreshToken)]
	assert.True(t, stored)
	_, rawStored := tokens.byHash[pair.RefreshToken]
	assert.False(t, rawStored)

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	require.NoError(t, svc.Logout(ctx, user.ID))
	_, err = svc.RefreshToken(ctx, next.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestLoginLocksAfterFailures(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.EnsureSuperAdmin(ctx, "root", "rootpassword"))

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(ctx, Credentials{Username: "root", Password: "wrong"})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, _, err := svc.Login(ctx, Credentials{Username: "root", Password: "rootpassword"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestListUsersRequiresSuperAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.EnsureSuperAdmin(context.Background(), "root", "rootpassword"))

	_, _, err := svc.ListUsers(as(security.RoleAdmin), UserFilter{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	users, total, err := svc.ListUsers(as(security.RoleSuperAdmin), UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "root", users[0].Username)
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, _, tokens := newTestService()
	tokens.byHash["old"] = &RefreshToken{ID: id.New(), ExpiresAt: time.Now().Add(-time.Hour)}
	tokens.byHash["new"] = &RefreshToken{ID: id.New(), ExpiresAt: time.Now().Add(time.Hour)}

	n, err := svc.CleanupExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, tokens.byHash, 1)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	other := NewJWTService(DefaultJWTConfig("other-secret"))
	token, _, err := other.GenerateAccessToken(NewUser("eve", "", security.RoleSuperAdmin), "s")
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(token)
	assert.Error(t, err)
}

func withUser(userID id.ID, role security.Role) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID, Role: role})
}

func TestChangePassword(t *testing.T) {
	svc, users, tokens := newTestService()
	u, err := svc.Register(as(security.RoleSuperAdmin), RegisterRequest{Username: "operator", Password: "password123"})
	require.NoError(t, err)

	pair, _, err := svc.Login(context.Background(), Credentials{Username: "operator", Password: "password123"})
	require.NoError(t, err)

	self := withUser(u.ID, security.RoleAdmin)

	err = svc.ChangePassword(self, u.ID, ChangePasswordRequest{OldPassword: "wrong-one", NewPassword: "newpassword1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = svc.ChangePassword(self, u.ID, ChangePasswordRequest{OldPassword: "password123", NewPassword: "short"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = svc.ChangePassword(self, u.ID, ChangePasswordRequest{OldPassword: "password123", NewPassword: "password123"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = svc.ChangePassword(withUser(id.New(), security.RoleAdmin), u.ID,
		ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = svc.ChangePassword(context.Background(), u.ID,
		ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	require.NoError(t, svc.ChangePassword(self, u.ID,
		ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"}))

	assert.NotEqual(t, u.PasswordHash, users.byID[u.ID].PasswordHash)
	assert.NotNil(t, tokens.byHash[hashToken(pair.RefreshToken)].RevokedAt)

	_, err = svc.RefreshToken(context.Background(), pair.RefreshToken)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, _, err = svc.Login(context.Background(), Credentials{Username: "operator", Password: "password123"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	_, _, err = svc.Login(context.Background(), Credentials{Username: "operator", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestSuperAdminChangesOtherPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.EnsureSuperAdmin(ctx, "root", "rootpassword"))
	root, err := svc.userRepo.GetByUsername(ctx, "root")
	require.NoError(t, err)

	u, err := svc.Register(as(security.RoleSuperAdmin), RegisterRequest{Username: "operator", Password: "password123"})
	require.NoError(t, err)

	admin := withUser(root.ID, security.RoleSuperAdmin)
	require.NoError(t, svc.ChangePassword(admin, u.ID,
		ChangePasswordRequest{OldPassword: "rootpassword", NewPassword: "reset-pass-1"}))

	_, _, err = svc.Login(ctx, Credentials{Username: "operator", Password: "reset-pass-1"})
	assert.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	svc, users, _ := newTestService()
	u, err := svc.Register(as(security.RoleSuperAdmin), RegisterRequest{Username: "operator", Password: "password123"})
	require.NoError(t, err)

	self := withUser(u.ID, security.RoleAdmin)
	updated, err := svc.UpdateUser(self, u.ID, UpdateUserRequest{FirstName: "Aziz", PhoneNumber: "+998901234567"})
	require.NoError(t, err)
	assert.Equal(t, "Aziz", updated.FirstName)
	assert.Equal(t, "Aziz", users.byID[u.ID].FirstName)

	promote := string(security.RoleSuperAdmin)
	_, err = svc.UpdateUser(self, u.ID, UpdateUserRequest{Role: &promote})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	assert.Equal(t, security.RoleAdmin, users.byID[u.ID].Role)

	inactive := false
	updated, err = svc.UpdateUser(as(security.RoleSuperAdmin), u.ID, UpdateUserRequest{Role: &promote, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, security.RoleSuperAdmin, updated.Role)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateUser(withUser(id.New(), security.RoleAdmin), u.ID, UpdateUserRequest{})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}
