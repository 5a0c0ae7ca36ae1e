package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/domain/auth"
)

type memUsers struct {
	items map[id.ID]auth.User
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.items[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	u, ok := m.items[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range m.items {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (m *memUsers) Update(_ context.Context, u *auth.User) error {
	m.items[u.ID] = *u
	return nil
}

func (m *memUsers) List(context.Context, auth.UserFilter) ([]auth.User, int, error) {
	return nil, 0, nil
}

func (m *memUsers) Exists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

type memTokens struct {
	revoked map[id.ID]string
}

func (m *memTokens) SaveRefreshToken(context.Context, *auth.RefreshToken) error { return nil }

func (m *memTokens) GetRefreshToken(_ context.Context, hash string) (*auth.RefreshToken, error) {
	return nil, apperror.NewNotFound("refresh token", hash)
}

func (m *memTokens) RevokeRefreshToken(context.Context, id.ID, string) error { return nil }

func (m *memTokens) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	m.revoked[userID] = reason
	return nil
}

func (m *memTokens) CleanupExpiredTokens(context.Context) (int, error) { return 0, nil }

func authEngine(t *testing.T, caller id.ID) (*gin.Engine, *memUsers, *memTokens) {
	t.Helper()
	users := &memUsers{items: map[id.ID]auth.User{}}
	tokens := &memTokens{revoked: map[id.ID]string{}}
	svc := auth.NewService(users, tokens, &tx.MockManager{},
		auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
		security.NewRoleAuthorizer(), auth.DefaultServiceConfig())
	h := NewAuthHandler(NewBaseHandler(), svc, security.NewRoleAuthorizer())

	r := newTestEngine(caller)
	h.RegisterRoutes(r.Group(""), r.Group(""))
	return r, users, tokens
}

func seedUser(t *testing.T, users *memUsers, userID id.ID, username, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := auth.NewUser(username, string(hash), security.RoleAdmin)
	u.ID = userID
	users.items[u.ID] = *u
	return u
}

func TestChangePasswordRoute(t *testing.T) {
	callerID := id.New()
	r, users, tokens := authEngine(t, callerID)

	seedUser(t, users, callerID, "tester", "password123")
	other := seedUser(t, users, id.New(), "other", "password456")

	path := "/users/" + callerID.String() + "/password"

	w := send(t, r, http.MethodPut, path, map[string]any{"oldPassword": "nope-nope", "newPassword": "brand-new-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeValidation, decode(t, w)["code"])

	w = send(t, r, http.MethodPut, path, map[string]any{"oldPassword": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(t, r, http.MethodPut, "/users/"+other.ID.String()+"/password",
		map[string]any{"oldPassword": "password123", "newPassword": "brand-new-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(t, r, http.MethodPut, path, map[string]any{"oldPassword": "password123", "newPassword": "brand-new-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	stored := users.items[callerID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new-1")))
	assert.Equal(t, "password changed", tokens.revoked[callerID])
	assert.NotContains(t, tokens.revoked, other.ID)
}

func TestUpdateUserRoute(t *testing.T) {
	callerID := id.New()
	r, users, _ := authEngine(t, callerID)
	seedUser(t, users, callerID, "tester", "password123")

	w := send(t, r, http.MethodPut, "/users/"+callerID.String(), map[string]any{"firstName": "Dilnoza"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Dilnoza", decode(t, w)["firstName"])

	w = send(t, r, http.MethodPut, "/users/"+callerID.String(), map[string]any{"role": "superadmin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, security.RoleAdmin, users.items[callerID].Role)
}
