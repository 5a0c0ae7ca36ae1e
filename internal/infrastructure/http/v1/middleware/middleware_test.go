package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
	appctx "pharmaledger/internal/core/context"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	users map[string]*appctx.UserContext
}

func (f fakeValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": appctx.GetUserID(c.Request.Context()).String()})
	})
	return r
}

func do(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestAuth(t *testing.T) {
	admin := &appctx.UserContext{UserID: id.New(), Username: "a", Role: security.RoleAdmin}
	r := newEngine(Auth(fakeValidator{users: map[string]*appctx.UserContext{"good": admin}}))

	w := do(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperror.CodeUnauthorized, decodeCode(t, w))

	w = do(r, map[string]string{"Authorization": "Token good"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), admin.UserID.String())
}

func TestRequireCapability(t *testing.T) {
	admin := &appctx.UserContext{UserID: id.New(), Role: security.RoleAdmin}
	super := &appctx.UserContext{UserID: id.New(), Role: security.RoleSuperAdmin}
	v := fakeValidator{users: map[string]*appctx.UserContext{"admin": admin, "super": super}}
	r := newEngine(Auth(v), RequireCapability(security.NewRoleAuthorizer(), security.CapManageUsers))

	w := do(r, map[string]string{"Authorization": "Bearer admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, decodeCode(t, w))

	w = do(r, map[string]string{"Authorization": "Bearer super"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapabilityWithoutUser(t *testing.T) {
	r := newEngine(RequireCapability(security.NewRoleAuthorizer(), security.CapLedger))
	w := do(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeviceAuth(t *testing.T) {
	r := newEngine(DeviceAuth([]string{"dev-1"}))

	assert.Equal(t, http.StatusUnauthorized, do(r, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, map[string]string{HeaderDeviceID: "dev-2"}).Code)
	assert.Equal(t, http.StatusOK, do(r, map[string]string{HeaderDeviceID: "dev-1"}).Code)
}

func TestErrorHandlerUnknownError(t *testing.T) {
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := do(r, map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decodeCode(t, w))
	assert.Contains(t, w.Body.String(), "req-1")
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestErrorHandlerAppError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("p1", 10, 3))
	})

	w := do(r, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperror.CodeInsufficientStock, decodeCode(t, w))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Recovery())
	r.GET("/x", func(c *gin.Context) {
		panic("kaboom")
	})

	w := do(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2))

	assert.Equal(t, http.StatusOK, do(r, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, nil).Code)

	w := do(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apperror.CodeRateLimited, decodeCode(t, w))
}

func TestRateLimitDisabled(t *testing.T) {
	r := newEngine(RateLimit(0))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, nil).Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	r := newEngine(SecureHeaders(false))

	w := do(r, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
