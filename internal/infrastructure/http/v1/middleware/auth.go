package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/apperror"
	appctx "pharmaledger/internal/core/context"
	"pharmaledger/internal/core/security"
)

// HeaderDeviceID carries the identifier of an SMS gateway device.
const HeaderDeviceID = "Device-ID"

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth middleware validates JWT tokens and populates user context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil || user == nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", user.UserID.String())

		c.Next()
	}
}

// RequireCapability rejects requests whose role lacks the capability.
// Must run after Auth.
func RequireCapability(authz security.Authorizer, capability security.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if err := authz.Allow(user.Role, capability); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// DeviceAuth admits requests whose Device-ID header is in the allow-list.
// An empty allow-list rejects every device.
func DeviceAuth(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if deviceID == "" {
			abortUnauthorized(c, "missing device id")
			return
		}
		if !slices.Contains(allowed, deviceID) {
			_ = c.Error(apperror.NewForbidden("unknown device"))
			c.Abort()
			return
		}
		c.Set("device_id", deviceID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
