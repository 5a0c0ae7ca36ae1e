package handlers

import (
	"github.com/gin-gonic/gin"

	"pharmaledger/internal/core/security"
	"pharmaledger/internal/domain/auth"
	"pharmaledger/internal/infrastructure/http/v1/dto"
	"pharmaledger/internal/infrastructure/http/v1/middleware"
)

// AuthHandler handles authentication and user management endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
	authz   security.Authorizer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service, authz security.Authorizer) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
		authz:       authz,
	}
}

// Register handles POST /users. The service re-checks the caller's role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.Owner(c)
	if !ok {
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// ListUsers handles GET /users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), auth.UserFilter{
		Search:   q.Search,
		IsActive: q.IsActive,
		Role:     security.Role(q.Role),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.UserResponse, len(users))
	for i := range users {
		items[i] = dto.FromUser(&users[i])
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(total),
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
}

// GetUser handles GET /users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// UpdateUser handles PUT /users/:id. Users may edit their own profile.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), userID, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// ChangePassword handles PUT /users/:id/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.ToAuthRequest()); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "password changed")
}

// RegisterRoutes registers auth and user routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)

	protected.POST("/auth/logout", h.Logout)
	protected.GET("/auth/me", h.Me)

	users := protected.Group("/users", middleware.RequireCapability(h.authz, security.CapManageUsers))
	users.POST("", h.Register)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)

	// Self-service: the service allows the account owner or a user manager.
	protected.PUT("/users/:id", h.UpdateUser)
	protected.PUT("/users/:id/password", h.ChangePassword)
}
