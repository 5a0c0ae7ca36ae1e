package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pharmaledger/internal/core/apperror"
	appctx "pharmaledger/internal/core/context"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
	"pharmaledger/internal/core/tx"
	"pharmaledger/internal/core/validation"
	"pharmaledger/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
	}
}

// Service provides authentication and user management.
type Service struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	authz      security.Authorizer
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	authz security.Authorizer,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		authz:      authz,
		config:     config,
	}
}

// requireCapability checks the caller stored in ctx.
func (s *Service) requireCapability(ctx context.Context, capability security.Capability) error {
	caller := appctx.GetUser(ctx)
	if caller == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	return s.authz.Allow(caller.Role, capability)
}

// Register creates a user. Only callers allowed to manage users may do so.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := s.requireCapability(ctx, security.CapManageUsers); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req)
}

// EnsureSuperAdmin creates the bootstrap superadmin when the username is free.
// It is called at startup, outside any request.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, password string) error {
	exists, err := s.userRepo.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username exists: %w", err)
	}
	if exists {
		return nil
	}
	_, err = s.createUser(ctx, RegisterRequest{
		Username: username,
		Password: password,
		Role:     string(security.RoleSuperAdmin),
	})
	return err
}

func (s *Service) createUser(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	role, err := security.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Username, string(passwordHash), role)
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.Exists(ctx, req.Username)
		if err != nil {
			return fmt.Errorf("check username exists: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("user", "username", req.Username)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role)

	return user, nil
}

// Login authenticates user and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", err)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username)

	return tokens, user, nil
}

// RefreshToken rotates a refresh token into a new token pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.generateTokenPair(ctx, user)
}

// Logout revokes all user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// Me returns the calling user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	caller := appctx.GetUser(ctx)
	if caller == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return s.GetUserByID(ctx, caller.UserID)
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// ListUsers lists users. Only callers allowed to manage users may do so.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	if err := s.requireCapability(ctx, security.CapManageUsers); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.userRepo.List(ctx, filter)
}

// authorizeUserAccess lets callers act on their own account, and callers
// allowed to manage users act on any account.
func (s *Service) authorizeUserAccess(ctx context.Context, userID id.ID) (*appctx.UserContext, error) {
	caller := appctx.GetUser(ctx)
	if caller == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	if caller.UserID == userID {
		return caller, nil
	}
	if err := s.authz.Allow(caller.Role, security.CapManageUsers); err != nil {
		return nil, err
	}
	return caller, nil
}

// ChangePassword sets a new password for userID after re-checking the
// caller's current password. Every refresh token of the user is revoked.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, req ChangePasswordRequest) error {
	caller, err := s.authorizeUserAccess(ctx, userID)
	if err != nil {
		return err
	}
	if err := validation.Struct(req); err != nil {
		return err
	}
	if len(req.NewPassword) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "newPassword")
	}
	if req.NewPassword == req.OldPassword {
		return apperror.NewValidation("new password must differ from the current one").
			WithDetail("field", "newPassword")
	}

	self, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return apperror.NewUnauthorized("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(self.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperror.NewValidation("current password is incorrect").WithDetail("field", "oldPassword")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return apperror.NewNotFound("user", userID.String())
		}
		user.PasswordHash = string(hash)
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "password changed")
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "password changed", "user_id", userID, "by", caller.UserID)
	return nil
}

// UpdateUser edits a profile. Role and active flag changes need the
// user-management capability; deactivating a user revokes its tokens.
func (s *Service) UpdateUser(ctx context.Context, userID id.ID, req UpdateUserRequest) (*User, error) {
	caller, err := s.authorizeUserAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Role != nil || req.IsActive != nil {
		if err := s.authz.Allow(caller.Role, security.CapManageUsers); err != nil {
			return nil, err
		}
	}

	var user *User
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return apperror.NewNotFound("user", userID.String())
		}
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.PhoneNumber = req.PhoneNumber
		if req.Role != nil {
			role, err := security.ParseRole(*req.Role)
			if err != nil {
				return err
			}
			user.Role = role
		}
		deactivated := req.IsActive != nil && !*req.IsActive && user.IsActive
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		if err := user.Validate(ctx); err != nil {
			return err
		}
		user.UpdatedAt = time.Now().UTC()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if deactivated {
			return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "deactivated")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user updated", "user_id", userID, "by", caller.UserID)
	return user, nil
}

// CleanupExpiredTokens removes expired refresh tokens.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.tokenRepo.CleanupExpiredTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired tokens: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "expired refresh tokens removed", "count", n)
	}
	return n, nil
}

// ValidateAccessToken parses an access token into a user context.
func (s *Service) ValidateAccessToken(token string) (*appctx.UserContext, error) {
	return s.jwtService.ValidateToken(token)
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user, refreshToken.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshToken.TokenHash = hashToken(refreshTokenRaw)

	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
