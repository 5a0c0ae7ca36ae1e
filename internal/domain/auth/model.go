package auth

import (
	"context"
	"strings"
	"time"

	"pharmaledger/internal/core/apperror"
	"pharmaledger/internal/core/id"
	"pharmaledger/internal/core/security"
)

// User represents a system user. Every ledger record is owned by one.
type User struct {
	ID                  id.ID         `db:"id" json:"id"`
	Username            string        `db:"username" json:"username"`
	PasswordHash        string        `db:"password_hash" json:"-"`
	FirstName           string        `db:"first_name" json:"firstName,omitempty"`
	LastName            string        `db:"last_name" json:"lastName,omitempty"`
	PhoneNumber         string        `db:"phone_number" json:"phoneNumber,omitempty"`
	Role                security.Role `db:"role" json:"role"`
	IsActive            bool          `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time    `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int           `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time    `db:"locked_until" json:"-"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new active user.
func NewUser(username, passwordHash string, role security.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if strings.TrimSpace(u.Username) == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if len(u.Username) > 150 {
		return apperror.NewValidation("username is too long").WithDetail("field", "username")
	}
	if _, err := security.ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
	u.UpdatedAt = time.Now().UTC()
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// FullName returns user's full name.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// RefreshToken represents a refresh token for JWT refresh.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
}

// IsValid checks if refresh token is valid.
func (t *RefreshToken) IsValid() bool {
	if t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=150"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"firstName,omitempty" validate:"max=150"`
	LastName    string `json:"lastName,omitempty" validate:"max=150"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"max=20"`
	Role        string `json:"role,omitempty"`
}

// ChangePasswordRequest changes a user's password. OldPassword is the
// caller's current password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateUserRequest edits a user's profile. Role and IsActive are applied
// only for callers allowed to manage users.
type UpdateUserRequest struct {
	FirstName   string  `json:"firstName" validate:"max=150"`
	LastName    string  `json:"lastName" validate:"max=150"`
	PhoneNumber string  `json:"phoneNumber" validate:"max=20"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	Role     security.Role
	Limit    int
	Offset   int
}
