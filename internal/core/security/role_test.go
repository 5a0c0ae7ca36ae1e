package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaledger/internal/core/apperror"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("superadmin")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, r)

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("manager")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRoleAuthorizer(t *testing.T) {
	a := NewRoleAuthorizer()

	tests := []struct {
		role Role
		cap  Capability
		ok   bool
	}{
		{RoleAdmin, CapLedger, true},
		{RoleAdmin, CapManageUsers, false},
		{RoleAdmin, CapArchiveCompanies, false},
		{RoleSuperAdmin, CapManageUsers, true},
		{RoleSuperAdmin, CapArchiveCompanies, true},
		{Role("ghost"), CapLedger, false},
	}
	for _, tt := range tests {
		err := a.Allow(tt.role, tt.cap)
		if tt.ok {
			assert.NoError(t, err, "%s/%s", tt.role, tt.cap)
		} else {
			assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "%s/%s", tt.role, tt.cap)
		}
	}
}
