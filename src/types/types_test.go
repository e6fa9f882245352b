package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleHasCapability(t *testing.T) {
	assert.True(t, RoleHasCapability(ROLE_ADMIN, CAP_APPROVE_WITHDRAW))
	assert.True(t, RoleHasCapability(ROLE_ADMIN, CAP_RESOLVE_DISPUTE))
	assert.True(t, RoleHasCapability(ROLE_MODERATOR, CAP_RESOLVE_DISPUTE))

	assert.False(t, RoleHasCapability(ROLE_MODERATOR, CAP_APPROVE_WITHDRAW))
	assert.False(t, RoleHasCapability(ROLE_CLIENT, CAP_RESOLVE_DISPUTE))
	assert.False(t, RoleHasCapability(ROLE_PROFESSIONAL, CAP_VERIFY_PROFESSIONAL))
	assert.False(t, RoleHasCapability(Role("unknown"), CAP_RESOLVE_DISPUTE))
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, 409, ErrorStatus(ErrSlotConflict))
	assert.Equal(t, 409, ErrorStatus(ErrStateConflict))
	assert.Equal(t, 422, ErrorStatus(ErrInsufficientBalance))
	assert.Equal(t, 404, ErrorStatus(ErrNotFound))
	assert.Equal(t, 403, ErrorStatus(ErrPermissionDenied))
	assert.Equal(t, 502, ErrorStatus(ErrGateway))
	assert.Equal(t, 500, ErrorStatus(assert.AnError))
}
