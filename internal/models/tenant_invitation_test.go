package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvitationIsValid(t *testing.T) {
	invitation := &TenantInvitation{
		Status:    InvitationStatusPending,
		ExpiredAt: time.Now().Add(time.Hour),
	}
	assert.True(t, invitation.IsValid())

	// 已过期
	invitation.ExpiredAt = time.Now().Add(-time.Hour)
	assert.False(t, invitation.IsValid())

	// 已接受的邀请不再有效
	invitation.ExpiredAt = time.Now().Add(time.Hour)
	invitation.Accept()
	assert.False(t, invitation.IsValid())
	assert.NotNil(t, invitation.AcceptedAt)
}

func TestInvitationDecline(t *testing.T) {
	invitation := &TenantInvitation{
		Status:    InvitationStatusPending,
		ExpiredAt: time.Now().Add(time.Hour),
	}

	invitation.Decline()
	assert.Equal(t, InvitationStatusDeclined, invitation.Status)
	assert.NotNil(t, invitation.DeclinedAt)
	assert.False(t, invitation.IsValid())
}

func TestUserPasswordHashing(t *testing.T) {
	user := &User{}
	assert.NoError(t, user.SetPassword("S3cret!pass"))
	assert.NotEqual(t, "S3cret!pass", user.PasswordHash)

	assert.True(t, user.CheckPassword("S3cret!pass"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestTenantIsDeleted(t *testing.T) {
	tenant := &Tenant{Status: TenantStatusActive}
	assert.False(t, tenant.IsDeleted())

	scheduled := time.Now().Add(30 * 24 * time.Hour)
	tenant.DeleteScheduledAt = &scheduled
	assert.True(t, tenant.IsDeleted())
}
