package services

import (
	"testing"

	"awp/internal/models"
	"awp/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeMatrix(t *testing.T) {
	policy := NewPermissionPolicy()

	tests := []struct {
		name       string
		role       models.Role
		permission string
		want       bool
	}{
		{"owner可调整角色", models.RoleOwner, PermMemberChangeRole, true},
		{"admin不可调整角色", models.RoleAdmin, PermMemberChangeRole, false},
		{"admin可邀请成员", models.RoleAdmin, PermMemberInvite, true},
		{"member不可邀请成员", models.RoleMember, PermMemberInvite, false},
		{"member可查看成员", models.RoleMember, PermMemberView, true},
		{"仅owner可删除租户", models.RoleAdmin, PermTenantDelete, false},
		{"仅owner可管理账务", models.RoleAdmin, PermBillingManage, false},
		{"member可创建咨询", models.RoleMember, PermConsultationCreate, true},
		{"member不可view_all", models.RoleMember, PermConsultationViewAll, false},
		{"member可view_own", models.RoleMember, PermConsultationViewOwn, true},
		{"member不可创建合同", models.RoleMember, PermContractCreate, false},
		{"admin可签署合同", models.RoleAdmin, PermContractSign, true},
		{"admin不可delete_all提案", models.RoleAdmin, PermProposalDeleteAll, false},
		{"admin可delete_own提案", models.RoleAdmin, PermProposalDeleteOwn, true},
		{"admin不可作废账单", models.RoleAdmin, PermInvoiceVoid, false},
		{"owner可作废账单", models.RoleOwner, PermInvoiceVoid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Authorize(tt.role, tt.permission))
		})
	}
}

func TestAuthorizeUnknownPermission(t *testing.T) {
	policy := NewPermissionPolicy()

	// 未登记的权限键一律拒绝，owner也不例外
	assert.False(t, policy.Authorize(models.RoleOwner, "unknown:anything"))
}

func TestAuthorizeInvalidRole(t *testing.T) {
	policy := NewPermissionPolicy()

	assert.False(t, policy.Authorize(models.Role("superuser"), PermMemberView))
}

func TestAuthorizeOwnershipTwoTier(t *testing.T) {
	policy := NewPermissionPolicy()

	// admin持有edit_all：他人资源也放行
	assert.True(t, policy.AuthorizeOwnership(models.RoleAdmin,
		PermConsultationEditAll, PermConsultationEditOwn, 99, 1))

	// member只有edit_own：本人资源放行
	assert.True(t, policy.AuthorizeOwnership(models.RoleMember,
		PermConsultationEditAll, PermConsultationEditOwn, 1, 1))

	// member对他人资源拒绝
	assert.False(t, policy.AuthorizeOwnership(models.RoleMember,
		PermConsultationEditAll, PermConsultationEditOwn, 99, 1))

	// admin对合同删除是非单调的典型：delete_all仅owner，
	// admin凭delete_own只能删本人的
	assert.False(t, policy.AuthorizeOwnership(models.RoleAdmin,
		PermContractDeleteAll, PermContractDeleteOwn, 99, 1))
	assert.True(t, policy.AuthorizeOwnership(models.RoleAdmin,
		PermContractDeleteAll, PermContractDeleteOwn, 1, 1))
	assert.True(t, policy.AuthorizeOwnership(models.RoleOwner,
		PermContractDeleteAll, PermContractDeleteOwn, 99, 1))
}

func TestAtLeast(t *testing.T) {
	policy := NewPermissionPolicy()

	assert.True(t, policy.AtLeast(models.RoleOwner, models.RoleAdmin))
	assert.True(t, policy.AtLeast(models.RoleAdmin, models.RoleAdmin))
	assert.False(t, policy.AtLeast(models.RoleMember, models.RoleAdmin))
}

func TestRequireReturnsSentinel(t *testing.T) {
	policy := NewPermissionPolicy()

	err := policy.Require(models.RoleMember, PermMemberInvite)
	assert.ErrorIs(t, err, errors.ErrPermissionDenied)

	assert.NoError(t, policy.Require(models.RoleAdmin, PermMemberInvite))
}

func TestRequireOwnershipReturnsSentinel(t *testing.T) {
	policy := NewPermissionPolicy()

	err := policy.RequireOwnership(models.RoleMember,
		PermProposalEditAll, PermProposalEditOwn, 99, 1)
	assert.ErrorIs(t, err, errors.ErrPermissionDenied)
}

func TestRoleHierarchyAndRank(t *testing.T) {
	assert.Greater(t, models.RoleOwner.Hierarchy(), models.RoleAdmin.Hierarchy())
	assert.Greater(t, models.RoleAdmin.Hierarchy(), models.RoleMember.Hierarchy())
	assert.Equal(t, 0, models.Role("ghost").Hierarchy())

	assert.Less(t, models.RoleOwner.ResolutionRank(), models.RoleAdmin.ResolutionRank())
	assert.Less(t, models.RoleAdmin.ResolutionRank(), models.RoleMember.ResolutionRank())

	assert.True(t, models.RoleOwner.IsValid())
	assert.False(t, models.Role("ghost").IsValid())
}
