package services

import (
	"testing"

	"awp/internal/models"
	"awp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMembershipStore 测试用内存实现
type fakeMembershipStore struct {
	memberships   []models.Membership
	users         map[uint]*models.User
	activeTenants map[uint]*models.Tenant
}

func (f *fakeMembershipStore) ActiveMembership(userID, tenantID uint) (*models.Membership, error) {
	for i := range f.memberships {
		m := f.memberships[i]
		if m.UserID == userID && m.TenantID == tenantID && m.Status == models.MembershipStatusActive {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMembershipStore) ActiveMemberships(userID uint) ([]models.Membership, error) {
	var result []models.Membership
	for _, m := range f.memberships {
		if m.UserID == userID && m.Status == models.MembershipStatusActive {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMembershipStore) DefaultTenantID(userID uint) (uint, error) {
	user, ok := f.users[userID]
	if !ok || user.DefaultTenantID == nil {
		return 0, nil
	}
	return *user.DefaultTenantID, nil
}

func (f *fakeMembershipStore) Actor(userID uint) (*models.User, error) {
	return f.users[userID], nil
}

func (f *fakeMembershipStore) ActiveTenant(tenantID uint) (*models.Tenant, error) {
	return f.activeTenants[tenantID], nil
}

func newResolver(store *fakeMembershipStore) *TenantContextResolver {
	return NewTenantContextResolverWith(store, store, store)
}

func uintPtr(v uint) *uint { return &v }

func TestResolveNoMemberships(t *testing.T) {
	store := &fakeMembershipStore{users: map[uint]*models.User{1: {}}}
	resolver := newResolver(store)

	_, err := resolver.Resolve(1, ResolveHints{})
	assert.ErrorIs(t, err, errors.ErrNoTenantAccess)
}

func TestResolveHighestRankedMembership(t *testing.T) {
	// admin在租户1，owner在租户2：owner胜出，与加入顺序无关
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleAdmin, Status: models.MembershipStatusActive},
			{UserID: 1, TenantID: 2, Role: models.RoleOwner, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{})
	require.NoError(t, err)
	assert.Equal(t, uint(2), tc.TenantID)
	assert.Equal(t, models.RoleOwner, tc.Role)
	assert.False(t, tc.IsImpersonated)
}

func TestResolveRankTieBreaksByTenantID(t *testing.T) {
	// 同为member时取租户ID较小者，结果稳定
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 9, Role: models.RoleMember, Status: models.MembershipStatusActive},
			{UserID: 1, TenantID: 3, Role: models.RoleMember, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{})
	require.NoError(t, err)
	assert.Equal(t, uint(3), tc.TenantID)
}

func TestResolveSuspendedMembershipIgnored(t *testing.T) {
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleOwner, Status: models.MembershipStatusSuspended},
		},
	}
	resolver := newResolver(store)

	_, err := resolver.Resolve(1, ResolveHints{})
	assert.ErrorIs(t, err, errors.ErrNoTenantAccess)
}

func TestResolveSessionHint(t *testing.T) {
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleOwner, Status: models.MembershipStatusActive},
			{UserID: 1, TenantID: 2, Role: models.RoleMember, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	// 会话提示优先于角色更高的成员关系
	tc, err := resolver.Resolve(1, ResolveHints{SessionTenantID: 2})
	require.NoError(t, err)
	assert.Equal(t, uint(2), tc.TenantID)
	assert.Equal(t, models.RoleMember, tc.Role)
}

func TestResolveStaleSessionHintDiscarded(t *testing.T) {
	// 提示指向已无成员关系的租户：静默丢弃，走默认租户
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {DefaultTenantID: uintPtr(1)}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleAdmin, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{SessionTenantID: 99})
	require.NoError(t, err)
	assert.Equal(t, uint(1), tc.TenantID)
	assert.Equal(t, models.RoleAdmin, tc.Role)
}

func TestResolveDefaultTenant(t *testing.T) {
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {DefaultTenantID: uintPtr(2)}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleOwner, Status: models.MembershipStatusActive},
			{UserID: 1, TenantID: 2, Role: models.RoleMember, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{})
	require.NoError(t, err)
	assert.Equal(t, uint(2), tc.TenantID)
}

func TestResolveStaleDefaultFallsThrough(t *testing.T) {
	// 默认租户的成员关系已失效：落到剩余成员关系
	store := &fakeMembershipStore{
		users: map[uint]*models.User{1: {DefaultTenantID: uintPtr(2)}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleMember, Status: models.MembershipStatusActive},
			{UserID: 1, TenantID: 2, Role: models.RoleOwner, Status: models.MembershipStatusSuspended},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{})
	require.NoError(t, err)
	assert.Equal(t, uint(1), tc.TenantID)
	assert.Equal(t, models.RoleMember, tc.Role)
}

func TestResolveImpersonation(t *testing.T) {
	// 平台管理员在目标租户没有任何成员关系，仍可进入
	store := &fakeMembershipStore{
		users:         map[uint]*models.User{1: {IsPlatformAdmin: true}},
		activeTenants: map[uint]*models.Tenant{5: {Name: "目标租户"}},
	}
	store.activeTenants[5].ID = 5
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{ImpersonateTenantID: 5})
	require.NoError(t, err)
	assert.Equal(t, uint(5), tc.TenantID)
	assert.Equal(t, models.RoleOwner, tc.Role)
	assert.True(t, tc.IsImpersonated)
}

func TestResolveImpersonationOverridesMembershipRole(t *testing.T) {
	// 即使管理员在目标租户只是member，模拟访问仍合成owner
	store := &fakeMembershipStore{
		users:         map[uint]*models.User{1: {IsPlatformAdmin: true}},
		activeTenants: map[uint]*models.Tenant{5: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 5, Role: models.RoleMember, Status: models.MembershipStatusActive},
		},
	}
	store.activeTenants[5].ID = 5
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{ImpersonateTenantID: 5})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, tc.Role)
	assert.True(t, tc.IsImpersonated)
}

func TestResolveImpersonationDeniedForNonAdmin(t *testing.T) {
	// 非平台管理员的模拟提示被丢弃，继续常规解析
	store := &fakeMembershipStore{
		users:         map[uint]*models.User{1: {IsPlatformAdmin: false}},
		activeTenants: map[uint]*models.Tenant{5: {}},
		memberships: []models.Membership{
			{UserID: 1, TenantID: 1, Role: models.RoleMember, Status: models.MembershipStatusActive},
		},
	}
	resolver := newResolver(store)

	tc, err := resolver.Resolve(1, ResolveHints{ImpersonateTenantID: 5})
	require.NoError(t, err)
	assert.Equal(t, uint(1), tc.TenantID)
	assert.False(t, tc.IsImpersonated)
}

func TestResolveImpersonationDeniedForDeletedTenant(t *testing.T) {
	// 目标租户不存在或已进入删除流程：提示失效
	store := &fakeMembershipStore{
		users:         map[uint]*models.User{1: {IsPlatformAdmin: true}},
		activeTenants: map[uint]*models.Tenant{},
	}
	resolver := newResolver(store)

	_, err := resolver.Resolve(1, ResolveHints{ImpersonateTenantID: 5})
	assert.ErrorIs(t, err, errors.ErrNoTenantAccess)
}
