package services

import (
	"awp/internal/models"
	"awp/pkg/errors"
	"sort"
)

// TenantContext 一次请求的租户上下文
//
// 每个请求生命周期内有且只有一个实例，构造后不可变，只在请求内传递，
// 从不落库。所有租户范围的数据操作都以它（而不是裸的租户ID）为入参。
type TenantContext struct {
	TenantID       uint        `json:"tenant_id"`
	ActorID        uint        `json:"actor_id"`
	Role           models.Role `json:"role"`
	IsImpersonated bool        `json:"is_impersonated"`
}

// ResolveHints 上下文解析的显式提示
//
// 提示来自被排除在核心之外的传输层（会话存储、请求头），本身不代表
// 任何权限：每一项在解析时都会被重新校验。
type ResolveHints struct {
	SessionTenantID     uint // 会话记录的当前租户，0表示无
	ImpersonateTenantID uint // 模拟访问的目标租户，0表示无
}

// TenantContextResolver 租户上下文解析器
//
// 解析优先级（命中即返回）：
//  1. 模拟访问：平台管理员可进入任意未删除租户，合成owner上下文，
//     完全绕过成员关系查询
//  2. 会话提示的租户，按生效成员关系校验，无效则静默丢弃
//  3. 用户的默认租户，同样校验
//  4. 所有生效成员关系中角色最高的一个
//
// 全部落空返回 ErrNoTenantAccess。只读，无副作用，同一存储状态下
// 多次调用结果一致。
type TenantContextResolver struct {
	memberships MembershipRepository
	actors      ActorLookup
	tenants     TenantLookup
}

// NewTenantContextResolver 创建上下文解析器
func NewTenantContextResolver() *TenantContextResolver {
	repo := NewMembershipRepository()
	return &TenantContextResolver{
		memberships: repo,
		actors:      repo,
		tenants:     repo,
	}
}

// NewTenantContextResolverWith 以指定查询实现创建解析器
func NewTenantContextResolverWith(memberships MembershipRepository, actors ActorLookup, tenants TenantLookup) *TenantContextResolver {
	return &TenantContextResolver{
		memberships: memberships,
		actors:      actors,
		tenants:     tenants,
	}
}

// Resolve 解析租户上下文
func (r *TenantContextResolver) Resolve(actorID uint, hints ResolveHints) (*TenantContext, error) {
	// 1. 模拟访问覆盖：提权校验独立于令牌，重新读用户记录
	if hints.ImpersonateTenantID != 0 {
		ctx, err := r.resolveImpersonation(actorID, hints.ImpersonateTenantID)
		if err != nil {
			return nil, err
		}
		if ctx != nil {
			return ctx, nil
		}
		// 校验不通过时丢弃提示，继续常规解析
	}

	// 2. 会话提示的租户
	if hints.SessionTenantID != 0 {
		ctx, err := r.resolveByMembership(actorID, hints.SessionTenantID)
		if err != nil {
			return nil, err
		}
		if ctx != nil {
			return ctx, nil
		}
	}

	// 3. 用户的默认租户
	defaultTenantID, err := r.memberships.DefaultTenantID(actorID)
	if err != nil {
		return nil, err
	}
	if defaultTenantID != 0 {
		ctx, err := r.resolveByMembership(actorID, defaultTenantID)
		if err != nil {
			return nil, err
		}
		if ctx != nil {
			return ctx, nil
		}
	}

	// 4. 角色最高的生效成员关系
	memberships, err := r.memberships.ActiveMemberships(actorID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, errors.ErrNoTenantAccess
	}

	// 按角色优先级排序，并以租户ID打破平局，保证解析结果稳定
	sort.Slice(memberships, func(i, j int) bool {
		ri, rj := memberships[i].Role.ResolutionRank(), memberships[j].Role.ResolutionRank()
		if ri != rj {
			return ri < rj
		}
		return memberships[i].TenantID < memberships[j].TenantID
	})

	best := memberships[0]
	return &TenantContext{
		TenantID: best.TenantID,
		ActorID:  actorID,
		Role:     best.Role,
	}, nil
}

// resolveImpersonation 处理模拟访问，不满足条件返回 (nil, nil)
func (r *TenantContextResolver) resolveImpersonation(actorID, tenantID uint) (*TenantContext, error) {
	actor, err := r.actors.Actor(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.IsPlatformAdmin {
		return nil, nil
	}

	tenant, err := r.tenants.ActiveTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, nil
	}

	// 模拟访问无需真实成员关系，角色固定为owner等价
	return &TenantContext{
		TenantID:       tenant.ID,
		ActorID:        actorID,
		Role:           models.RoleOwner,
		IsImpersonated: true,
	}, nil
}

// resolveByMembership 校验指定租户的生效成员关系，无效返回 (nil, nil)
func (r *TenantContextResolver) resolveByMembership(actorID, tenantID uint) (*TenantContext, error) {
	membership, err := r.memberships.ActiveMembership(actorID, tenantID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, nil
	}
	return &TenantContext{
		TenantID: membership.TenantID,
		ActorID:  actorID,
		Role:     membership.Role,
	}, nil
}
