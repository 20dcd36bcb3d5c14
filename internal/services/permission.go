package services

import (
	"awp/internal/models"
	"awp/pkg/errors"
	"fmt"
)

// ========== 权限键常量定义 ==========

// 成员与租户管理
const (
	PermMemberInvite     = "member:invite"
	PermMemberRemove     = "member:remove"
	PermMemberChangeRole = "member:change_role"
	PermMemberView       = "member:view"
	PermTenantUpdate     = "tenant:update"
	PermTenantDelete     = "tenant:delete"
	PermBillingManage    = "billing:manage"
	PermAuditView        = "audit:view"
)

// 咨询
const (
	PermConsultationCreate    = "consultation:create"
	PermConsultationViewOwn   = "consultation:view_own"
	PermConsultationViewAll   = "consultation:view_all"
	PermConsultationEditOwn   = "consultation:edit_own"
	PermConsultationEditAll   = "consultation:edit_all"
	PermConsultationDeleteOwn = "consultation:delete_own"
	PermConsultationDeleteAll = "consultation:delete_all"
)

// 提案
const (
	PermProposalCreate     = "proposal:create"
	PermProposalViewOwn    = "proposal:view_own"
	PermProposalViewAll    = "proposal:view_all"
	PermProposalEditOwn    = "proposal:edit_own"
	PermProposalEditAll    = "proposal:edit_all"
	PermProposalDeleteOwn  = "proposal:delete_own"
	PermProposalDeleteAll  = "proposal:delete_all"
	PermProposalGenerateAI = "proposal:generate_ai"
)

// 合同
const (
	PermContractCreate    = "contract:create"
	PermContractViewOwn   = "contract:view_own"
	PermContractViewAll   = "contract:view_all"
	PermContractEditOwn   = "contract:edit_own"
	PermContractEditAll   = "contract:edit_all"
	PermContractDeleteOwn = "contract:delete_own"
	PermContractDeleteAll = "contract:delete_all"
	PermContractSign      = "contract:sign"
)

// 账单（不做所有权细分，统一按租户管控）
const (
	PermInvoiceCreate = "invoice:create"
	PermInvoiceView   = "invoice:view"
	PermInvoiceVoid   = "invoice:void"
)

// permissionMatrix 权限矩阵：权限键 -> 允许的角色集合
//
// 矩阵是静态产品策略，领域代码只允许查矩阵，不允许散落角色比较。
// 注意能力与角色权重并不严格单调：部分 _all 能力仅owner持有，
// 而admin保留对应的 _own 能力（如合同删除、账单作废）。
var permissionMatrix = map[string][]models.Role{
	// 成员与租户管理
	PermMemberInvite:     {models.RoleOwner, models.RoleAdmin},
	PermMemberRemove:     {models.RoleOwner, models.RoleAdmin},
	PermMemberChangeRole: {models.RoleOwner},
	PermMemberView:       {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermTenantUpdate:     {models.RoleOwner, models.RoleAdmin},
	PermTenantDelete:     {models.RoleOwner},
	PermBillingManage:    {models.RoleOwner},
	PermAuditView:        {models.RoleOwner, models.RoleAdmin},

	// 咨询
	PermConsultationCreate:    {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermConsultationViewOwn:   {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermConsultationViewAll:   {models.RoleOwner, models.RoleAdmin},
	PermConsultationEditOwn:   {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermConsultationEditAll:   {models.RoleOwner, models.RoleAdmin},
	PermConsultationDeleteOwn: {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermConsultationDeleteAll: {models.RoleOwner, models.RoleAdmin},

	// 提案
	PermProposalCreate:     {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermProposalViewOwn:    {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermProposalViewAll:    {models.RoleOwner, models.RoleAdmin},
	PermProposalEditOwn:    {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermProposalEditAll:    {models.RoleOwner, models.RoleAdmin},
	PermProposalDeleteOwn:  {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermProposalDeleteAll:  {models.RoleOwner},
	PermProposalGenerateAI: {models.RoleOwner, models.RoleAdmin, models.RoleMember},

	// 合同：member不参与合同删除；delete_all 仅owner
	PermContractCreate:    {models.RoleOwner, models.RoleAdmin},
	PermContractViewOwn:   {models.RoleOwner, models.RoleAdmin, models.RoleMember},
	PermContractViewAll:   {models.RoleOwner, models.RoleAdmin},
	PermContractEditOwn:   {models.RoleOwner, models.RoleAdmin},
	PermContractEditAll:   {models.RoleOwner, models.RoleAdmin},
	PermContractDeleteOwn: {models.RoleOwner, models.RoleAdmin},
	PermContractDeleteAll: {models.RoleOwner},
	PermContractSign:      {models.RoleOwner, models.RoleAdmin},

	// 账单
	PermInvoiceCreate: {models.RoleOwner, models.RoleAdmin},
	PermInvoiceView:   {models.RoleOwner, models.RoleAdmin},
	PermInvoiceVoid:   {models.RoleOwner},
}

// 查表用的索引形式，init时由permissionMatrix构建
var permissionIndex map[string]map[models.Role]bool

func init() {
	permissionIndex = make(map[string]map[models.Role]bool, len(permissionMatrix))
	for perm, roles := range permissionMatrix {
		set := make(map[models.Role]bool, len(roles))
		for _, role := range roles {
			set[role] = true
		}
		permissionIndex[perm] = set
	}
}

// PermissionPolicy 权限策略
type PermissionPolicy struct{}

// NewPermissionPolicy 创建权限策略
func NewPermissionPolicy() *PermissionPolicy {
	return &PermissionPolicy{}
}

// Authorize 检查角色是否持有指定权限
func (p *PermissionPolicy) Authorize(role models.Role, permission string) bool {
	roles, ok := permissionIndex[permission]
	if !ok {
		// 未登记的权限键一律拒绝
		return false
	}
	return roles[role]
}

// AuthorizeOwnership 所有权限定的两级检查
//
// 持有 _all 变体无条件放行；否则持有 _own 变体且资源属于操作者时放行；
// 其余一律拒绝。
func (p *PermissionPolicy) AuthorizeOwnership(role models.Role, permissionAll, permissionOwn string, resourceOwnerID, actorID uint) bool {
	if p.Authorize(role, permissionAll) {
		return true
	}
	if p.Authorize(role, permissionOwn) && resourceOwnerID == actorID {
		return true
	}
	return false
}

// AtLeast 层级比较：role的权重是否不低于required
//
// 只用于"至少多高权限"的泛化判断，不能替代具体能力的矩阵查询。
func (p *PermissionPolicy) AtLeast(role, required models.Role) bool {
	return role.Hierarchy() >= required.Hierarchy()
}

// Require 检查权限，不通过返回ErrPermissionDenied
//
// 错误信息只携带权限键本身，不暴露需要哪个角色。
func (p *PermissionPolicy) Require(role models.Role, permission string) error {
	if !p.Authorize(role, permission) {
		return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, permission)
	}
	return nil
}

// RequireOwnership 所有权限定检查，不通过返回ErrPermissionDenied
func (p *PermissionPolicy) RequireOwnership(role models.Role, permissionAll, permissionOwn string, resourceOwnerID, actorID uint) error {
	if !p.AuthorizeOwnership(role, permissionAll, permissionOwn, resourceOwnerID, actorID) {
		return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, permissionOwn)
	}
	return nil
}
