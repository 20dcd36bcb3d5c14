package models

import (
	"time"
)

// Role 成员角色，封闭枚举
type Role string

// 角色常量
const (
	RoleOwner  Role = "owner"  // 拥有者
	RoleAdmin  Role = "admin"  // 管理员
	RoleMember Role = "member" // 普通成员
)

// IsValid 是否为合法角色
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Hierarchy 角色权重，用于"至少多高权限"的泛化比较
//
// 注意：权重只服务于层级比较，具体能力必须走权限矩阵查询，
// 两者并不严格单调。
func (r Role) Hierarchy() int {
	switch r {
	case RoleOwner:
		return 100
	case RoleAdmin:
		return 50
	case RoleMember:
		return 10
	}
	return 0
}

// ResolutionRank 上下文解析时的排序值，越小优先级越高
func (r Role) ResolutionRank() int {
	switch r {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	case RoleMember:
		return 2
	}
	return 99
}

// Membership 用户-租户成员关系
type Membership struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_tenant" json:"user_id"`
	TenantID  uint      `gorm:"not null;uniqueIndex:idx_user_tenant" json:"tenant_id"`
	Role      Role      `gorm:"not null;size:20" json:"role"`
	Status    string    `gorm:"not null;default:'invited';size:20" json:"status"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"` // 加入时间
	InvitedBy *uint     `json:"invited_by"`                // 邀请人ID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User    User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Tenant  Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	Inviter *User  `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
}

// TableName 指定表名
func (Membership) TableName() string {
	return "memberships"
}

// 成员状态常量，只有active参与上下文解析
const (
	MembershipStatusActive    = "active"
	MembershipStatusInvited   = "invited"
	MembershipStatusSuspended = "suspended"
)

// IsActive 是否为生效成员
func (m *Membership) IsActive() bool {
	return m.Status == MembershipStatusActive
}
