package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"errors"

	"gorm.io/gorm"
)

// MembershipRepository 成员关系只读查询，供上下文解析器消费
//
// 约定：查不到记录返回 (nil, nil) / (0, nil)，数据库故障才返回error。
type MembershipRepository interface {
	// ActiveMembership 查询用户在指定租户的生效成员关系
	ActiveMembership(userID, tenantID uint) (*models.Membership, error)
	// ActiveMemberships 查询用户所有生效的成员关系
	ActiveMemberships(userID uint) ([]models.Membership, error)
	// DefaultTenantID 查询用户设置的默认租户，未设置返回0
	DefaultTenantID(userID uint) (uint, error)
}

// ActorLookup 用户查询（解析器做提权校验用）
type ActorLookup interface {
	Actor(userID uint) (*models.User, error)
}

// TenantLookup 租户查询（解析器做模拟目标校验用）
type TenantLookup interface {
	// ActiveTenant 查询存在且未进入删除流程的租户，查不到返回 (nil, nil)
	ActiveTenant(tenantID uint) (*models.Tenant, error)
}

// GormMembershipRepository 基于gorm的成员关系查询实现
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建成员关系查询
func NewMembershipRepository() *GormMembershipRepository {
	return &GormMembershipRepository{db: database.GetDB()}
}

// ActiveMembership 查询用户在指定租户的生效成员关系
func (r *GormMembershipRepository) ActiveMembership(userID, tenantID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("user_id = ? AND tenant_id = ? AND status = ?",
		userID, tenantID, models.MembershipStatusActive).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ActiveMemberships 查询用户所有生效的成员关系
func (r *GormMembershipRepository) ActiveMemberships(userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("user_id = ? AND status = ?", userID, models.MembershipStatusActive).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// DefaultTenantID 查询用户设置的默认租户
func (r *GormMembershipRepository) DefaultTenantID(userID uint) (uint, error) {
	var user models.User
	err := r.db.Select("default_tenant_id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if user.DefaultTenantID == nil {
		return 0, nil
	}
	return *user.DefaultTenantID, nil
}

// Actor 查询用户记录
func (r *GormMembershipRepository) Actor(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ActiveTenant 查询存在且未进入删除流程的租户
func (r *GormMembershipRepository) ActiveTenant(tenantID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("id = ? AND status = ? AND delete_scheduled_at IS NULL",
		tenantID, models.TenantStatusActive).
		First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
