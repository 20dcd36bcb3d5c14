package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/errors"
	stderrors "errors"

	"gorm.io/gorm"
)

// ScopeGuard 租户数据访问守卫
//
// 所有租户范围的查询都必须经由这里构造，保证tenant_id谓词永远存在。
// 按ID查找时，跨租户的行和不存在的行一律返回ErrNotFound，对外不可
// 区分。
type ScopeGuard struct {
	db *gorm.DB
}

// NewScopeGuard 创建访问守卫
func NewScopeGuard() *ScopeGuard {
	return &ScopeGuard{db: database.GetDB()}
}

// Scoped 构造带租户谓词的查询
func (g *ScopeGuard) Scoped(tc *TenantContext, model interface{}) *gorm.DB {
	return g.db.Model(model).Where("tenant_id = ?", tc.TenantID)
}

// OwnerScoped 构造起草类私有资源的查询
//
// member角色无论权限矩阵如何都附加创建人过滤，owner/admin不附加。
func (g *ScopeGuard) OwnerScoped(tc *TenantContext, model interface{}) *gorm.DB {
	query := g.Scoped(tc, model)
	if tc.Role == models.RoleMember {
		query = query.Where("created_by = ?", tc.ActorID)
	}
	return query
}

// FindByID 租户范围内按ID查找
func (g *ScopeGuard) FindByID(tc *TenantContext, dest interface{}, id uint) error {
	err := g.db.Where("tenant_id = ?", tc.TenantID).First(dest, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	return err
}

// FindOwnedByID 私有资源按ID查找，member角色附加创建人过滤
func (g *ScopeGuard) FindOwnedByID(tc *TenantContext, dest interface{}, id uint) error {
	query := g.db.Where("tenant_id = ?", tc.TenantID)
	if tc.Role == models.RoleMember {
		query = query.Where("created_by = ?", tc.ActorID)
	}
	err := query.First(dest, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	return err
}

// Create 在当前租户下创建记录（调用方已把TenantID/CreatedBy填好）
func (g *ScopeGuard) Create(value interface{}) error {
	return g.db.Create(value).Error
}

// Save 保存记录
func (g *ScopeGuard) Save(value interface{}) error {
	return g.db.Save(value).Error
}

// DeleteByID 租户范围内按ID删除
func (g *ScopeGuard) DeleteByID(tc *TenantContext, model interface{}, id uint) error {
	result := g.db.Where("tenant_id = ?", tc.TenantID).Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// DB 暴露底层连接，仅限需要事务的服务使用
func (g *ScopeGuard) DB() *gorm.DB {
	return g.db
}
