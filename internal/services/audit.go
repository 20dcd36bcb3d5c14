package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/logger"
	"awp/pkg/pagination"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditMeta 请求环境元信息，尽力采集，缺失不算错误
type AuditMeta struct {
	IPAddress string
	UserAgent string
}

// AuditService 审计记录服务
//
// 写入是尽力而为的旁路：任何失败都在内部记日志吞掉，绝不影响主
// 操作的结果。审计行只追加，本系统不提供更新或删除。
type AuditService struct {
	db     *gorm.DB
	policy *PermissionPolicy
}

// NewAuditService 创建审计服务
func NewAuditService() *AuditService {
	return &AuditService{
		db:     database.GetDB(),
		policy: NewPermissionPolicy(),
	}
}

// Record 记录一次有操作者的变更
func (s *AuditService) Record(tc *TenantContext, action, entityType string, entityID *uint, oldValues, newValues map[string]interface{}, meta *AuditMeta) {
	actorID := tc.ActorID
	s.write(tc.TenantID, &actorID, action, entityType, entityID, oldValues, newValues, meta)
}

// RecordSystem 记录系统自发的变更（无操作者）
func (s *AuditService) RecordSystem(tenantID uint, action, entityType string, entityID *uint, oldValues, newValues map[string]interface{}) {
	s.write(tenantID, nil, action, entityType, entityID, oldValues, newValues, nil)
}

func (s *AuditService) write(tenantID uint, actorID *uint, action, entityType string, entityID *uint, oldValues, newValues map[string]interface{}, meta *AuditMeta) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().Errorf("审计记录panic: %v", r)
		}
	}()

	entry := models.AuditLog{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if oldValues != nil {
		entry.OldValues = datatypes.JSONMap(oldValues)
	}
	if newValues != nil {
		entry.NewValues = datatypes.JSONMap(newValues)
	}
	if meta != nil {
		entry.IPAddress = meta.IPAddress
		entry.UserAgent = meta.UserAgent
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logger.GetLogger().Errorf("审计记录写入失败 tenant=%d action=%s entity=%s: %v",
			tenantID, action, entityType, err)
	}
}

// GetWithPage 分页查询租户的审计日志
//
// 日志含其他成员的改动快照，仅owner/admin可读。
func (s *AuditService) GetWithPage(tc *TenantContext, entityType string, page, pageSize int) ([]*models.AuditLog, *pagination.PageInfo, error) {
	if err := s.policy.Require(tc.Role, PermAuditView); err != nil {
		return nil, nil, err
	}

	var entries []*models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{}).Where("tenant_id = ?", tc.TenantID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&entries).Error
	if err != nil {
		return nil, nil, err
	}

	return entries, pagination.NewPageInfo(page, pageSize, total), nil
}
