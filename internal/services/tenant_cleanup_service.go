package services

import (
	"awp/internal/models"
	"awp/pkg/logger"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// TenantCleanupService 租户删除清理任务
//
// 每天扫描一次删除时间已到的租户并执行删除。删除经由外键级联带走
// 租户范围的全部业务数据；审计行保留。
type TenantCleanupService struct {
	db      *gorm.DB
	audit   *AuditService
	cron    *cron.Cron
	entryID cron.EntryID
	running bool
}

// NewTenantCleanupService 创建清理任务
func NewTenantCleanupService(db *gorm.DB) *TenantCleanupService {
	return &TenantCleanupService{
		db:    db,
		audit: NewAuditService(),
		cron:  cron.New(),
	}
}

// Start 启动调度器
func (s *TenantCleanupService) Start() error {
	if s.running {
		return fmt.Errorf("清理任务已经在运行")
	}

	logger.GetLogger().Info("启动租户删除清理任务")

	entryID, err := s.cron.AddFunc("0 3 * * *", func() {
		if err := s.RunOnce(); err != nil {
			logger.GetLogger().Errorf("租户清理执行失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %v", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true
	return nil
}

// Stop 停止调度器
func (s *TenantCleanupService) Stop() {
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	logger.GetLogger().Info("租户删除清理任务已停止")
}

// RunOnce 执行一轮清理
func (s *TenantCleanupService) RunOnce() error {
	var tenants []models.Tenant
	err := s.db.Where("delete_scheduled_at IS NOT NULL AND delete_scheduled_at <= ?", time.Now()).
		Find(&tenants).Error
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		tenantID := tenant.ID
		s.audit.RecordSystem(tenantID, models.AuditActionDelete, "tenant", &tenantID,
			map[string]interface{}{"name": tenant.Name, "slug": tenant.Slug}, nil)

		if err := s.db.Delete(&models.Tenant{}, tenantID).Error; err != nil {
			logger.GetLogger().Errorf("删除租户 %s (ID: %d) 失败: %v", tenant.Name, tenantID, err)
			continue
		}
		logger.GetLogger().Infof("已删除到期租户 %s (ID: %d)", tenant.Name, tenantID)
	}

	return nil
}
