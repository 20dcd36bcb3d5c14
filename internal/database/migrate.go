package database

import (
	"awp/internal/models"
	"awp/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Membership{},
		&models.TenantProfile{},
		&models.TenantInvitation{},
		// 业务流程
		&models.Consultation{},
		&models.ConsultationNote{},
		&models.Proposal{},
		&models.Contract{},
		&models.Invoice{},
		// 审计
		&models.AuditLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	// 种子数据初始化将在 main.go 中单独调用，避免循环依赖

	return nil
}
