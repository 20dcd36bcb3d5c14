package main

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/logger"
	"fmt"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	// 1. 创建默认管理员用户
	admin, err := createDefaultAdmin()
	if err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	// 2. 开通默认租户（含配置记录和所有者成员关系）
	if err := createDefaultTenant(admin.ID); err != nil {
		return fmt.Errorf("开通默认租户失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin() (*models.User, error) {
	db := database.GetDB()

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err == nil {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return &admin, nil
	}

	userService := services.NewUserService()
	user, err := userService.Create("admin", "admin@example.com", "Admin@123", "平台管理员")
	if err != nil {
		return nil, err
	}

	// 提升为平台管理员
	if err := db.Model(user).Update("is_platform_admin", true).Error; err != nil {
		return nil, err
	}
	user.IsPlatformAdmin = true

	logger.GetLogger().Info("默认管理员创建成功")
	return user, nil
}

// createDefaultTenant 开通默认租户
func createDefaultTenant(ownerID uint) error {
	db := database.GetDB()

	var count int64
	db.Model(&models.Tenant{}).Where("slug = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过开通")
		return nil
	}

	tenantService := services.NewTenantService()
	if _, err := tenantService.Provision("默认租户", "default", ownerID); err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户开通成功")
	return nil
}
