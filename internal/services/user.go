package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService() *UserService {
	return &UserService{db: database.GetDB()}
}

// Create 创建用户
func (s *UserService) Create(username, email, password, name string) (*models.User, error) {
	if utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50 {
		return nil, fmt.Errorf("用户名长度必须在3-50之间")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("密码长度不能少于8位")
	}

	// 检查用户名和邮箱是否重复
	var count int64
	s.db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Name:     name,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	err := s.db.Create(user).Error
	return user, err
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return &user, err
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

// GetByEmail 根据邮箱获取用户
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

// IsActive 检查用户是否激活
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", now).Error
}

// SetDefaultTenant 设置默认租户
//
// 只允许设置为自己持有生效成员关系的租户。
func (s *UserService) SetDefaultTenant(userID, tenantID uint) error {
	var count int64
	s.db.Model(&models.Membership{}).
		Where("user_id = ? AND tenant_id = ? AND status = ?",
			userID, tenantID, models.MembershipStatusActive).
		Count(&count)
	if count == 0 {
		return fmt.Errorf("不是该租户的生效成员")
	}

	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("default_tenant_id", tenantID).Error
}

// GetMemberships 获取用户的所有成员关系
func (s *UserService) GetMemberships(userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.db.Where("user_id = ?", userID).
		Preload("Tenant").
		Find(&memberships).Error
	return memberships, err
}
