package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/errors"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"
)

// MembershipService 租户成员管理
type MembershipService struct {
	db     *gorm.DB
	policy *PermissionPolicy
	audit  *AuditService
}

func NewMembershipService() *MembershipService {
	return &MembershipService{
		db:     database.GetDB(),
		policy: NewPermissionPolicy(),
		audit:  NewAuditService(),
	}
}

// GetMembers 获取租户全部成员
func (s *MembershipService) GetMembers(tc *TenantContext) ([]models.Membership, error) {
	if err := s.policy.Require(tc.Role, PermMemberView); err != nil {
		return nil, err
	}

	var memberships []models.Membership
	err := s.db.Where("tenant_id = ?", tc.TenantID).
		Preload("User").
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// ChangeRole 调整成员角色
func (s *MembershipService) ChangeRole(tc *TenantContext, userID uint, newRole models.Role, meta *AuditMeta) (*models.Membership, error) {
	if err := s.policy.Require(tc.Role, PermMemberChangeRole); err != nil {
		return nil, err
	}
	if !newRole.IsValid() {
		return nil, fmt.Errorf("无效的角色: %s", newRole)
	}

	var membership models.Membership
	err := s.db.Where("user_id = ? AND tenant_id = ?", userID, tc.TenantID).
		First(&membership).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// 降级owner前确认不是最后一个
	if membership.Role == models.RoleOwner && newRole != models.RoleOwner {
		lastOwner, err := s.isLastActiveOwner(tc.TenantID, userID)
		if err != nil {
			return nil, err
		}
		if lastOwner {
			return nil, fmt.Errorf("不能降级租户的最后一个owner")
		}
	}

	oldRole := membership.Role
	membership.Role = newRole
	if err := s.db.Save(&membership).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionUpdate, "membership", &membership.ID,
		map[string]interface{}{"role": string(oldRole)},
		map[string]interface{}{"role": string(newRole)}, meta)

	return &membership, nil
}

// RemoveMember 移除成员
func (s *MembershipService) RemoveMember(tc *TenantContext, userID uint, meta *AuditMeta) error {
	if err := s.policy.Require(tc.Role, PermMemberRemove); err != nil {
		return err
	}

	var membership models.Membership
	err := s.db.Where("user_id = ? AND tenant_id = ?", userID, tc.TenantID).
		First(&membership).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	if membership.Role == models.RoleOwner {
		lastOwner, err := s.isLastActiveOwner(tc.TenantID, userID)
		if err != nil {
			return err
		}
		if lastOwner {
			return fmt.Errorf("不能移除租户的最后一个owner")
		}
	}

	if err := s.db.Delete(&membership).Error; err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionRemove, "membership", &membership.ID,
		map[string]interface{}{"user_id": userID, "role": string(membership.Role)}, nil, meta)

	return nil
}

// SuspendMember 暂停成员（保留记录但不再参与上下文解析）
func (s *MembershipService) SuspendMember(tc *TenantContext, userID uint, meta *AuditMeta) (*models.Membership, error) {
	if err := s.policy.Require(tc.Role, PermMemberRemove); err != nil {
		return nil, err
	}

	var membership models.Membership
	err := s.db.Where("user_id = ? AND tenant_id = ?", userID, tc.TenantID).
		First(&membership).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if membership.Role == models.RoleOwner {
		lastOwner, err := s.isLastActiveOwner(tc.TenantID, userID)
		if err != nil {
			return nil, err
		}
		if lastOwner {
			return nil, fmt.Errorf("不能暂停租户的最后一个owner")
		}
	}

	oldStatus := membership.Status
	membership.Status = models.MembershipStatusSuspended
	if err := s.db.Save(&membership).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "membership", &membership.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": membership.Status}, meta)

	return &membership, nil
}

// isLastActiveOwner 检查userID是否为租户仅存的生效owner
func (s *MembershipService) isLastActiveOwner(tenantID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Membership{}).
		Where("tenant_id = ? AND role = ? AND status = ? AND user_id != ?",
			tenantID, models.RoleOwner, models.MembershipStatusActive, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
