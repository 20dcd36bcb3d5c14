package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 邀请有效期
const invitationTTL = 7 * 24 * time.Hour

// InvitationService 租户邀请管理
type InvitationService struct {
	db     *gorm.DB
	policy *PermissionPolicy
	audit  *AuditService
}

func NewInvitationService() *InvitationService {
	return &InvitationService{
		db:     database.GetDB(),
		policy: NewPermissionPolicy(),
		audit:  NewAuditService(),
	}
}

// Invite 发出邀请
//
// 被邀请人接受后才会产生active成员关系，邀请本身不授予任何访问。
func (s *InvitationService) Invite(tc *TenantContext, email string, role models.Role, message string, meta *AuditMeta) (*models.TenantInvitation, error) {
	if err := s.policy.Require(tc.Role, PermMemberInvite); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("无效的角色: %s", role)
	}
	// 邀请owner需要更高权限：变更owner阵容等价于角色管理
	if role == models.RoleOwner {
		if err := s.policy.Require(tc.Role, PermMemberChangeRole); err != nil {
			return nil, err
		}
	}

	// 已是成员则拒绝
	var existing int64
	s.db.Model(&models.Membership{}).
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("users.email = ? AND memberships.tenant_id = ?", email, tc.TenantID).
		Count(&existing)
	if existing > 0 {
		return nil, fmt.Errorf("该邮箱已是租户成员")
	}

	// 同邮箱的待处理邀请只保留一份
	var pending int64
	s.db.Model(&models.TenantInvitation{}).
		Where("tenant_id = ? AND invitee_email = ? AND status = ?",
			tc.TenantID, email, models.InvitationStatusPending).
		Count(&pending)
	if pending > 0 {
		return nil, fmt.Errorf("该邮箱已有待处理的邀请")
	}

	invitation := &models.TenantInvitation{
		TenantID:     tc.TenantID,
		InviterID:    tc.ActorID,
		InviteeEmail: email,
		Role:         role,
		Status:       models.InvitationStatusPending,
		Token:        uuid.New().String(),
		Message:      message,
		ExpiredAt:    time.Now().Add(invitationTTL),
	}

	// 被邀请人已注册时补上ID
	var invitee models.User
	if err := s.db.Where("email = ?", email).First(&invitee).Error; err == nil {
		invitation.InviteeID = &invitee.ID
	}

	if err := s.db.Create(invitation).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionInvite, "invitation", &invitation.ID, nil,
		map[string]interface{}{"invitee_email": email, "role": string(role)}, meta)

	return invitation, nil
}

// GetPending 获取租户的待处理邀请
func (s *InvitationService) GetPending(tc *TenantContext) ([]models.TenantInvitation, error) {
	if err := s.policy.Require(tc.Role, PermMemberInvite); err != nil {
		return nil, err
	}

	var invitations []models.TenantInvitation
	err := s.db.Where("tenant_id = ? AND status = ?",
		tc.TenantID, models.InvitationStatusPending).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// Accept 接受邀请，创建生效成员关系
//
// 邀请按令牌查找，不走租户上下文：接受人此刻还不是租户成员。
func (s *InvitationService) Accept(token string, userID uint) (*models.Membership, error) {
	var invitation models.TenantInvitation
	err := s.db.Where("token = ?", token).First(&invitation).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if invitation.Status == models.InvitationStatusPending && time.Now().After(invitation.ExpiredAt) {
		invitation.MarkExpired()
		s.db.Save(&invitation)
	}
	if !invitation.IsValid() {
		return nil, fmt.Errorf("邀请已失效")
	}

	// 邮箱必须匹配接受人
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.Email != invitation.InviteeEmail {
		return nil, errors.ErrNotFound
	}

	var existing int64
	s.db.Model(&models.Membership{}).
		Where("user_id = ? AND tenant_id = ?", userID, invitation.TenantID).
		Count(&existing)
	if existing > 0 {
		return nil, fmt.Errorf("已是该租户成员")
	}

	membership := &models.Membership{
		UserID:    userID,
		TenantID:  invitation.TenantID,
		Role:      invitation.Role,
		Status:    models.MembershipStatusActive,
		JoinedAt:  time.Now(),
		InvitedBy: &invitation.InviterID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(membership).Error; err != nil {
			return err
		}
		invitation.Accept()
		invitation.InviteeID = &userID
		return tx.Save(&invitation).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.RecordSystem(invitation.TenantID, models.AuditActionAccept, "invitation",
		&invitation.ID, nil,
		map[string]interface{}{"user_id": userID, "role": string(invitation.Role)})

	return membership, nil
}

// Decline 拒绝邀请
func (s *InvitationService) Decline(token string, userID uint) error {
	var invitation models.TenantInvitation
	err := s.db.Where("token = ?", token).First(&invitation).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}
	if user.Email != invitation.InviteeEmail {
		return errors.ErrNotFound
	}

	if !invitation.IsValid() {
		return fmt.Errorf("邀请已失效")
	}

	invitation.Decline()
	invitation.InviteeID = &userID
	return s.db.Save(&invitation).Error
}

// Revoke 撤回邀请
func (s *InvitationService) Revoke(tc *TenantContext, invitationID uint, meta *AuditMeta) error {
	if err := s.policy.Require(tc.Role, PermMemberInvite); err != nil {
		return err
	}

	var invitation models.TenantInvitation
	err := s.db.Where("id = ? AND tenant_id = ?", invitationID, tc.TenantID).
		First(&invitation).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	if invitation.Status != models.InvitationStatusPending {
		return fmt.Errorf("只能撤回待处理的邀请")
	}

	invitation.MarkExpired()
	if err := s.db.Save(&invitation).Error; err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionStatus, "invitation", &invitation.ID,
		map[string]interface{}{"status": models.InvitationStatusPending},
		map[string]interface{}{"status": models.InvitationStatusExpired}, meta)

	return nil
}
