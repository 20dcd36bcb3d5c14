package services

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/errors"
	stderrors "errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// 删除宽限期，到期后由清理任务执行删除
const tenantDeletionGracePeriod = 30 * 24 * time.Hour

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

type TenantService struct {
	db     *gorm.DB
	policy *PermissionPolicy
	audit  *AuditService
}

func NewTenantService() *TenantService {
	return &TenantService{
		db:     database.GetDB(),
		policy: NewPermissionPolicy(),
		audit:  NewAuditService(),
	}
}

// ValidateCreateParams 验证创建参数
func (s *TenantService) ValidateCreateParams(name, slug string) error {
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100 {
		return fmt.Errorf("租户名称长度必须在2-100之间")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("租户标识只允许小写字母、数字和中划线，长度3-50")
	}
	return nil
}

// Provision 开通租户
//
// 租户、计数器配置行和创建人的owner成员关系在同一事务内创建。
// 配置行随开通落地是计数操作的前置不变量，缺了它后续发号会以
// TenantProfileMissing大声失败。
func (s *TenantService) Provision(name, slug string, creatorID uint) (*models.Tenant, error) {
	if err := s.ValidateCreateParams(name, slug); err != nil {
		return nil, err
	}

	// 检查标识是否重复
	var count int64
	s.db.Model(&models.Tenant{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return nil, gorm.ErrDuplicatedKey
	}

	tenant := &models.Tenant{
		Name:   name,
		Slug:   slug,
		Status: models.TenantStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		profile := &models.TenantProfile{
			TenantID:           tenant.ID,
			InvoicePrefix:      "INV",
			NextInvoiceNumber:  1,
			ProposalPrefix:     "PRO",
			NextProposalNumber: 1,
			ContractPrefix:     "CON",
			NextContractNumber: 1,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		membership := &models.Membership{
			UserID:   creatorID,
			TenantID: tenant.ID,
			Role:     models.RoleOwner,
			Status:   models.MembershipStatusActive,
			JoinedAt: time.Now(),
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.RecordSystem(tenant.ID, models.AuditActionCreate, "tenant", &tenant.ID, nil,
		map[string]interface{}{"name": tenant.Name, "slug": tenant.Slug})

	return tenant, nil
}

// GetCurrent 获取上下文对应的租户
func (s *TenantService) GetCurrent(tc *TenantContext) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, tc.TenantID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var memberCount int64
	s.db.Model(&models.Membership{}).
		Where("tenant_id = ? AND status = ?", tenant.ID, models.MembershipStatusActive).
		Count(&memberCount)
	tenant.MemberCount = int(memberCount)

	return &tenant, nil
}

// UpdateProfile 更新租户展示信息
func (s *TenantService) UpdateProfile(tc *TenantContext, name, primaryColor, secondaryColor string, meta *AuditMeta) (*models.Tenant, error) {
	if err := s.policy.Require(tc.Role, PermTenantUpdate); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100 {
		return nil, fmt.Errorf("租户名称长度必须在2-100之间")
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tc.TenantID).Error; err != nil {
		return nil, err
	}

	oldValues := map[string]interface{}{
		"name":            tenant.Name,
		"primary_color":   tenant.PrimaryColor,
		"secondary_color": tenant.SecondaryColor,
	}

	tenant.Name = name
	tenant.PrimaryColor = primaryColor
	tenant.SecondaryColor = secondaryColor

	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionUpdate, "tenant", &tenant.ID, oldValues,
		map[string]interface{}{
			"name":            tenant.Name,
			"primary_color":   tenant.PrimaryColor,
			"secondary_color": tenant.SecondaryColor,
		}, meta)

	return &tenant, nil
}

// ScheduleDeletion 预约删除租户
//
// 只打删除时间戳，真正的删除由清理任务在宽限期后执行。
func (s *TenantService) ScheduleDeletion(tc *TenantContext, meta *AuditMeta) (*models.Tenant, error) {
	if err := s.policy.Require(tc.Role, PermTenantDelete); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tc.TenantID).Error; err != nil {
		return nil, err
	}
	if tenant.DeleteScheduledAt != nil {
		return nil, fmt.Errorf("租户已在删除流程中")
	}

	deleteAt := time.Now().Add(tenantDeletionGracePeriod)
	tenant.DeleteScheduledAt = &deleteAt

	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "tenant", &tenant.ID, nil,
		map[string]interface{}{"delete_scheduled_at": deleteAt}, meta)

	return &tenant, nil
}

// CancelDeletion 取消删除预约
func (s *TenantService) CancelDeletion(tc *TenantContext, meta *AuditMeta) (*models.Tenant, error) {
	if err := s.policy.Require(tc.Role, PermTenantDelete); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tc.TenantID).Error; err != nil {
		return nil, err
	}
	if tenant.DeleteScheduledAt == nil {
		return nil, fmt.Errorf("租户不在删除流程中")
	}

	oldValues := map[string]interface{}{"delete_scheduled_at": *tenant.DeleteScheduledAt}
	tenant.DeleteScheduledAt = nil

	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "tenant", &tenant.ID, oldValues, nil, meta)

	return &tenant, nil
}
