package services

import (
	"awp/internal/models"
	"awp/pkg/pagination"
	"fmt"
	"time"
	"unicode/utf8"
)

// ConsultationService 咨询管理
type ConsultationService struct {
	guard  *ScopeGuard
	policy *PermissionPolicy
	audit  *AuditService
}

func NewConsultationService() *ConsultationService {
	return &ConsultationService{
		guard:  NewScopeGuard(),
		policy: NewPermissionPolicy(),
		audit:  NewAuditService(),
	}
}

// CreateConsultationParams 创建咨询参数
type CreateConsultationParams struct {
	ClientName  string
	ClientEmail string
	Topic       string
	ScheduledAt *time.Time
}

// Create 创建咨询
func (s *ConsultationService) Create(tc *TenantContext, params CreateConsultationParams, meta *AuditMeta) (*models.Consultation, error) {
	if err := s.policy.Require(tc.Role, PermConsultationCreate); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Topic) < 2 {
		return nil, fmt.Errorf("咨询主题不能为空")
	}

	consultation := &models.Consultation{
		TenantID:    tc.TenantID,
		CreatedBy:   tc.ActorID,
		ClientName:  params.ClientName,
		ClientEmail: params.ClientEmail,
		Topic:       params.Topic,
		Status:      models.ConsultationStatusScheduled,
		ScheduledAt: params.ScheduledAt,
	}
	if err := s.guard.Create(consultation); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionCreate, "consultation", &consultation.ID, nil,
		map[string]interface{}{"topic": consultation.Topic, "client_name": consultation.ClientName}, meta)

	return consultation, nil
}

// GetByID 查看咨询
//
// 跨租户或不存在返回NotFound；同租户但所有权检查不通过返回
// PermissionDenied。
func (s *ConsultationService) GetByID(tc *TenantContext, id uint) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := s.guard.FindByID(tc, &consultation, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermConsultationViewAll, PermConsultationViewOwn,
		consultation.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	return &consultation, nil
}

// GetWithPage 分页列出可见的咨询
func (s *ConsultationService) GetWithPage(tc *TenantContext, status string, page, pageSize int) ([]*models.Consultation, *pagination.PageInfo, error) {
	query := s.guard.Scoped(tc, &models.Consultation{})

	// 没有view_all时收窄到自己创建的记录
	switch {
	case s.policy.Authorize(tc.Role, PermConsultationViewAll):
	case s.policy.Authorize(tc.Role, PermConsultationViewOwn):
		query = query.Where("created_by = ?", tc.ActorID)
	default:
		return nil, nil, s.policy.Require(tc.Role, PermConsultationViewOwn)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var consultations []*models.Consultation
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&consultations).Error
	if err != nil {
		return nil, nil, err
	}

	return consultations, pagination.NewPageInfo(page, pageSize, total), nil
}

// UpdateConsultationParams 更新咨询参数
type UpdateConsultationParams struct {
	ClientName  string
	ClientEmail string
	Topic       string
	Status      string
	ScheduledAt *time.Time
	Summary     string
}

// Update 更新咨询
func (s *ConsultationService) Update(tc *TenantContext, id uint, params UpdateConsultationParams, meta *AuditMeta) (*models.Consultation, error) {
	var consultation models.Consultation
	if err := s.guard.FindByID(tc, &consultation, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermConsultationEditAll, PermConsultationEditOwn,
		consultation.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}

	oldValues := map[string]interface{}{
		"topic":  consultation.Topic,
		"status": consultation.Status,
	}

	consultation.ClientName = params.ClientName
	consultation.ClientEmail = params.ClientEmail
	consultation.Topic = params.Topic
	consultation.ScheduledAt = params.ScheduledAt
	consultation.Summary = params.Summary
	if params.Status != "" {
		consultation.Status = params.Status
	}

	if err := s.guard.Save(&consultation); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionUpdate, "consultation", &consultation.ID, oldValues,
		map[string]interface{}{"topic": consultation.Topic, "status": consultation.Status}, meta)

	return &consultation, nil
}

// Delete 删除咨询
func (s *ConsultationService) Delete(tc *TenantContext, id uint, meta *AuditMeta) error {
	var consultation models.Consultation
	if err := s.guard.FindByID(tc, &consultation, id); err != nil {
		return err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermConsultationDeleteAll, PermConsultationDeleteOwn,
		consultation.CreatedBy, tc.ActorID); err != nil {
		return err
	}

	if err := s.guard.DeleteByID(tc, &models.Consultation{}, id); err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionDelete, "consultation", &id,
		map[string]interface{}{"topic": consultation.Topic}, nil, meta)

	return nil
}

// ========== 咨询笔记（起草性质的私有资源） ==========

// CreateNote 创建笔记
func (s *ConsultationService) CreateNote(tc *TenantContext, consultationID uint, body string, meta *AuditMeta) (*models.ConsultationNote, error) {
	// 笔记挂在可见的咨询之下
	if _, err := s.GetByID(tc, consultationID); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, fmt.Errorf("笔记内容不能为空")
	}

	note := &models.ConsultationNote{
		TenantID:       tc.TenantID,
		ConsultationID: consultationID,
		CreatedBy:      tc.ActorID,
		Body:           body,
	}
	if err := s.guard.Create(note); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionCreate, "consultation_note", &note.ID, nil, nil, meta)

	return note, nil
}

// GetNotes 列出笔记
//
// member角色只能看到自己写的笔记，与一般的所有权权限无关。
func (s *ConsultationService) GetNotes(tc *TenantContext, consultationID uint) ([]models.ConsultationNote, error) {
	if _, err := s.GetByID(tc, consultationID); err != nil {
		return nil, err
	}

	var notes []models.ConsultationNote
	err := s.guard.OwnerScoped(tc, &models.ConsultationNote{}).
		Where("consultation_id = ?", consultationID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

// DeleteNote 删除笔记
func (s *ConsultationService) DeleteNote(tc *TenantContext, noteID uint, meta *AuditMeta) error {
	var note models.ConsultationNote
	if err := s.guard.FindOwnedByID(tc, &note, noteID); err != nil {
		return err
	}

	if err := s.guard.DB().Delete(&note).Error; err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionDelete, "consultation_note", &noteID, nil, nil, meta)

	return nil
}
