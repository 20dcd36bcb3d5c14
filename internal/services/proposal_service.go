package services

import (
	"awp/internal/models"
	"awp/pkg/config"
	"awp/pkg/pagination"
	"fmt"
	"time"
	"unicode/utf8"
)

// AI配额计数器名
const quotaAIGeneration = "ai_generation"

// ProposalService 提案管理
type ProposalService struct {
	guard   *ScopeGuard
	policy  *PermissionPolicy
	counter *CounterService
	audit   *AuditService
}

func NewProposalService() *ProposalService {
	return &ProposalService{
		guard:   NewScopeGuard(),
		policy:  NewPermissionPolicy(),
		counter: NewCounterService(),
		audit:   NewAuditService(),
	}
}

// CreateProposalParams 创建提案参数
type CreateProposalParams struct {
	ConsultationID *uint
	Title          string
	Body           string
}

// Create 创建提案并发放编号
func (s *ProposalService) Create(tc *TenantContext, params CreateProposalParams, meta *AuditMeta) (*models.Proposal, error) {
	if err := s.policy.Require(tc.Role, PermProposalCreate); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Title) < 2 {
		return nil, fmt.Errorf("提案标题不能为空")
	}

	// 关联的咨询必须在本租户内可见
	if params.ConsultationID != nil {
		var consultation models.Consultation
		if err := s.guard.FindByID(tc, &consultation, *params.ConsultationID); err != nil {
			return nil, err
		}
	}

	prefix, number, err := s.counter.NextDocumentNumber(tc.TenantID, "proposal")
	if err != nil {
		return nil, err
	}

	proposal := &models.Proposal{
		TenantID:       tc.TenantID,
		ConsultationID: params.ConsultationID,
		CreatedBy:      tc.ActorID,
		Number:         FormatDocumentNumber(prefix, number, time.Now()),
		Title:          params.Title,
		Body:           params.Body,
		Status:         models.ProposalStatusDraft,
	}
	if err := s.guard.Create(proposal); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionCreate, "proposal", &proposal.ID, nil,
		map[string]interface{}{"number": proposal.Number, "title": proposal.Title}, meta)

	return proposal, nil
}

// GenerateDraft AI起草提案正文
//
// 配额是软限制：先读用量做检查，再用单条原子语句计数。读和增之间
// 的小幅超计是接受的产品取舍，不在这里修。
func (s *ProposalService) GenerateDraft(tc *TenantContext, id uint, brief string, meta *AuditMeta) (*models.Proposal, error) {
	if err := s.policy.Require(tc.Role, PermProposalGenerateAI); err != nil {
		return nil, err
	}

	var proposal models.Proposal
	if err := s.guard.FindByID(tc, &proposal, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermProposalEditAll, PermProposalEditOwn,
		proposal.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusDraft {
		return nil, fmt.Errorf("只有草稿状态的提案可以AI起草")
	}

	limit := int64(config.GetConfig().Quota.AIGenerationLimit)
	usage, err := s.counter.CurrentQuotaUsage(tc.TenantID, quotaAIGeneration)
	if err != nil {
		return nil, err
	}
	if usage >= limit {
		return nil, fmt.Errorf("本月AI生成次数已达上限(%d)", limit)
	}

	if err := s.counter.IncrementQuota(tc.TenantID, quotaAIGeneration); err != nil {
		return nil, err
	}

	proposal.Body = renderDraftBody(proposal.Title, brief)
	proposal.AIGenerated = true
	if err := s.guard.Save(&proposal); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionUpdate, "proposal", &proposal.ID, nil,
		map[string]interface{}{"ai_generated": true}, meta)

	return &proposal, nil
}

// renderDraftBody 生成提案草稿正文
func renderDraftBody(title, brief string) string {
	return fmt.Sprintf("# %s\n\n## 背景\n\n%s\n\n## 方案概述\n\n（AI草稿，待补充）\n\n## 报价\n\n（待补充）\n", title, brief)
}

// GetByID 查看提案
func (s *ProposalService) GetByID(tc *TenantContext, id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.guard.FindByID(tc, &proposal, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermProposalViewAll, PermProposalViewOwn,
		proposal.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetWithPage 分页列出可见的提案
func (s *ProposalService) GetWithPage(tc *TenantContext, status string, page, pageSize int) ([]*models.Proposal, *pagination.PageInfo, error) {
	query := s.guard.Scoped(tc, &models.Proposal{})

	switch {
	case s.policy.Authorize(tc.Role, PermProposalViewAll):
	case s.policy.Authorize(tc.Role, PermProposalViewOwn):
		query = query.Where("created_by = ?", tc.ActorID)
	default:
		return nil, nil, s.policy.Require(tc.Role, PermProposalViewOwn)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var proposals []*models.Proposal
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, nil, err
	}

	return proposals, pagination.NewPageInfo(page, pageSize, total), nil
}

// UpdateProposalParams 更新提案参数
type UpdateProposalParams struct {
	Title string
	Body  string
}

// Update 更新提案
func (s *ProposalService) Update(tc *TenantContext, id uint, params UpdateProposalParams, meta *AuditMeta) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.guard.FindByID(tc, &proposal, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermProposalEditAll, PermProposalEditOwn,
		proposal.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusDraft {
		return nil, fmt.Errorf("只有草稿状态的提案可以编辑")
	}

	oldValues := map[string]interface{}{"title": proposal.Title}

	proposal.Title = params.Title
	proposal.Body = params.Body
	if err := s.guard.Save(&proposal); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionUpdate, "proposal", &proposal.ID, oldValues,
		map[string]interface{}{"title": proposal.Title}, meta)

	return &proposal, nil
}

// UpdateStatus 提案状态流转
func (s *ProposalService) UpdateStatus(tc *TenantContext, id uint, newStatus string, meta *AuditMeta) (*models.Proposal, error) {
	switch newStatus {
	case models.ProposalStatusSent, models.ProposalStatusAccepted, models.ProposalStatusRejected:
	default:
		return nil, fmt.Errorf("无效的提案状态: %s", newStatus)
	}

	var proposal models.Proposal
	if err := s.guard.FindByID(tc, &proposal, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermProposalEditAll, PermProposalEditOwn,
		proposal.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}

	oldStatus := proposal.Status
	proposal.Status = newStatus
	if newStatus == models.ProposalStatusSent {
		now := time.Now()
		proposal.SentAt = &now
	}
	if err := s.guard.Save(&proposal); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "proposal", &proposal.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": newStatus}, meta)

	return &proposal, nil
}

// Delete 删除提案
func (s *ProposalService) Delete(tc *TenantContext, id uint, meta *AuditMeta) error {
	var proposal models.Proposal
	if err := s.guard.FindByID(tc, &proposal, id); err != nil {
		return err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermProposalDeleteAll, PermProposalDeleteOwn,
		proposal.CreatedBy, tc.ActorID); err != nil {
		return err
	}

	if err := s.guard.DeleteByID(tc, &models.Proposal{}, id); err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionDelete, "proposal", &id,
		map[string]interface{}{"number": proposal.Number}, nil, meta)

	return nil
}
