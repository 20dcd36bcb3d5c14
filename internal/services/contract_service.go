package services

import (
	"awp/internal/models"
	"awp/pkg/pagination"
	"fmt"
	"time"
	"unicode/utf8"
)

// ContractService 合同管理
type ContractService struct {
	guard   *ScopeGuard
	policy  *PermissionPolicy
	counter *CounterService
	audit   *AuditService
}

func NewContractService() *ContractService {
	return &ContractService{
		guard:   NewScopeGuard(),
		policy:  NewPermissionPolicy(),
		counter: NewCounterService(),
		audit:   NewAuditService(),
	}
}

// CreateContractParams 创建合同参数
type CreateContractParams struct {
	ProposalID *uint
	Title      string
}

// Create 创建合同并发放编号
func (s *ContractService) Create(tc *TenantContext, params CreateContractParams, meta *AuditMeta) (*models.Contract, error) {
	if err := s.policy.Require(tc.Role, PermContractCreate); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(params.Title) < 2 {
		return nil, fmt.Errorf("合同标题不能为空")
	}

	// 来源提案必须在本租户内且已被接受
	if params.ProposalID != nil {
		var proposal models.Proposal
		if err := s.guard.FindByID(tc, &proposal, *params.ProposalID); err != nil {
			return nil, err
		}
		if proposal.Status != models.ProposalStatusAccepted {
			return nil, fmt.Errorf("只有已接受的提案可以签订合同")
		}
	}

	prefix, number, err := s.counter.NextDocumentNumber(tc.TenantID, "contract")
	if err != nil {
		return nil, err
	}

	contract := &models.Contract{
		TenantID:   tc.TenantID,
		ProposalID: params.ProposalID,
		CreatedBy:  tc.ActorID,
		Number:     FormatDocumentNumber(prefix, number, time.Now()),
		Title:      params.Title,
		Status:     models.ContractStatusDraft,
	}
	if err := s.guard.Create(contract); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionCreate, "contract", &contract.ID, nil,
		map[string]interface{}{"number": contract.Number, "title": contract.Title}, meta)

	return contract, nil
}

// GetByID 查看合同
func (s *ContractService) GetByID(tc *TenantContext, id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.guard.FindByID(tc, &contract, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermContractViewAll, PermContractViewOwn,
		contract.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetWithPage 分页列出可见的合同
func (s *ContractService) GetWithPage(tc *TenantContext, status string, page, pageSize int) ([]*models.Contract, *pagination.PageInfo, error) {
	query := s.guard.Scoped(tc, &models.Contract{})

	switch {
	case s.policy.Authorize(tc.Role, PermContractViewAll):
	case s.policy.Authorize(tc.Role, PermContractViewOwn):
		query = query.Where("created_by = ?", tc.ActorID)
	default:
		return nil, nil, s.policy.Require(tc.Role, PermContractViewOwn)
	}

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var contracts []*models.Contract
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&contracts).Error
	if err != nil {
		return nil, nil, err
	}

	return contracts, pagination.NewPageInfo(page, pageSize, total), nil
}

// Sign 标记合同已签署
func (s *ContractService) Sign(tc *TenantContext, id uint, meta *AuditMeta) (*models.Contract, error) {
	if err := s.policy.Require(tc.Role, PermContractSign); err != nil {
		return nil, err
	}

	var contract models.Contract
	if err := s.guard.FindByID(tc, &contract, id); err != nil {
		return nil, err
	}
	if contract.Status == models.ContractStatusSigned {
		return nil, fmt.Errorf("合同已签署")
	}
	if contract.Status == models.ContractStatusTerminated {
		return nil, fmt.Errorf("合同已终止")
	}

	oldStatus := contract.Status
	now := time.Now()
	contract.Status = models.ContractStatusSigned
	contract.SignedAt = &now
	if err := s.guard.Save(&contract); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "contract", &contract.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": contract.Status}, meta)

	return &contract, nil
}

// Terminate 终止合同
func (s *ContractService) Terminate(tc *TenantContext, id uint, meta *AuditMeta) (*models.Contract, error) {
	var contract models.Contract
	if err := s.guard.FindByID(tc, &contract, id); err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermContractEditAll, PermContractEditOwn,
		contract.CreatedBy, tc.ActorID); err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusSigned {
		return nil, fmt.Errorf("只有已签署的合同可以终止")
	}

	contract.Status = models.ContractStatusTerminated
	if err := s.guard.Save(&contract); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "contract", &contract.ID,
		map[string]interface{}{"status": models.ContractStatusSigned},
		map[string]interface{}{"status": models.ContractStatusTerminated}, meta)

	return &contract, nil
}

// Delete 删除合同
//
// delete_all 仅owner持有，admin只能删自己创建的草稿合同。
func (s *ContractService) Delete(tc *TenantContext, id uint, meta *AuditMeta) error {
	var contract models.Contract
	if err := s.guard.FindByID(tc, &contract, id); err != nil {
		return err
	}
	if err := s.policy.RequireOwnership(tc.Role, PermContractDeleteAll, PermContractDeleteOwn,
		contract.CreatedBy, tc.ActorID); err != nil {
		return err
	}
	if contract.Status == models.ContractStatusSigned {
		return fmt.Errorf("已签署的合同不能删除")
	}

	if err := s.guard.DeleteByID(tc, &models.Contract{}, id); err != nil {
		return err
	}

	s.audit.Record(tc, models.AuditActionDelete, "contract", &id,
		map[string]interface{}{"number": contract.Number}, nil, meta)

	return nil
}
