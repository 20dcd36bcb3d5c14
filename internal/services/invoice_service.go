package services

import (
	"awp/internal/models"
	"awp/pkg/pagination"
	"fmt"
	"time"
)

// InvoiceService 账单管理
//
// 账单不做所有权细分，查看和开具统一按租户角色管控。
type InvoiceService struct {
	guard   *ScopeGuard
	policy  *PermissionPolicy
	counter *CounterService
	audit   *AuditService
}

func NewInvoiceService() *InvoiceService {
	return &InvoiceService{
		guard:   NewScopeGuard(),
		policy:  NewPermissionPolicy(),
		counter: NewCounterService(),
		audit:   NewAuditService(),
	}
}

// CreateInvoiceParams 开具账单参数
type CreateInvoiceParams struct {
	ContractID  *uint
	AmountCents int64
	Currency    string
	DueAt       *time.Time
}

// Create 开具账单并发放编号
func (s *InvoiceService) Create(tc *TenantContext, params CreateInvoiceParams, meta *AuditMeta) (*models.Invoice, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceCreate); err != nil {
		return nil, err
	}
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("账单金额必须大于0")
	}

	// 来源合同必须在本租户内且已签署
	if params.ContractID != nil {
		var contract models.Contract
		if err := s.guard.FindByID(tc, &contract, *params.ContractID); err != nil {
			return nil, err
		}
		if contract.Status != models.ContractStatusSigned {
			return nil, fmt.Errorf("只有已签署的合同可以开具账单")
		}
	}

	prefix, number, err := s.counter.NextDocumentNumber(tc.TenantID, "invoice")
	if err != nil {
		return nil, err
	}

	currency := params.Currency
	if currency == "" {
		currency = "CNY"
	}

	invoice := &models.Invoice{
		TenantID:    tc.TenantID,
		ContractID:  params.ContractID,
		CreatedBy:   tc.ActorID,
		Number:      FormatDocumentNumber(prefix, number, time.Now()),
		AmountCents: params.AmountCents,
		Currency:    currency,
		Status:      models.InvoiceStatusDraft,
		DueAt:       params.DueAt,
	}
	if err := s.guard.Create(invoice); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionCreate, "invoice", &invoice.ID, nil,
		map[string]interface{}{"number": invoice.Number, "amount_cents": invoice.AmountCents}, meta)

	return invoice, nil
}

// GetByID 查看账单
func (s *InvoiceService) GetByID(tc *TenantContext, id uint) (*models.Invoice, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceView); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.guard.FindByID(tc, &invoice, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetWithPage 分页列出账单
func (s *InvoiceService) GetWithPage(tc *TenantContext, status string, page, pageSize int) ([]*models.Invoice, *pagination.PageInfo, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceView); err != nil {
		return nil, nil, err
	}

	query := s.guard.Scoped(tc, &models.Invoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var invoices []*models.Invoice
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&invoices).Error
	if err != nil {
		return nil, nil, err
	}

	return invoices, pagination.NewPageInfo(page, pageSize, total), nil
}

// Send 发送账单
func (s *InvoiceService) Send(tc *TenantContext, id uint, meta *AuditMeta) (*models.Invoice, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceCreate); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.guard.FindByID(tc, &invoice, id); err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusDraft {
		return nil, fmt.Errorf("只有草稿状态的账单可以发送")
	}

	invoice.Status = models.InvoiceStatusSent
	if err := s.guard.Save(&invoice); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "invoice", &invoice.ID,
		map[string]interface{}{"status": models.InvoiceStatusDraft},
		map[string]interface{}{"status": models.InvoiceStatusSent}, meta)

	return &invoice, nil
}

// MarkPaid 标记账单已支付
func (s *InvoiceService) MarkPaid(tc *TenantContext, id uint, meta *AuditMeta) (*models.Invoice, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceCreate); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.guard.FindByID(tc, &invoice, id); err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusSent {
		return nil, fmt.Errorf("只有已发送的账单可以标记支付")
	}

	oldStatus := invoice.Status
	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidAt = &now
	if err := s.guard.Save(&invoice); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "invoice", &invoice.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": invoice.Status}, meta)

	return &invoice, nil
}

// Void 作废账单，仅owner
func (s *InvoiceService) Void(tc *TenantContext, id uint, meta *AuditMeta) (*models.Invoice, error) {
	if err := s.policy.Require(tc.Role, PermInvoiceVoid); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.guard.FindByID(tc, &invoice, id); err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, fmt.Errorf("已支付的账单不能作废")
	}
	if invoice.Status == models.InvoiceStatusVoid {
		return nil, fmt.Errorf("账单已作废")
	}

	oldStatus := invoice.Status
	invoice.Status = models.InvoiceStatusVoid
	if err := s.guard.Save(&invoice); err != nil {
		return nil, err
	}

	s.audit.Record(tc, models.AuditActionStatus, "invoice", &invoice.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": invoice.Status}, meta)

	return &invoice, nil
}
