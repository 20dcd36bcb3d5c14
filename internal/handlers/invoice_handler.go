package handlers

import (
	"time"

	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler() *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: services.NewInvoiceService(),
	}
}

type CreateInvoiceRequest struct {
	ContractID  *uint      `json:"contract_id"`
	AmountCents int64      `json:"amount_cents" binding:"required,gt=0"`
	Currency    string     `json:"currency" binding:"omitempty,len=3"`
	DueAt       *time.Time `json:"due_at"`
}

// Create 开具账单
func (h *InvoiceHandler) Create(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.Create(tc, services.CreateInvoiceParams{
		ContractID:  req.ContractID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		DueAt:       req.DueAt,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账单已开具", invoice)
}

// Get 查询单条账单
func (h *InvoiceHandler) Get(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(tc, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, invoice)
}

// List 分页查询账单列表
func (h *InvoiceHandler) List(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	invoices, pageInfo, err := h.invoiceService.GetWithPage(tc, status, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, invoices, pageInfo)
}

// Send 寄送账单
func (h *InvoiceHandler) Send(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Send(tc, id, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账单已寄送", invoice)
}

// MarkPaid 标记已支付
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.MarkPaid(tc, id, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账单已支付", invoice)
}

// Void 作废账单
func (h *InvoiceHandler) Void(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Void(tc, id, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账单已作废", invoice)
}
