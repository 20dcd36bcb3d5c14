package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
}

func NewProposalHandler() *ProposalHandler {
	return &ProposalHandler{
		proposalService: services.NewProposalService(),
	}
}

type CreateProposalRequest struct {
	ConsultationID *uint  `json:"consultation_id"`
	Title          string `json:"title" binding:"required,min=2,max=200"`
	Body           string `json:"body" binding:"omitempty,max=50000"`
}

// Create 创建提案
func (h *ProposalHandler) Create(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	proposal, err := h.proposalService.Create(tc, services.CreateProposalParams{
		ConsultationID: req.ConsultationID,
		Title:          req.Title,
		Body:           req.Body,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", proposal)
}

type GenerateDraftRequest struct {
	Brief string `json:"brief" binding:"required,min=2,max=2000"`
}

// GenerateDraft AI生成提案草稿，受配额限制
func (h *ProposalHandler) GenerateDraft(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GenerateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	proposal, err := h.proposalService.GenerateDraft(tc, id, req.Brief, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "草稿已生成", proposal)
}

// Get 查询单条提案
func (h *ProposalHandler) Get(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.GetByID(tc, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, proposal)
}

// List 分页查询提案列表
func (h *ProposalHandler) List(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	proposals, pageInfo, err := h.proposalService.GetWithPage(tc, status, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, proposals, pageInfo)
}

type UpdateProposalRequest struct {
	Title string `json:"title" binding:"omitempty,min=2,max=200"`
	Body  string `json:"body" binding:"omitempty,max=50000"`
}

// Update 更新提案
func (h *ProposalHandler) Update(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	proposal, err := h.proposalService.Update(tc, id, services.UpdateProposalParams{
		Title: req.Title,
		Body:  req.Body,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", proposal)
}

type UpdateProposalStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent accepted rejected"`
}

// UpdateStatus 流转提案状态
func (h *ProposalHandler) UpdateStatus(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	proposal, err := h.proposalService.UpdateStatus(tc, id, req.Status, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "状态已更新", proposal)
}

// Delete 删除提案
func (h *ProposalHandler) Delete(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.proposalService.Delete(tc, id, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
