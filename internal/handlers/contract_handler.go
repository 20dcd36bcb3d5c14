package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler() *ContractHandler {
	return &ContractHandler{
		contractService: services.NewContractService(),
	}
}

type CreateContractRequest struct {
	ProposalID *uint  `json:"proposal_id"`
	Title      string `json:"title" binding:"required,min=2,max=200"`
}

// Create 创建合同
func (h *ContractHandler) Create(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	contract, err := h.contractService.Create(tc, services.CreateContractParams{
		ProposalID: req.ProposalID,
		Title:      req.Title,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", contract)
}

// Get 查询单条合同
func (h *ContractHandler) Get(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.GetByID(tc, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, contract)
}

// List 分页查询合同列表
func (h *ContractHandler) List(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	contracts, pageInfo, err := h.contractService.GetWithPage(tc, status, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, contracts, pageInfo)
}

// Sign 签署合同
func (h *ContractHandler) Sign(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.Sign(tc, id, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "合同已签署", contract)
}

// Terminate 终止合同
func (h *ContractHandler) Terminate(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contractService.Terminate(tc, id, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "合同已终止", contract)
}

// Delete 删除合同
func (h *ContractHandler) Delete(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contractService.Delete(tc, id, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
