package handlers

import (
	"time"

	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	consultationService *services.ConsultationService
}

func NewConsultationHandler() *ConsultationHandler {
	return &ConsultationHandler{
		consultationService: services.NewConsultationService(),
	}
}

type CreateConsultationRequest struct {
	ClientName  string     `json:"client_name" binding:"required,min=1,max=200"`
	ClientEmail string     `json:"client_email" binding:"omitempty,email"`
	Topic       string     `json:"topic" binding:"required,min=2,max=200"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Create 创建咨询
func (h *ConsultationHandler) Create(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	consultation, err := h.consultationService.Create(tc, services.CreateConsultationParams{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Topic:       req.Topic,
		ScheduledAt: req.ScheduledAt,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "创建成功", consultation)
}

// Get 查询单条咨询
func (h *ConsultationHandler) Get(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	consultation, err := h.consultationService.GetByID(tc, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, consultation)
}

// List 分页查询咨询列表
func (h *ConsultationHandler) List(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	consultations, pageInfo, err := h.consultationService.GetWithPage(tc, status, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, consultations, pageInfo)
}

type UpdateConsultationRequest struct {
	ClientName  string     `json:"client_name" binding:"omitempty,max=200"`
	ClientEmail string     `json:"client_email" binding:"omitempty,email"`
	Topic       string     `json:"topic" binding:"omitempty,min=2,max=200"`
	Status      string     `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Summary     string     `json:"summary" binding:"omitempty,max=5000"`
}

// Update 更新咨询
func (h *ConsultationHandler) Update(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	consultation, err := h.consultationService.Update(tc, id, services.UpdateConsultationParams{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Topic:       req.Topic,
		Status:      req.Status,
		ScheduledAt: req.ScheduledAt,
		Summary:     req.Summary,
	}, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", consultation)
}

// Delete 删除咨询
func (h *ConsultationHandler) Delete(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.consultationService.Delete(tc, id, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

type CreateNoteRequest struct {
	Body string `json:"body" binding:"required,min=1,max=5000"`
}

// CreateNote 添加私人备注
func (h *ConsultationHandler) CreateNote(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	note, err := h.consultationService.CreateNote(tc, id, req.Body, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "备注已保存", note)
}

// GetNotes 列出本人的备注
func (h *ConsultationHandler) GetNotes(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.consultationService.GetNotes(tc, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, notes)
}

// DeleteNote 删除本人的备注
func (h *ConsultationHandler) DeleteNote(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	noteID, ok := parseIDParam(c, "note_id")
	if !ok {
		return
	}

	if err := h.consultationService.DeleteNote(tc, noteID, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "备注已删除", nil)
}
