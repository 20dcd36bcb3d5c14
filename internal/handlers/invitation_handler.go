package handlers

import (
	"awp/internal/middleware"
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler() *InvitationHandler {
	return &InvitationHandler{
		invitationService: services.NewInvitationService(),
	}
}

type InviteRequest struct {
	Email   string      `json:"email" binding:"required,email"`
	Role    models.Role `json:"role" binding:"required"`
	Message string      `json:"message" binding:"max=500"`
}

// Invite 发出成员邀请
func (h *InvitationHandler) Invite(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				if e.Field() == "Email" {
					response.BadRequest(c, "邮箱格式不正确")
					return
				}
			}
		}
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	invitation, err := h.invitationService.Invite(tc, req.Email, req.Role, req.Message, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "邀请已发出", invitation)
}

// GetPending 列出待处理邀请
func (h *InvitationHandler) GetPending(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.GetPending(tc)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, invitations)
}

// Accept 接受邀请（凭令牌，无需租户上下文）
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "缺少邀请令牌")
		return
	}

	membership, err := h.invitationService.Accept(token, userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已加入租户", membership)
}

// Decline 拒绝邀请
func (h *InvitationHandler) Decline(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}

	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "缺少邀请令牌")
		return
	}

	if err := h.invitationService.Decline(token, userID); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已拒绝邀请", nil)
}

// Revoke 撤回邀请
func (h *InvitationHandler) Revoke(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(tc, id, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "邀请已撤回", nil)
}
