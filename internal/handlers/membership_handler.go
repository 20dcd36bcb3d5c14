package handlers

import (
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler() *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(),
	}
}

// GetMembers 列出租户成员
func (h *MembershipHandler) GetMembers(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	members, err := h.membershipService.GetMembers(tc)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, members)
}

type ChangeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// ChangeRole 调整成员角色
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	membership, err := h.membershipService.ChangeRole(tc, userID, req.Role, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色已调整", membership)
}

// Remove 移除成员
func (h *MembershipHandler) Remove(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(tc, userID, auditMeta(c)); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "成员已移除", nil)
}

// Suspend 暂停成员
func (h *MembershipHandler) Suspend(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	membership, err := h.membershipService.SuspendMember(tc, userID, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "成员已暂停", membership)
}
