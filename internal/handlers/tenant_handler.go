package handlers

import (
	"awp/internal/middleware"
	"awp/internal/services"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TenantHandler struct {
	tenantService *services.TenantService
	userService   *services.UserService
}

func NewTenantHandler() *TenantHandler {
	return &TenantHandler{
		tenantService: services.NewTenantService(),
		userService:   services.NewUserService(),
	}
}

type ProvisionTenantRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Slug string `json:"slug" binding:"required,min=3,max=50"`
}

// Provision 开通租户，创建人自动成为owner
func (h *TenantHandler) Provision(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req ProvisionTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	tenant, err := h.tenantService.Provision(req.Name, req.Slug, userID)
	if err != nil {
		if err == gorm.ErrDuplicatedKey {
			response.BadRequest(c, "租户标识已被占用")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "开通成功", tenant)
}

// Current 获取当前租户
func (h *TenantHandler) Current(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetCurrent(tc)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, tenant)
}

type UpdateTenantRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	PrimaryColor   string `json:"primary_color" binding:"max=20"`
	SecondaryColor string `json:"secondary_color" binding:"max=20"`
}

// Update 更新租户展示信息
func (h *TenantHandler) Update(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	tenant, err := h.tenantService.UpdateProfile(tc, req.Name, req.PrimaryColor, req.SecondaryColor, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", tenant)
}

// ScheduleDeletion 预约删除租户
func (h *TenantHandler) ScheduleDeletion(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.ScheduleDeletion(tc, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已预约删除", tenant)
}

// CancelDeletion 取消删除预约
func (h *TenantHandler) CancelDeletion(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.CancelDeletion(tc, auditMeta(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已取消删除", tenant)
}

type SetDefaultTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SetDefault 设置默认租户
func (h *TenantHandler) SetDefault(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req SetDefaultTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.userService.SetDefaultTenant(userID, req.TenantID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "设置成功", nil)
}
