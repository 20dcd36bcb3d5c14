package handlers

import (
	"awp/internal/middleware"
	"awp/internal/services"
	"awp/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// tenantContext 取当前请求的租户上下文，缺失时直接写403
func tenantContext(c *gin.Context) (*services.TenantContext, bool) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		response.Forbidden(c, "缺少租户上下文")
		return nil, false
	}
	return tc, true
}

// auditMeta 采集请求环境元信息，尽力而为
func auditMeta(c *gin.Context) *services.AuditMeta {
	return &services.AuditMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// parseIDParam 解析路径上的ID参数
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的ID参数")
		return 0, false
	}
	return uint(id), true
}
