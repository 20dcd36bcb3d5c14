package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler() *AuditHandler {
	return &AuditHandler{
		auditService: services.NewAuditService(),
	}
}

// List 分页查询操作日志
func (h *AuditHandler) List(c *gin.Context) {
	tc, ok := tenantContext(c)
	if !ok {
		return
	}

	params := pagination.ParsePageParams(c)
	entityType := c.Query("entity_type")

	logs, pageInfo, err := h.auditService.GetWithPage(tc, entityType, params.Page, params.PageSize)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithPage(c, logs, pageInfo)
}
