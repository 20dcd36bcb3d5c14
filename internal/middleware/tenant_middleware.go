package middleware

import (
	"awp/internal/database"
	"awp/internal/services"
	"awp/pkg/errors"
	"awp/pkg/logger"
	"awp/pkg/response"
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 模拟访问的目标租户请求头，仅平台管理员生效
const impersonateHeader = "X-Impersonate-Tenant"

// TenantMiddleware 租户上下文中间件
//
// 每个请求解析一次租户上下文并挂到gin上下文里，后续处理器统一从
// GetTenantContext取。提示的来源：会话存储里记录的当前租户、请求
// 头里的模拟目标；两者都只是提示，解析器负责校验。
type TenantMiddleware struct {
	resolver *services.TenantContextResolver
}

func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{
		resolver: services.NewTenantContextResolver(),
	}
}

// RequireTenant 要求解析出租户上下文
func (m *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		hints := services.ResolveHints{}

		// 会话存储里的当前租户提示，读失败按无提示处理
		sessionTenantID, err := database.GetTenantStore().GetCurrentTenant(userID)
		if err != nil {
			logger.GetLogger().Warnf("读取租户会话失败 user=%d: %v", userID, err)
		} else {
			hints.SessionTenantID = sessionTenantID
		}

		// 模拟访问请求头
		if header := c.GetHeader(impersonateHeader); header != "" {
			tenantID, err := strconv.ParseUint(header, 10, 64)
			if err == nil && tenantID > 0 {
				hints.ImpersonateTenantID = uint(tenantID)
			}
		}

		tc, err := m.resolver.Resolve(userID, hints)
		if err != nil {
			if stderrors.Is(err, errors.ErrNoTenantAccess) {
				response.Forbidden(c, errors.ErrNoTenantAccess.Error())
			} else {
				response.ServerError(c, "租户上下文解析失败")
			}
			c.Abort()
			return
		}

		c.Set("tenant_context", tc)
		c.Next()
	}
}

// GetTenantContext 从gin上下文取租户上下文
func GetTenantContext(c *gin.Context) (*services.TenantContext, bool) {
	value, exists := c.Get("tenant_context")
	if !exists {
		return nil, false
	}
	tc, ok := value.(*services.TenantContext)
	return tc, ok
}
