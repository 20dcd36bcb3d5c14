package router

import (
	"awp/internal/handlers"
	"awp/internal/middleware"
	"awp/internal/services"
	"awp/pkg/response"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()
	tenant := middleware.NewTenantMiddleware()

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(services.NewUserService(), services.NewTenantService())
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/register", authHandler.Register)    // 用户注册
			authGroup.POST("/logout", auth.RequireLogin(), authHandler.Logout)
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 🔒 获取当前用户完整信息（租户上下文可缺省）
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)

			// 🔒 切换当前工作租户
			authGroup.POST("/switch-tenant", auth.RequireLogin(), authHandler.SwitchTenant)
		}

		// 租户路由
		tenantHandler := handlers.NewTenantHandler()
		tenants := api.Group("/tenants")
		tenants.Use(auth.RequireLogin())
		{
			// 🔒 开通租户仅需登录，此时用户可能还没有任何租户
			tenants.POST("", tenantHandler.Provision)
			tenants.POST("/default", tenantHandler.SetDefault)

			// 🔒 以下操作作用于当前租户
			current := tenants.Group("/current", tenant.RequireTenant())
			{
				current.GET("", tenantHandler.Current)
				current.PUT("", tenantHandler.Update)
				current.POST("/schedule-deletion", tenantHandler.ScheduleDeletion)
				current.POST("/cancel-deletion", tenantHandler.CancelDeletion)
			}
		}

		// 成员路由
		membershipHandler := handlers.NewMembershipHandler()
		members := api.Group("/members", auth.RequireLogin(), tenant.RequireTenant())
		{
			members.GET("", membershipHandler.GetMembers)
			members.PUT("/:user_id/role", membershipHandler.ChangeRole)
			members.POST("/:user_id/suspend", membershipHandler.Suspend)
			members.DELETE("/:user_id", membershipHandler.Remove)
		}

		// 邀请路由
		invitationHandler := handlers.NewInvitationHandler()
		invitations := api.Group("/invitations")
		invitations.Use(auth.RequireLogin())
		{
			// 🔒 凭令牌处理邀请，只需登录
			invitations.POST("/:token/accept", invitationHandler.Accept)
			invitations.POST("/:token/decline", invitationHandler.Decline)

			// 🔒 租户侧管理
			manage := invitations.Group("", tenant.RequireTenant())
			{
				manage.POST("", invitationHandler.Invite)
				manage.GET("/pending", invitationHandler.GetPending)
				manage.DELETE("/:id", invitationHandler.Revoke)
			}
		}

		// 咨询路由
		consultationHandler := handlers.NewConsultationHandler()
		consultations := api.Group("/consultations", auth.RequireLogin(), tenant.RequireTenant())
		{
			consultations.POST("", consultationHandler.Create)
			consultations.GET("", consultationHandler.List)
			consultations.GET("/:id", consultationHandler.Get)
			consultations.PUT("/:id", consultationHandler.Update)
			consultations.DELETE("/:id", consultationHandler.Delete)

			// 私人备注
			consultations.POST("/:id/notes", consultationHandler.CreateNote)
			consultations.GET("/:id/notes", consultationHandler.GetNotes)
			consultations.DELETE("/:id/notes/:note_id", consultationHandler.DeleteNote)
		}

		// 提案路由
		proposalHandler := handlers.NewProposalHandler()
		proposals := api.Group("/proposals", auth.RequireLogin(), tenant.RequireTenant())
		{
			proposals.POST("", proposalHandler.Create)
			proposals.GET("", proposalHandler.List)
			proposals.GET("/:id", proposalHandler.Get)
			proposals.PUT("/:id", proposalHandler.Update)
			proposals.PUT("/:id/status", proposalHandler.UpdateStatus)
			proposals.POST("/:id/generate-draft", proposalHandler.GenerateDraft)
			proposals.DELETE("/:id", proposalHandler.Delete)
		}

		// 合同路由
		contractHandler := handlers.NewContractHandler()
		contracts := api.Group("/contracts", auth.RequireLogin(), tenant.RequireTenant())
		{
			contracts.POST("", contractHandler.Create)
			contracts.GET("", contractHandler.List)
			contracts.GET("/:id", contractHandler.Get)
			contracts.POST("/:id/sign", contractHandler.Sign)
			contracts.POST("/:id/terminate", contractHandler.Terminate)
			contracts.DELETE("/:id", contractHandler.Delete)
		}

		// 账单路由
		invoiceHandler := handlers.NewInvoiceHandler()
		invoices := api.Group("/invoices", auth.RequireLogin(), tenant.RequireTenant())
		{
			invoices.POST("", invoiceHandler.Create)
			invoices.GET("", invoiceHandler.List)
			invoices.GET("/:id", invoiceHandler.Get)
			invoices.POST("/:id/send", invoiceHandler.Send)
			invoices.POST("/:id/paid", invoiceHandler.MarkPaid)
			invoices.POST("/:id/void", invoiceHandler.Void)
		}

		// 操作日志路由
		auditHandler := handlers.NewAuditHandler()
		auditLogs := api.Group("/audit-logs", auth.RequireLogin(), tenant.RequireTenant())
		{
			auditLogs.GET("", auditHandler.List)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "AWP",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
