package handlers

import (
	"awp/internal/database"
	"awp/internal/middleware"
	"awp/internal/services"
	"awp/pkg/jwt"
	"awp/pkg/logger"
	"awp/pkg/response"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService   *services.UserService
	tenantService *services.TenantService
	resolver      *services.TenantContextResolver
	jwtManager    *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		tenantService: tenantService,
		resolver:      services.NewTenantContextResolver(),
		jwtManager:    jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.IsPlatformAdmin)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间
	if err := h.userService.UpdateLastLogin(user.ID); err != nil {
		logger.GetLogger().Warnf("更新最后登录时间失败 user=%d: %v", user.ID, err)
	}

	// 计算过期时间
	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:              user.ID,
			Username:        user.Username,
			Email:           user.Email,
			Name:            user.Name,
			IsPlatformAdmin: user.IsPlatformAdmin,
		},
	}

	response.Success(c, resp)
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=100"`
}

// Register 注册用户
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Create(req.Username, req.Email, req.Password, req.Name)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "注册成功", UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
	})
}

// Logout 用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	// 获取并验证当前token
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		// 没有token也算登出成功
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		// token无效也算登出成功
		response.Success(c, gin.H{"message": "登出成功"})
		return
	}

	// 清除会话里的租户选择
	if err := database.GetTenantStore().ClearCurrentTenant(claims.UserID); err != nil {
		logger.GetLogger().Warnf("清除租户会话失败 user=%d: %v", claims.UserID, err)
	}

	response.Success(c, gin.H{
		"message":     "登出成功",
		"user_id":     claims.UserID,
		"username":    claims.Username,
		"logout_time": time.Now(),
	})
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证头")
		return
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	newToken, err := h.jwtManager.RefreshToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Token无效")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()
	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
	})
}

// Me 获取当前用户完整信息和解析出的租户上下文
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.Unauthorized(c, "用户不存在")
		return
	}

	memberships, err := h.userService.GetMemberships(userID)
	if err != nil {
		response.ServerError(c, "查询成员关系失败")
		return
	}

	result := gin.H{
		"user": UserInfo{
			ID:              user.ID,
			Username:        user.Username,
			Email:           user.Email,
			Name:            user.Name,
			IsPlatformAdmin: user.IsPlatformAdmin,
		},
		"memberships": memberships,
	}

	// 租户上下文可能不存在（用户还没有任何租户），解析失败不算错误
	sessionTenantID, err := database.GetTenantStore().GetCurrentTenant(userID)
	if err != nil {
		logger.GetLogger().Warnf("读取租户会话失败 user=%d: %v", userID, err)
		sessionTenantID = 0
	}
	if tc, err := h.resolver.Resolve(userID, services.ResolveHints{SessionTenantID: sessionTenantID}); err == nil {
		result["tenant_context"] = tc
	}

	response.Success(c, result)
}

type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SwitchTenant 切换当前操作的租户
//
// 只把选择写进会话存储作为下次解析的提示，是否有效由解析器校验。
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 先用目标租户做一次解析，确认切换有效
	tc, err := h.resolver.Resolve(userID, services.ResolveHints{SessionTenantID: req.TenantID})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if tc.TenantID != req.TenantID {
		response.Forbidden(c, "不是该租户的生效成员")
		return
	}

	if err := database.GetTenantStore().SetCurrentTenant(userID, req.TenantID); err != nil {
		response.ServerError(c, "保存租户选择失败")
		return
	}

	response.SuccessWithMessage(c, "切换成功", tc)
}
