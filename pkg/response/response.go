package response

import (
	stderrors "errors"
	"net/http"

	"awp/pkg/errors"
	"awp/pkg/logger"
	"awp/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}

// HandleError 根据领域错误类型选择返回码
func HandleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		Success(c, nil)
	case stderrors.Is(err, errors.ErrNoTenantAccess):
		Forbidden(c, errors.ErrNoTenantAccess.Error())
	case stderrors.Is(err, errors.ErrPermissionDenied):
		Forbidden(c, errors.ErrPermissionDenied.Error())
	case stderrors.Is(err, errors.ErrNotFound):
		NotFound(c, errors.ErrNotFound.Error())
	case stderrors.Is(err, errors.ErrTenantProfileMissing):
		ServerError(c, errors.ErrTenantProfileMissing.Error())
	default:
		// 未识别的错误不外传细节，完整信息进日志
		logger.GetLogger().Errorf("请求处理失败 %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		ServerError(c, "服务器内部错误")
	}
}
