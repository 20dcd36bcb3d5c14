package errors

import "errors"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

// ========== 领域错误定义 ==========

// 核心错误分类：
// ErrNoTenantAccess       - 用户没有任何可用的租户访问路径，请求终止
// ErrPermissionDenied     - 角色缺少所需权限，对外只暴露权限键本身
// ErrNotFound             - 资源不存在或不属于当前租户（两者不可区分）
// ErrTenantProfileMissing - 租户计数器行缺失，属于开通流程缺陷，必须大声失败
var (
	ErrNoTenantAccess       = errors.New("没有可访问的租户")
	ErrPermissionDenied     = errors.New("权限不足")
	ErrNotFound             = errors.New("资源不存在")
	ErrTenantProfileMissing = errors.New("租户配置记录缺失")
)
