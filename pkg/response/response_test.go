package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"awp/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	return c, w
}

func TestHandleErrorSentinelMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"无租户访问", errors.ErrNoTenantAccess, http.StatusForbidden},
		{"权限不足", errors.ErrPermissionDenied, http.StatusForbidden},
		{"包装的权限不足", fmt.Errorf("%w: member:invite", errors.ErrPermissionDenied), http.StatusForbidden},
		{"资源不存在", errors.ErrNotFound, http.StatusNotFound},
		{"配置记录缺失", errors.ErrTenantProfileMissing, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			HandleError(c, tt.err)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHandleErrorUnknownErrorHidesDetail(t *testing.T) {
	c, w := newTestContext(t)

	// 数据库驱动一类的原始错误信息不得出现在响应体里
	HandleError(c, fmt.Errorf(`pq: relation "audit_logs" does not exist`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "audit_logs")
	assert.Contains(t, w.Body.String(), "服务器内部错误")
}
