package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(t *testing.T, query string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"正常参数", "page=3&page_size=25", 3, 25},
		{"缺省", "", DefaultPage, DefaultPageSize},
		{"非法值回落", "page=abc&page_size=-5", DefaultPage, DefaultPageSize},
		{"零回落", "page=0&page_size=0", DefaultPage, DefaultPageSize},
		{"超上限收敛", "page=1&page_size=9999", 1, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := ParsePageParams(contextWithQuery(t, tt.query))
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantPageSize, params.PageSize)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	// 整除边界
	info = NewPageInfo(3, 10, 30)
	assert.Equal(t, 3, info.TotalPages)
	assert.False(t, info.HasNext)

	// 空结果
	info = NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)
}

func TestPageParamsOffsetLimit(t *testing.T) {
	params := &PageParams{Page: 3, PageSize: 20}
	assert.Equal(t, 40, params.GetOffset())
	assert.Equal(t, 20, params.GetLimit())
}
