package paginator

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Paginate
	}{
		{"defaults", "", Paginate{From: 0, Size: DefaultSize, Page: 1}},
		{"third page", "page=3&page_size=20", Paginate{From: 40, Size: 20, Page: 3}},
		{"size clamped", "page_size=1000", Paginate{From: 0, Size: MaxSize, Page: 1}},
		{"garbage", "page=x&page_size=-4", Paginate{From: 0, Size: DefaultSize, Page: 1}},
		{"zero page", "page=0&page_size=5", Paginate{From: 0, Size: 5, Page: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(contextWithQuery(tt.query)))
		})
	}
}
