package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", HandleAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet(constant.UserIdKey).(int64)})
	})

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"abc", http.StatusUnauthorized},
		{"0", http.StatusUnauthorized},
		{"-3", http.StatusUnauthorized},
		{"42", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set(AuthHeader, tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tt.want, w.Code, tt.header)
	}
}
