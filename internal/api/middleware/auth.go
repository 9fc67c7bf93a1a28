package middleware

import (
	"net/http"
	"strconv"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/gin-gonic/gin"
)

// AuthHeader carries the attendant id. Authentication itself happens at the
// API gateway in front of this service.
const AuthHeader = "X-Auth-User-Id"

func HandleAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		attendantID, err := strconv.ParseInt(c.GetHeader(AuthHeader), 10, 64)
		if err != nil || attendantID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "user is not authorized",
			})
			return
		}

		c.Set(constant.UserIdKey, attendantID)
		c.Next()
	}
}
