package response

import (
	"net/http"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, constant.NotFoundErr):
		return http.StatusNotFound
	case errors.Is(err, constant.AlreadyQueuedErr),
		errors.Is(err, constant.NotQueuedErr),
		errors.Is(err, constant.ConflictErr):
		return http.StatusConflict
	case errors.Is(err, constant.InvalidStateErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, constant.InvalidInputErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	c.JSON(status, gin.H{
		"code":    status,
		"message": err.Error(),
	})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    http.StatusBadRequest,
		"message": msg,
	})
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": "success",
		"data":    data,
	})
}

// UserID is the authenticated caller set by the auth middleware.
func UserID(c *gin.Context) int64 {
	return c.MustGet(constant.UserIdKey).(int64)
}
