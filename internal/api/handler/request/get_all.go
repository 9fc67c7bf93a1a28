package request

import (
	"net/http"

	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"
	"github.com/elfabitto/sistema-de-atendimento/pkg/paginator"

	"github.com/gin-gonic/gin"
)

// GetAll godoc
// @Summary      List requests
// @Tags         Request
// @Produce      json
// @Param        status query string false "pending, in_service or concluded"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Number of items per page" default(10)
// @Success      200 {object} map[string]interface{} "requests with pagination metadata"
// @Failure      400 {object} map[string]interface{} "unknown status"
// @Router       /v1/requests [get]
// @Security     ApiKeyAuth
func (h *RequestHandler) GetAll(c *gin.Context) {
	pagination := paginator.New(c)

	all, count, err := h.requestService.List(c, c.Query("status"), pagination.Size, pagination.From)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "success",
		"data":    all,
		"meta":    pagination.Meta(count),
	})
}
