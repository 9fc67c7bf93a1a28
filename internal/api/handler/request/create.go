package request

import (
	"net/http"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"

	"github.com/gin-gonic/gin"
)

// Create godoc
// @Summary      Create a customer request
// @Description  The request is handed to the first free attendant in the queue, or stays pending.
// @Tags         Request
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "replays the first response for the same key"
// @Param        request body request.CreateRequestRequest true "request body"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Router       /v1/requests [post]
// @Security     ApiKeyAuth
func (h *RequestHandler) Create(c *gin.Context) {
	var req apirequest.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.requestService.Create(c, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "created",
		"data":    created,
	})
}
