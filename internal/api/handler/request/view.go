package request

import (
	"strconv"

	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"

	"github.com/gin-gonic/gin"
)

func (h *RequestHandler) View(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	detail, err := h.requestService.Detail(c, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, detail)
}

// ViewTimeline godoc
// @Summary      View request timeline
// @Description  Lifecycle events of a request, oldest first.
// @Tags         Request
// @Produce      json
// @Param        id path int true "request id"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Router       /v1/requests/{id}/timeline [get]
// @Security     ApiKeyAuth
func (h *RequestHandler) ViewTimeline(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	events, err := h.requestService.Timeline(c, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, events)
}

func requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid request id")
		return 0, false
	}
	return id, true
}
