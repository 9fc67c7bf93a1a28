package queue

import (
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/gin-gonic/gin"
)

// Join godoc
// @Summary      Join the rotation queue
// @Tags         Queue
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{} "unknown attendant"
// @Failure      409 {object} map[string]interface{} "already queued"
// @Router       /v1/queue/join [post]
// @Security     ApiKeyAuth
func (h *QueueHandler) Join(c *gin.Context) {
	a, err := h.queueManager.Join(c, response.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, a)
}

// Leave godoc
// @Summary      Leave the rotation queue
// @Description  A request held by the attendant is released back to the queue.
// @Tags         Queue
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{} "not queued"
// @Router       /v1/queue/leave [post]
// @Security     ApiKeyAuth
func (h *QueueHandler) Leave(c *gin.Context) {
	a, out, err := h.leaver.Leave(c, response.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	data := gin.H{"attendant": a}
	if out.Request.ID != 0 {
		data["released_request_id"] = out.Request.ID
		data["next_attendant_id"] = out.NextAttendantID()
	}

	response.OK(c, data)
}

func (h *QueueHandler) List(c *gin.Context) {
	list, err := h.queueManager.ListAvailable(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries := domain.NewQueueEntries(list)
	response.OK(c, entries)
}
