package session

import (
	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"
	sessionservice "github.com/elfabitto/sistema-de-atendimento/internal/service/session"

	"github.com/gin-gonic/gin"
)

// Current godoc
// @Summary      Current session of the caller
// @Description  data is null while the attendant is idle.
// @Tags         Session
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /v1/sessions/current [get]
// @Security     ApiKeyAuth
func (h *SessionHandler) Current(c *gin.Context) {
	cur, err := h.current.Current(c, response.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, cur)
}

func (h *SessionHandler) Accept(c *gin.Context) {
	var req apirequest.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s, err := h.controller.Accept(c, response.UserID(c), req.RequestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, s)
}

// Finish godoc
// @Summary      Conclude the caller's session
// @Description  The attendant rotates to the tail of the queue.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request body request.SessionActionRequest true "request id and optional note"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{} "no active session on this request"
// @Router       /v1/sessions/finish [post]
// @Security     ApiKeyAuth
func (h *SessionHandler) Finish(c *gin.Context) {
	var req apirequest.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.controller.Finish(c, response.UserID(c), req.RequestID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, outcomeBody(out))
}

// Skip godoc
// @Summary      Pass the request on
// @Description  The request goes to the next free attendant; the caller rotates to the tail.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request body request.SessionActionRequest true "request id"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{} "no active session on this request"
// @Router       /v1/sessions/skip [post]
// @Security     ApiKeyAuth
func (h *SessionHandler) Skip(c *gin.Context) {
	var req apirequest.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	out, err := h.controller.Skip(c, response.UserID(c), req.RequestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, outcomeBody(out))
}

func outcomeBody(out sessionservice.Outcome) gin.H {
	return gin.H{
		"session":           out.Session,
		"request":           out.Request,
		"attendant":         out.Attendant,
		"next_attendant_id": out.NextAttendantID(),
	}
}
