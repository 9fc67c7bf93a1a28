package attendant

import (
	"net/http"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"
	"github.com/elfabitto/sistema-de-atendimento/pkg/paginator"

	"github.com/gin-gonic/gin"
)

// Register godoc
// @Summary      Register attendant
// @Tags         Attendant
// @Accept       json
// @Produce      json
// @Param        request body request.RegisterAttendantRequest true "attendant"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{} "email already registered"
// @Router       /v1/attendants [post]
func (h *AttendantHandler) Register(c *gin.Context) {
	var req apirequest.RegisterAttendantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.attendantService.Register(c, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registered",
		"data":    a,
	})
}

// Me returns the calling attendant, including its queue state.
func (h *AttendantHandler) Me(c *gin.Context) {
	a, err := h.attendantService.Get(c, response.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, a)
}

// Events godoc
// @Summary      Activity of the caller
// @Description  Lifecycle events involving the authenticated attendant, newest first.
// @Tags         Attendant
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Number of items per page" default(10)
// @Success      200 {object} map[string]interface{} "events with pagination metadata"
// @Router       /v1/attendants/me/events [get]
// @Security     ApiKeyAuth
func (h *AttendantHandler) Events(c *gin.Context) {
	pagination := paginator.New(c)

	events, count, err := h.attendantService.Activity(c, response.UserID(c), pagination.Size, pagination.From)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "success",
		"data":    events,
		"meta":    pagination.Meta(count),
	})
}
