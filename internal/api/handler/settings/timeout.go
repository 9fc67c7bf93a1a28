package settings

import (
	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"

	"github.com/gin-gonic/gin"
)

func (h *SettingsHandler) GetTimeout(c *gin.Context) {
	response.OK(c, gin.H{
		"minutes": int(h.settingsService.TimeoutThreshold(c).Minutes()),
	})
}

// SetTimeout godoc
// @Summary      Change the session timeout
// @Description  Takes effect on the next sweep; running sessions are measured against the new value.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request body request.SetTimeoutRequest true "minutes, at least 1"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} map[string]interface{}
// @Router       /v1/settings/timeout [put]
// @Security     ApiKeyAuth
func (h *SettingsHandler) SetTimeout(c *gin.Context) {
	var req apirequest.SetTimeoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.settingsService.SetTimeoutThreshold(c, req.Minutes); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"minutes": req.Minutes})
}
