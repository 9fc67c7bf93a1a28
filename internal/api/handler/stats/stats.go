package stats

import (
	"github.com/elfabitto/sistema-de-atendimento/internal/api/response"

	"github.com/gin-gonic/gin"
)

func (h *StatsHandler) Global(c *gin.Context) {
	s, err := h.statsService.Global(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

func (h *StatsHandler) Me(c *gin.Context) {
	s, err := h.statsService.ForAttendant(c, response.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

func (h *StatsHandler) Ranking(c *gin.Context) {
	r, err := h.statsService.Ranking(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}
