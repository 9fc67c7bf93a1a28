package api

import (
	"net/http"

	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/attendant"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/queue"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/session"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/settings"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/handler/stats"
	"github.com/elfabitto/sistema-de-atendimento/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Attendant *attendant.AttendantHandler
	Queue     *queue.QueueHandler
	Request   *request.RequestHandler
	Session   *session.SessionHandler
	Stats     *stats.StatsHandler
	Settings  *settings.SettingsHandler
}

// SetupAPIRoutes
// @title						Attendant rotation service
// @version         			1.0.0
// @description     			Queue, distribution and session lifecycle of customer requests
// @Host 						localhost:8080
// @BasePath  					/
// @Schemes 					https
//
// idempotency may be nil when redis is disabled; request creation is then
// not deduplicated.
func (s *Server) SetupAPIRoutes(h Handlers, idempotency *middleware.IdempotencyMiddleware) {
	r := s.engine

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/v1/attendants", h.Attendant.Register)

	v1 := r.Group("v1")
	v1.Use(middleware.HandleAuth())
	{
		v1.GET("/attendants/me", h.Attendant.Me)
		v1.GET("/attendants/me/events", h.Attendant.Events)

		v1.POST("/queue/join", h.Queue.Join)
		v1.POST("/queue/leave", h.Queue.Leave)
		v1.GET("/queue", h.Queue.List)

		create := []gin.HandlerFunc{h.Request.Create}
		if idempotency != nil {
			create = append([]gin.HandlerFunc{idempotency.Handle}, create...)
		}
		v1.POST("/requests", create...)
		v1.GET("/requests", h.Request.GetAll)
		v1.GET("/requests/:id", h.Request.View)
		v1.GET("/requests/:id/timeline", h.Request.ViewTimeline)

		v1.GET("/sessions/current", h.Session.Current)
		v1.POST("/sessions/accept", h.Session.Accept)
		v1.POST("/sessions/finish", h.Session.Finish)
		v1.POST("/sessions/skip", h.Session.Skip)

		v1.GET("/stats", h.Stats.Global)
		v1.GET("/stats/me", h.Stats.Me)
		v1.GET("/stats/ranking", h.Stats.Ranking)

		v1.GET("/settings/timeout", h.Settings.GetTimeout)
		v1.PUT("/settings/timeout", h.Settings.SetTimeout)
	}
}
