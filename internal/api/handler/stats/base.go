package stats

import (
	"context"

	statsservice "github.com/elfabitto/sistema-de-atendimento/internal/service/stats"
)

type StatsHandler struct {
	statsService statsService
}

type statsService interface {
	Global(ctx context.Context) (statsservice.GlobalStats, error)
	ForAttendant(ctx context.Context, attendantID int64) (statsservice.AttendantStats, error)
	Ranking(ctx context.Context) ([]statsservice.AttendantStats, error)
}

func New(statsService statsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}
