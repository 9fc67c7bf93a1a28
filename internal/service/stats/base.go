package stats

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

type statsService struct {
	store statsStore
}

type statsStore interface {
	GetAttendant(ctx context.Context, id int64) (domain.Attendant, error)
	ListAttendants(ctx context.Context) ([]domain.Attendant, error)
	CountRequests(ctx context.Context, status domain.RequestStatus) (int64, error)
	CountSessions(ctx context.Context, status domain.SessionStatus) (int64, error)
	ListSessionsByAttendant(ctx context.Context, attendantID int64) ([]domain.ServiceSession, error)
}

func NewStatsService(store statsStore) *statsService {
	return &statsService{
		store: store,
	}
}

type AttendantCounts struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Busy      int64 `json:"busy"`
}

type RequestCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	InService int64 `json:"in_service"`
	Concluded int64 `json:"concluded"`
}

type SessionCounts struct {
	Total     int64 `json:"total"`
	Concluded int64 `json:"concluded"`
	Skipped   int64 `json:"skipped"`
	TimedOut  int64 `json:"timed_out"`
}

type GlobalStats struct {
	Attendants AttendantCounts `json:"attendants"`
	Requests   RequestCounts   `json:"requests"`
	Sessions   SessionCounts   `json:"sessions"`
}

type AttendantStats struct {
	AttendantID int64   `json:"attendant_id"`
	Name        string  `json:"name"`
	Concluded   int64   `json:"concluded"`
	Skipped     int64   `json:"skipped"`
	TimedOut    int64   `json:"timed_out"`
	MeanMinutes float64 `json:"mean_minutes"`
}
