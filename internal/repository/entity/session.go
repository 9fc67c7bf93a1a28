package entity

import (
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/google/uuid"
)

type ServiceSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   int64
	AttendantID int64
	Status      string
	StartedAt   time.Time
	AcceptedAt  *time.Time
	EndedAt     *time.Time
	Note        string
	Version     int64
}

func (ServiceSession) TableName() string {
	return "service_sessions"
}

func (s ServiceSession) ToDomain() domain.ServiceSession {
	return domain.ServiceSession{
		ID:          s.ID,
		RequestID:   s.RequestID,
		AttendantID: s.AttendantID,
		Status:      domain.SessionStatus(s.Status),
		StartedAt:   s.StartedAt,
		AcceptedAt:  s.AcceptedAt,
		EndedAt:     s.EndedAt,
		Note:        s.Note,
		Version:     s.Version,
	}
}

func SessionFromDomain(s domain.ServiceSession) ServiceSession {
	return ServiceSession{
		ID:          s.ID,
		RequestID:   s.RequestID,
		AttendantID: s.AttendantID,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		AcceptedAt:  s.AcceptedAt,
		EndedAt:     s.EndedAt,
		Note:        s.Note,
		Version:     s.Version,
	}
}
