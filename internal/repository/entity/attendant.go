package entity

import (
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

type Attendant struct {
	ID            int64 `gorm:"primaryKey"`
	Name          string
	Email         string
	Available     bool
	Busy          bool
	QueuePosition *int
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Attendant) TableName() string {
	return "attendants"
}

func (a Attendant) ToDomain() domain.Attendant {
	return domain.Attendant{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Available:     a.Available,
		Busy:          a.Busy,
		QueuePosition: a.QueuePosition,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func AttendantFromDomain(a domain.Attendant) Attendant {
	return Attendant{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Available:     a.Available,
		Busy:          a.Busy,
		QueuePosition: a.QueuePosition,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
