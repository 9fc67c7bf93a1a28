package entity

import (
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

type Request struct {
	ID            int64 `gorm:"primaryKey"`
	Description   string
	CustomerName  string
	CustomerPhone string
	Status        string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Request) TableName() string {
	return "requests"
}

func (r Request) ToDomain() domain.Request {
	return domain.Request{
		ID:            r.ID,
		Description:   r.Description,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Status:        domain.RequestStatus(r.Status),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func RequestFromDomain(r domain.Request) Request {
	return Request{
		ID:            r.ID,
		Description:   r.Description,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Status:        string(r.Status),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
