package domain

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestInService RequestStatus = "in_service"
	RequestConcluded RequestStatus = "concluded"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInService, RequestConcluded:
		return true
	}
	return false
}

type Request struct {
	ID            int64         `json:"id"`
	Description   string        `json:"description"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Status        RequestStatus `json:"status"`
	Version       int64         `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type RequestFilter struct {
	Status RequestStatus
	Limit  int
	Offset int
}
