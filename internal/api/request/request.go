package request

type RegisterAttendantRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type CreateRequestRequest struct {
	Description   string `json:"description" binding:"required"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
}

// SessionActionRequest targets the caller's active session on a request.
type SessionActionRequest struct {
	RequestID int64  `json:"request_id" binding:"required"`
	Note      string `json:"note"`
}

type SetTimeoutRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1"`
}
