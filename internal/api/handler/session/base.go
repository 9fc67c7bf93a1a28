package session

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	requestservice "github.com/elfabitto/sistema-de-atendimento/internal/service/request"
	sessionservice "github.com/elfabitto/sistema-de-atendimento/internal/service/session"
)

type SessionHandler struct {
	controller controller
	current    currentReader
}

type controller interface {
	Accept(ctx context.Context, attendantID, requestID int64) (domain.ServiceSession, error)
	Finish(ctx context.Context, attendantID, requestID int64, note string) (sessionservice.Outcome, error)
	Skip(ctx context.Context, attendantID, requestID int64) (sessionservice.Outcome, error)
}

type currentReader interface {
	Current(ctx context.Context, attendantID int64) (*requestservice.CurrentSession, error)
}

func New(controller controller, current currentReader) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		current:    current,
	}
}
