package queue

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/service/session"
)

type QueueHandler struct {
	queueManager queueManager
	leaver       leaver
}

type queueManager interface {
	Join(ctx context.Context, attendantID int64) (domain.Attendant, error)
	ListAvailable(ctx context.Context) ([]domain.Attendant, error)
}

// leaver releases any held request before taking the attendant out.
type leaver interface {
	Leave(ctx context.Context, attendantID int64) (domain.Attendant, session.Outcome, error)
}

func New(queueManager queueManager, leaver leaver) *QueueHandler {
	return &QueueHandler{
		queueManager: queueManager,
		leaver:       leaver,
	}
}
