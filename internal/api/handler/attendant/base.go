package attendant

import (
	"context"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
)

type AttendantHandler struct {
	attendantService attendantService
}

type attendantService interface {
	Register(ctx context.Context, req apirequest.RegisterAttendantRequest) (domain.Attendant, error)
	Get(ctx context.Context, id int64) (domain.Attendant, error)
	Activity(ctx context.Context, id int64, limit, offset int) ([]domain.Event, int64, error)
}

func New(attendantService attendantService) *AttendantHandler {
	return &AttendantHandler{
		attendantService: attendantService,
	}
}
