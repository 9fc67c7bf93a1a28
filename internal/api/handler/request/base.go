package request

import (
	"context"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	requestservice "github.com/elfabitto/sistema-de-atendimento/internal/service/request"
)

type RequestHandler struct {
	requestService requestService
}

type requestService interface {
	Create(ctx context.Context, req apirequest.CreateRequestRequest) (requestservice.Created, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.Request, int64, error)
	Detail(ctx context.Context, id int64) (requestservice.Detail, error)
	Timeline(ctx context.Context, id int64) ([]domain.Event, error)
}

func New(requestService requestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}
