package attendant

import (
	"context"
	"strings"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type attendantService struct {
	store    attendantStore
	activity activityReader
	logger   *logrus.Logger
}

type attendantStore interface {
	CreateAttendant(ctx context.Context, a *domain.Attendant) error
	GetAttendant(ctx context.Context, id int64) (domain.Attendant, error)
}

type activityReader interface {
	AttendantEvents(ctx context.Context, attendantID int64, limit, offset int) ([]domain.Event, int64, error)
}

// NewAttendantService wires attendant use cases. activity may be nil when no
// analytics store is configured.
func NewAttendantService(store attendantStore, activity activityReader, logger *logrus.Logger) *attendantService {
	return &attendantService{
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Register creates an attendant outside the rotation. Emails are unique; a
// duplicate fails with constant.ConflictErr.
func (as *attendantService) Register(ctx context.Context, req apirequest.RegisterAttendantRequest) (domain.Attendant, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return domain.Attendant{}, errors.Wrap(constant.InvalidInputErr, "name and email are required")
	}

	a := domain.Attendant{Name: name, Email: email}
	if err := as.store.CreateAttendant(ctx, &a); err != nil {
		return domain.Attendant{}, err
	}

	as.logger.WithField("attendant_id", a.ID).Info("attendant registered")
	return a, nil
}

func (as *attendantService) Get(ctx context.Context, id int64) (domain.Attendant, error) {
	return as.store.GetAttendant(ctx, id)
}

// Activity pages through the attendant's lifecycle events, newest first.
func (as *attendantService) Activity(ctx context.Context, id int64, limit, offset int) ([]domain.Event, int64, error) {
	if _, err := as.store.GetAttendant(ctx, id); err != nil {
		return nil, 0, err
	}
	if as.activity == nil {
		return []domain.Event{}, 0, nil
	}
	return as.activity.AttendantEvents(ctx, id, limit, offset)
}
