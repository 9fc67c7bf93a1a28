package attendant

import (
	"context"
	"io"
	"testing"
	"time"

	apirequest "github.com/elfabitto/sistema-de-atendimento/internal/api/request"
	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/memory"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewAttendantService(memory.NewStore(), nil, logger)
	ctx := context.Background()

	a, err := svc.Register(ctx, apirequest.RegisterAttendantRequest{Name: " Ana ", Email: "Ana@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", a.Name)
	assert.Equal(t, "ana@example.com", a.Email)
	assert.False(t, a.Available)
	assert.Nil(t, a.QueuePosition)

	_, err = svc.Register(ctx, apirequest.RegisterAttendantRequest{Name: "Other", Email: "ana@example.com"})
	assert.True(t, errors.Is(err, constant.ConflictErr))

	_, err = svc.Register(ctx, apirequest.RegisterAttendantRequest{Name: "  ", Email: "x@example.com"})
	assert.True(t, errors.Is(err, constant.InvalidInputErr))
}

type stubActivity struct {
	gotLimit, gotOffset int
}

func (s *stubActivity) AttendantEvents(_ context.Context, attendantID int64, limit, offset int) ([]domain.Event, int64, error) {
	s.gotLimit, s.gotOffset = limit, offset
	ev := domain.NewEvent(domain.EventSessionConcluded, time.Now())
	ev.AttendantID = attendantID
	return []domain.Event{ev}, 11, nil
}

func TestActivity(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()
	store := memory.NewStore()
	a := &domain.Attendant{Name: "ana", Email: "ana@example.com"}
	require.NoError(t, store.CreateAttendant(ctx, a))

	stub := &stubActivity{}
	svc := NewAttendantService(store, stub, logger)

	events, total, err := svc.Activity(ctx, a.ID, 10, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 11, total)
	require.Len(t, events, 1)
	assert.Equal(t, a.ID, events[0].AttendantID)
	assert.Equal(t, 10, stub.gotOffset)

	_, _, err = svc.Activity(ctx, 999, 10, 0)
	assert.True(t, errors.Is(err, constant.NotFoundErr))

	events, total, err = NewAttendantService(store, nil, logger).Activity(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, total)
}
