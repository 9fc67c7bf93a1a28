// Package queue keeps the attendant rotation. Available attendants hold
// positions 1..N; the lowest non-busy position is served next and an
// attendant that finishes a session moves to the tail.
package queue

import (
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/sirupsen/logrus"
)

type Manager struct {
	store    domain.Store
	locker   domain.Locker
	notifier domain.Notifier
	clock    domain.Clock
	logger   *logrus.Logger
}

func NewManager(
	store domain.Store,
	locker domain.Locker,
	notifier domain.Notifier,
	clock domain.Clock,
	logger *logrus.Logger,
) *Manager {
	return &Manager{
		store:    store,
		locker:   locker,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}
