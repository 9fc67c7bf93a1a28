package settings

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type settingsService struct {
	store    settingsStore
	fallback time.Duration
	logger   *logrus.Logger
}

type settingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

func NewSettingsService(store settingsStore, fallback time.Duration, logger *logrus.Logger) *settingsService {
	return &settingsService{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Fixed is a constant timeout threshold.
type Fixed time.Duration

func (f Fixed) TimeoutThreshold(context.Context) time.Duration {
	return time.Duration(f)
}
