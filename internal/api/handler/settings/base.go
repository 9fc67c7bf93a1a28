package settings

import (
	"context"
	"time"
)

type SettingsHandler struct {
	settingsService settingsService
}

type settingsService interface {
	TimeoutThreshold(ctx context.Context) time.Duration
	SetTimeoutThreshold(ctx context.Context, minutes int) error
}

func New(settingsService settingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}
