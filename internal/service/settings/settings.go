package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/pkg/errors"
)

// TimeoutThreshold reads the stored threshold on every call so changes apply
// to the next check. A missing or unreadable value falls back to the
// configured default.
func (s *settingsService) TimeoutThreshold(ctx context.Context) time.Duration {
	raw, err := s.store.GetSetting(ctx, constant.SettingTimeoutMinutes)
	if errors.Is(err, constant.NotFoundErr) {
		return s.fallback
	}
	if err != nil {
		s.logger.WithError(err).Warn("failed to read timeout setting, using default")
		return s.fallback
	}

	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 1 {
		s.logger.WithField("value", raw).Warn("invalid timeout setting, using default")
		return s.fallback
	}
	return time.Duration(minutes) * time.Minute
}

func (s *settingsService) SetTimeoutThreshold(ctx context.Context, minutes int) error {
	if minutes < 1 {
		return errors.Wrapf(constant.InvalidInputErr, "timeout must be at least one minute, got %d", minutes)
	}

	if err := s.store.SetSetting(ctx, constant.SettingTimeoutMinutes, strconv.Itoa(minutes)); err != nil {
		return err
	}

	s.logger.WithField("minutes", minutes).Info("timeout threshold updated")
	return nil
}
