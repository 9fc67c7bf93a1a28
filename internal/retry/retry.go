// Package retry re-runs store transactions that lost a compare-and-swap race.
package retry

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

// OnConflict runs op up to constant.ConflictRetries times while it fails with
// constant.ConflictErr. Any other error is returned immediately.
func OnConflict[T any](ctx context.Context, op func() (T, error)) (T, error) {
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		if attempt > 0 {
			metrics.ConflictRetriesTotal.Inc()
		}
		attempt++

		v, err := op()
		if err != nil && !errors.Is(err, constant.ConflictErr) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(constant.ConflictRetryBackoff)),
		backoff.WithMaxTries(constant.ConflictRetries),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return res, err
}
