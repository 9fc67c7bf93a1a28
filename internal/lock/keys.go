// Package lock provides the mutual exclusion used around state transitions.
//
// Two scopes exist: one key per request, held for a whole transition including
// any chained re-distribution, and a single queue-wide key held while queue
// positions or busy flags change. Callers always take the request key before
// the queue key.
package lock

import (
	"strconv"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
)

func RequestKey(requestID int64) string {
	return constant.RequestLockKeyPrefix + strconv.FormatInt(requestID, 10)
}

func QueueKey() string {
	return constant.QueueLockKey
}
