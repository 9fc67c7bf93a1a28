package constant

import "github.com/pkg/errors"

const (
	NotFoundErrMsg      = "not found"
	AlreadyQueuedErrMsg = "attendant is already in the queue"
	NotQueuedErrMsg     = "attendant is not in the queue"
	InvalidStateErrMsg  = "entity is not in the required state"
	ConflictErrMsg      = "concurrent modification detected"
	NotDueErrMsg        = "session timeout is not due yet"
	InvalidInputErrMsg  = "invalid input"
)

var (
	NotFoundErr      = errors.New(NotFoundErrMsg)
	AlreadyQueuedErr = errors.New(AlreadyQueuedErrMsg)
	NotQueuedErr     = errors.New(NotQueuedErrMsg)
	InvalidStateErr  = errors.New(InvalidStateErrMsg)
	// ConflictErr is the only error callers are expected to retry.
	ConflictErr     = errors.New(ConflictErrMsg)
	NotDueErr       = errors.New(NotDueErrMsg)
	InvalidInputErr = errors.New(InvalidInputErrMsg)
)
