package queue

import (
	"context"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/pkg/errors"
)

// The *Tx functions run inside a caller's transaction. The caller must hold
// the queue lock.

func JoinTx(ctx context.Context, tx domain.Store, attendantID int64) (domain.Attendant, error) {
	a, err := tx.GetAttendant(ctx, attendantID)
	if err != nil {
		return domain.Attendant{}, err
	}
	if a.Available {
		return a, errors.Wrapf(constant.AlreadyQueuedErr, "attendant %d", attendantID)
	}

	list, err := tx.ListAvailableAttendants(ctx)
	if err != nil {
		return domain.Attendant{}, err
	}

	pos := tailPosition(list)
	a.Available = true
	a.Busy = false
	a.QueuePosition = &pos
	if err := tx.UpdateAttendant(ctx, &a); err != nil {
		return domain.Attendant{}, err
	}
	return a, nil
}

func LeaveTx(ctx context.Context, tx domain.Store, attendantID int64) (domain.Attendant, error) {
	a, err := tx.GetAttendant(ctx, attendantID)
	if err != nil {
		return domain.Attendant{}, err
	}
	if !a.Available {
		return a, errors.Wrapf(constant.NotQueuedErr, "attendant %d", attendantID)
	}

	removed := a.Position()
	a.Available = false
	a.Busy = false
	a.QueuePosition = nil
	if err := tx.UpdateAttendant(ctx, &a); err != nil {
		return domain.Attendant{}, err
	}

	if _, err := compactAbove(ctx, tx, attendantID, removed); err != nil {
		return domain.Attendant{}, err
	}
	return a, nil
}

// RequeueToTailTx clears busy and moves the attendant behind everyone else.
// An attendant that already left the rotation only gets busy cleared.
func RequeueToTailTx(ctx context.Context, tx domain.Store, attendantID int64) (domain.Attendant, error) {
	a, err := tx.GetAttendant(ctx, attendantID)
	if err != nil {
		return domain.Attendant{}, err
	}

	if !a.Available {
		if !a.Busy {
			return a, nil
		}
		a.Busy = false
		if err := tx.UpdateAttendant(ctx, &a); err != nil {
			return domain.Attendant{}, err
		}
		return a, nil
	}

	others, err := compactAbove(ctx, tx, attendantID, a.Position())
	if err != nil {
		return domain.Attendant{}, err
	}

	pos := tailPosition(others)
	a.Busy = false
	a.QueuePosition = &pos
	if err := tx.UpdateAttendant(ctx, &a); err != nil {
		return domain.Attendant{}, err
	}
	return a, nil
}

func NextAvailableTx(ctx context.Context, tx domain.Store) (domain.Attendant, bool, error) {
	list, err := tx.ListAvailableAttendants(ctx)
	if err != nil {
		return domain.Attendant{}, false, err
	}
	a, ok := nextFree(list)
	return a, ok, nil
}

// compactAbove shifts every available attendant other than skipID with a
// position above removed down by one. It returns those attendants in their
// updated state.
func compactAbove(ctx context.Context, tx domain.Store, skipID int64, removed int) ([]domain.Attendant, error) {
	list, err := tx.ListAvailableAttendants(ctx)
	if err != nil {
		return nil, err
	}

	others := make([]domain.Attendant, 0, len(list))
	for _, a := range list {
		if a.ID == skipID {
			continue
		}
		if removed > 0 && a.Position() > removed {
			pos := a.Position() - 1
			a.QueuePosition = &pos
			if err := tx.UpdateAttendant(ctx, &a); err != nil {
				return nil, err
			}
		}
		others = append(others, a)
	}
	return others, nil
}
