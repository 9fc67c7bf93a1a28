package queue

import "github.com/elfabitto/sistema-de-atendimento/internal/domain"

// nextFree returns the non-busy attendant with the smallest position.
func nextFree(list []domain.Attendant) (domain.Attendant, bool) {
	var (
		best  domain.Attendant
		found bool
	)
	for _, a := range list {
		if !a.Available || a.Busy || a.QueuePosition == nil {
			continue
		}
		if !found || a.Position() < best.Position() {
			best = a
			found = true
		}
	}
	return best, found
}

// tailPosition is one past the highest position in list, 1 when empty.
func tailPosition(list []domain.Attendant) int {
	highest := 0
	for _, a := range list {
		if a.Position() > highest {
			highest = a.Position()
		}
	}
	return highest + 1
}
