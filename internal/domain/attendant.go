package domain

import "time"

// Attendant is a person eligible to take requests. Available attendants hold
// a queue position; positions of all available attendants form 1..N.
type Attendant struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Available     bool      `json:"available"`
	Busy          bool      `json:"busy"`
	QueuePosition *int      `json:"queue_position"`
	Version       int64     `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a Attendant) Position() int {
	if a.QueuePosition == nil {
		return 0
	}
	return *a.QueuePosition
}

// Clone returns a copy that does not share the position pointer.
func (a Attendant) Clone() Attendant {
	if a.QueuePosition != nil {
		pos := *a.QueuePosition
		a.QueuePosition = &pos
	}
	return a
}

type QueueEntry struct {
	AttendantID int64  `json:"attendant_id"`
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Busy        bool   `json:"busy"`
}

func NewQueueEntries(attendants []Attendant) []QueueEntry {
	entries := make([]QueueEntry, 0, len(attendants))
	for _, a := range attendants {
		entries = append(entries, QueueEntry{
			AttendantID: a.ID,
			Name:        a.Name,
			Position:    a.Position(),
			Busy:        a.Busy,
		})
	}
	return entries
}
