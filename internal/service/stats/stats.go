package stats

import (
	"context"
	"math"
	"sort"

	"github.com/elfabitto/sistema-de-atendimento/internal/domain"

	"github.com/pkg/errors"
)

func (s *statsService) Global(ctx context.Context) (GlobalStats, error) {
	var out GlobalStats

	attendants, err := s.store.ListAttendants(ctx)
	if err != nil {
		return out, errors.Wrap(err, "failed to list attendants")
	}
	out.Attendants.Total = int64(len(attendants))
	for _, a := range attendants {
		if a.Available {
			out.Attendants.Available++
		}
		if a.Busy {
			out.Attendants.Busy++
		}
	}

	requestCounts := []struct {
		status domain.RequestStatus
		dst    *int64
	}{
		{"", &out.Requests.Total},
		{domain.RequestPending, &out.Requests.Pending},
		{domain.RequestInService, &out.Requests.InService},
		{domain.RequestConcluded, &out.Requests.Concluded},
	}
	for _, c := range requestCounts {
		if *c.dst, err = s.store.CountRequests(ctx, c.status); err != nil {
			return out, errors.Wrap(err, "failed to count requests")
		}
	}

	sessionCounts := []struct {
		status domain.SessionStatus
		dst    *int64
	}{
		{"", &out.Sessions.Total},
		{domain.SessionConcluded, &out.Sessions.Concluded},
		{domain.SessionSkipped, &out.Sessions.Skipped},
		{domain.SessionTimedOut, &out.Sessions.TimedOut},
	}
	for _, c := range sessionCounts {
		if *c.dst, err = s.store.CountSessions(ctx, c.status); err != nil {
			return out, errors.Wrap(err, "failed to count sessions")
		}
	}

	return out, nil
}

func (s *statsService) ForAttendant(ctx context.Context, attendantID int64) (AttendantStats, error) {
	a, err := s.store.GetAttendant(ctx, attendantID)
	if err != nil {
		return AttendantStats{}, err
	}
	return s.attendantStats(ctx, a)
}

// Ranking orders attendants by concluded sessions, most first.
func (s *statsService) Ranking(ctx context.Context) ([]AttendantStats, error) {
	attendants, err := s.store.ListAttendants(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list attendants")
	}

	ranking := make([]AttendantStats, 0, len(attendants))
	for _, a := range attendants {
		st, err := s.attendantStats(ctx, a)
		if err != nil {
			return nil, err
		}
		ranking = append(ranking, st)
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Concluded > ranking[j].Concluded
	})
	return ranking, nil
}

func (s *statsService) attendantStats(ctx context.Context, a domain.Attendant) (AttendantStats, error) {
	sessions, err := s.store.ListSessionsByAttendant(ctx, a.ID)
	if err != nil {
		return AttendantStats{}, errors.Wrapf(err, "failed to list sessions of attendant %d", a.ID)
	}

	st := AttendantStats{AttendantID: a.ID, Name: a.Name}
	var total float64
	for _, sess := range sessions {
		switch sess.Status {
		case domain.SessionConcluded:
			st.Concluded++
			total += sess.Duration().Minutes()
		case domain.SessionSkipped:
			st.Skipped++
		case domain.SessionTimedOut:
			st.TimedOut++
		}
	}
	if st.Concluded > 0 {
		st.MeanMinutes = math.Round(total/float64(st.Concluded)*100) / 100
	}
	return st, nil
}
