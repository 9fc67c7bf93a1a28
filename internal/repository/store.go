package repository

import (
	"context"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"
	"github.com/elfabitto/sistema-de-atendimento/internal/domain"
	"github.com/elfabitto/sistema-de-atendimento/internal/repository/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// Store is the postgres-backed domain.Store. Inside WithTx, single-row reads
// take a row lock (SELECT ... FOR UPDATE) so instances without a shared
// locker still serialise on the same rows.
type Store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	if s.inTx {
		return s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return s.conn(ctx)
}

func translate(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(constant.NotFoundErr, format, args...)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return errors.Wrapf(constant.ConflictErr, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func (s *Store) CreateAttendant(ctx context.Context, a *domain.Attendant) error {
	row := entity.AttendantFromDomain(*a)
	row.Version = 1
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return translate(err, "failed to create attendant %s", a.Email)
	}
	*a = row.ToDomain()
	return nil
}

func (s *Store) GetAttendant(ctx context.Context, id int64) (domain.Attendant, error) {
	var row entity.Attendant
	if err := s.forUpdate(ctx).First(&row, "id = ?", id).Error; err != nil {
		return domain.Attendant{}, translate(err, "attendant %d", id)
	}
	return row.ToDomain(), nil
}

func (s *Store) ListAttendants(ctx context.Context) ([]domain.Attendant, error) {
	var rows []entity.Attendant
	if err := s.conn(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list attendants")
	}
	return attendantsToDomain(rows), nil
}

func (s *Store) ListAvailableAttendants(ctx context.Context) ([]domain.Attendant, error) {
	var rows []entity.Attendant
	err := s.conn(ctx).
		Where("available = ?", true).
		Order("queue_position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available attendants")
	}
	return attendantsToDomain(rows), nil
}

func (s *Store) UpdateAttendant(ctx context.Context, a *domain.Attendant) error {
	now := time.Now().UTC()
	res := s.conn(ctx).
		Model(&entity.Attendant{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(map[string]interface{}{
			"available":      a.Available,
			"busy":           a.Busy,
			"queue_position": a.QueuePosition,
			"version":        a.Version + 1,
			"updated_at":     now,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update attendant %d", a.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(constant.ConflictErr, "attendant %d version %d", a.ID, a.Version)
	}

	a.Version++
	a.UpdatedAt = now
	return nil
}

func (s *Store) CreateRequest(ctx context.Context, r *domain.Request) error {
	row := entity.RequestFromDomain(*r)
	row.Version = 1
	if row.Status == "" {
		row.Status = string(domain.RequestPending)
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return translate(err, "failed to create request")
	}
	*r = row.ToDomain()
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (domain.Request, error) {
	var row entity.Request
	if err := s.forUpdate(ctx).First(&row, "id = ?", id).Error; err != nil {
		return domain.Request{}, translate(err, "request %d", id)
	}
	return row.ToDomain(), nil
}

func (s *Store) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.Request, int64, error) {
	q := s.conn(ctx).Model(&entity.Request{})
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count requests")
	}

	q = q.Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []entity.Request
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list requests")
	}
	return requestsToDomain(rows), total, nil
}

func (s *Store) ListPendingRequests(ctx context.Context, limit int) ([]domain.Request, error) {
	q := s.conn(ctx).
		Where("status = ?", string(domain.RequestPending)).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []entity.Request
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list pending requests")
	}
	return requestsToDomain(rows), nil
}

func (s *Store) CountRequests(ctx context.Context, status domain.RequestStatus) (int64, error) {
	q := s.conn(ctx).Model(&entity.Request{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count requests")
	}
	return n, nil
}

func (s *Store) UpdateRequest(ctx context.Context, r *domain.Request) error {
	now := time.Now().UTC()
	res := s.conn(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND version = ?", r.ID, r.Version).
		Updates(map[string]interface{}{
			"status":     string(r.Status),
			"version":    r.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update request %d", r.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(constant.ConflictErr, "request %d version %d", r.ID, r.Version)
	}

	r.Version++
	r.UpdatedAt = now
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.ServiceSession) error {
	row := entity.SessionFromDomain(*sess)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Version = 1
	// partial unique indexes reject a second in-service session per request
	// or attendant; translate maps that to ConflictErr
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return translate(err, "failed to create session for request %d", sess.RequestID)
	}
	*sess = row.ToDomain()
	return nil
}

func (s *Store) FindActiveSession(ctx context.Context, attendantID, requestID int64) (domain.ServiceSession, error) {
	var row entity.ServiceSession
	err := s.forUpdate(ctx).
		Where("attendant_id = ? AND request_id = ? AND status = ?", attendantID, requestID, string(domain.SessionInService)).
		First(&row).Error
	if err != nil {
		return domain.ServiceSession{}, translate(err, "active session for attendant %d and request %d", attendantID, requestID)
	}
	return row.ToDomain(), nil
}

func (s *Store) FindActiveSessionByAttendant(ctx context.Context, attendantID int64) (domain.ServiceSession, error) {
	var row entity.ServiceSession
	err := s.forUpdate(ctx).
		Where("attendant_id = ? AND status = ?", attendantID, string(domain.SessionInService)).
		First(&row).Error
	if err != nil {
		return domain.ServiceSession{}, translate(err, "active session for attendant %d", attendantID)
	}
	return row.ToDomain(), nil
}

func (s *Store) ListActiveSessionsStartedBefore(ctx context.Context, cutoff time.Time) ([]domain.ServiceSession, error) {
	var rows []entity.ServiceSession
	err := s.conn(ctx).
		Where("status = ? AND started_at <= ?", string(domain.SessionInService), cutoff).
		Order("started_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list expired sessions")
	}
	return sessionsToDomain(rows), nil
}

func (s *Store) ListSessionsByRequest(ctx context.Context, requestID int64) ([]domain.ServiceSession, error) {
	var rows []entity.ServiceSession
	err := s.conn(ctx).
		Where("request_id = ?", requestID).
		Order("started_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list sessions of request %d", requestID)
	}
	return sessionsToDomain(rows), nil
}

func (s *Store) ListSessionsByAttendant(ctx context.Context, attendantID int64) ([]domain.ServiceSession, error) {
	var rows []entity.ServiceSession
	err := s.conn(ctx).
		Where("attendant_id = ?", attendantID).
		Order("started_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list sessions of attendant %d", attendantID)
	}
	return sessionsToDomain(rows), nil
}

func (s *Store) CountSessions(ctx context.Context, status domain.SessionStatus) (int64, error) {
	q := s.conn(ctx).Model(&entity.ServiceSession{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count sessions")
	}
	return n, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess *domain.ServiceSession) error {
	res := s.conn(ctx).
		Model(&entity.ServiceSession{}).
		Where("id = ? AND version = ?", sess.ID, sess.Version).
		Updates(map[string]interface{}{
			"status":      string(sess.Status),
			"accepted_at": sess.AcceptedAt,
			"ended_at":    sess.EndedAt,
			"note":        sess.Note,
			"version":     sess.Version + 1,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update session %s", sess.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(constant.ConflictErr, "session %s version %d", sess.ID, sess.Version)
	}

	sess.Version++
	return nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var row entity.Setting
	if err := s.conn(ctx).First(&row, "key = ?", key).Error; err != nil {
		return "", translate(err, "setting %s", key)
	}
	return row.Value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	err := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entity.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}).Error
	if err != nil {
		return errors.Wrapf(err, "failed to set setting %s", key)
	}
	return nil
}

func attendantsToDomain(rows []entity.Attendant) []domain.Attendant {
	list := make([]domain.Attendant, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.ToDomain())
	}
	return list
}

func requestsToDomain(rows []entity.Request) []domain.Request {
	list := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.ToDomain())
	}
	return list
}

func sessionsToDomain(rows []entity.ServiceSession) []domain.ServiceSession {
	list := make([]domain.ServiceSession, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.ToDomain())
	}
	return list
}
