package session

import (
	"context"
	"errors"
	"time"

	"fridge-backend/database"
	"fridge-backend/models"
	"fridge-backend/repository"
)

// SQLStore keeps sessions in the sessions table so they survive restarts.
type SQLStore struct {
	repo *repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewSQLStore creates a store over db. A positive ttl stamps an expiry on
// every new session.
func NewSQLStore(db database.DBTX, ttl time.Duration) *SQLStore {
	return &SQLStore{
		repo: repository.NewSessionRepository(db),
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLStore) Get(ctx context.Context, token string) (int64, error) {
	sess, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if sess.ExpiresAt != nil && !s.now().Before(*sess.ExpiresAt) {
		_, _ = s.repo.Delete(ctx, token)
		return 0, ErrNotFound
	}
	return sess.UserID, nil
}

func (s *SQLStore) Put(ctx context.Context, token string, userID int64) error {
	sess := &models.Session{Token: token, UserID: userID, CreatedAt: s.now()}
	if s.ttl > 0 {
		exp := sess.CreatedAt.Add(s.ttl)
		sess.ExpiresAt = &exp
	}
	return s.repo.Create(ctx, sess)
}

func (s *SQLStore) Invalidate(ctx context.Context, token string) error {
	_, err := s.repo.Delete(ctx, token)
	return err
}

// Purge deletes expired rows and returns how many were removed.
func (s *SQLStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
