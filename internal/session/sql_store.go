package session

import (
	"context"
	"fmt"
	"time"

	"readyset/internal/models"
	"readyset/internal/repository"
	"readyset/internal/security"
)

// SQLStore keeps sessions in the sessions table
type SQLStore struct {
	repo   *repository.SessionRepository
	sealer *security.Sealer
}

// NewSQLStore creates a store over the session repository
func NewSQLStore(repo *repository.SessionRepository, sealer *security.Sealer) *SQLStore {
	return &SQLStore{repo: repo, sealer: sealer}
}

// Load returns the stored session or the empty session when absent or unusable
func (s *SQLStore) Load(ctx context.Context, id string) (models.Session, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Session{}, err
	}
	if rec == nil {
		return models.Session{}, nil
	}
	return decode(s.sealer, rec.Token, rec.UserData, rec.Identity), nil
}

// Save writes token, user and identity together. An empty session is a Clear.
func (s *SQLStore) Save(ctx context.Context, id string, sess models.Session) error {
	if sess.IsEmpty() {
		return s.Clear(ctx, id)
	}
	token, userData, err := encode(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.repo.Save(ctx, repository.SessionRecord{
		ID:       id,
		Token:    token,
		UserData: userData,
		Identity: sess.Identity,
	})
}

// Clear removes token and user together
func (s *SQLStore) Clear(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Prune deletes sessions untouched for longer than retention
func (s *SQLStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
}
