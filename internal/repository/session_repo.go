package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"readyset/internal/database"
)

// SessionRecord is one persisted row of the sessions table
type SessionRecord struct {
	ID        string
	Token     string // sealed
	UserData  string // JSON
	Identity  string
	UpdatedAt time.Time
}

// SessionRepository handles database operations for browser sessions
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves a session row by id. Returns nil when absent.
func (r *SessionRepository) Get(ctx context.Context, id string) (*SessionRecord, error) {
	query := `SELECT id, token, user_data, identity, updated_at FROM sessions WHERE id = ?`

	var rec SessionRecord
	var updated int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Token, &rec.UserData, &rec.Identity, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return &rec, nil
}

// Save writes token, user and identity in a single upsert
func (r *SessionRepository) Save(ctx context.Context, rec SessionRecord) error {
	query := r.db.GetDialect().Upsert("sessions", []string{"id", "token", "user_data", "identity", "updated_at"})
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.Token, rec.UserData, rec.Identity, updated.Unix()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session row. Deleting a missing row is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteOlderThan removes sessions not written since cutoff and returns how many were removed
func (r *SessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
