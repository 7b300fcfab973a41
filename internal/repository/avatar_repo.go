package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"readyset/internal/database"
)

// AvatarRepository caches avatar URLs keyed by external identity (provider:subject)
type AvatarRepository struct {
	db database.DBTX
}

func NewAvatarRepository(db database.DBTX) *AvatarRepository {
	return &AvatarRepository{db: db}
}

// Get returns the cached URL or an empty string when none is stored
func (r *AvatarRepository) Get(ctx context.Context, identity string) (string, error) {
	var url string
	err := r.db.QueryRowContext(ctx, `SELECT url FROM avatars WHERE identity = ?`, identity).Scan(&url)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get avatar: %w", err)
	}
	return url, nil
}

// Put stores or replaces the URL for identity
func (r *AvatarRepository) Put(ctx context.Context, identity, url string) error {
	query := r.db.GetDialect().Upsert("avatars", []string{"identity", "url", "updated_at"})
	if _, err := r.db.ExecContext(ctx, query, identity, url, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save avatar: %w", err)
	}
	return nil
}
