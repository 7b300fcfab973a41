package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"readyset/internal/models"
	"readyset/internal/security"
)

const redisKeyPrefix = "session:"

// redisValue is the JSON stored under session:<id>
type redisValue struct {
	Token    string `json:"token"`
	User     string `json:"user"`
	Identity string `json:"identity,omitempty"`
}

// RedisStore keeps sessions as single Redis keys whose TTL is the retention period
type RedisStore struct {
	client    *redis.Client
	sealer    *security.Sealer
	retention time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, sealer *security.Sealer, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, sealer: sealer, retention: retention}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var v redisValue
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("Warning: discarding malformed session value: %v", err)
		return models.Session{}, nil
	}
	return decode(s.sealer, v.Token, v.User, v.Identity), nil
}

// Save writes the session in one SET and refreshes its TTL
func (s *RedisStore) Save(ctx context.Context, id string, sess models.Session) error {
	if sess.IsEmpty() {
		return s.Clear(ctx, id)
	}
	token, userData, err := encode(s.sealer, sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	raw, err := json.Marshal(redisValue{Token: token, User: userData, Identity: sess.Identity})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, raw, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Prune is a no-op; Redis expires keys itself
func (s *RedisStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}
