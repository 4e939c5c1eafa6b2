package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps a server-side record of issued session tokens so logout has
// something to invalidate. It is bookkeeping only: token verification never
// consults it, so deleting an entry does not revoke the token itself.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Redis{
		rdb: rdb,
		ttl: cfg.TTL,
	}
}

// Create records a session keyed by the user id. A later login overwrites
// the record; the entry expires together with the token.
func (r *Redis) Create(ctx context.Context, userID string) error {
	if err := r.rdb.Set(ctx, sessionKey(userID), time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("store session in redis: %w", err)
	}

	return nil
}

// Delete removes the session record. Deleting a session that is already gone
// is not an error.
func (r *Redis) Delete(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session from redis: %w", err)
	}

	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func sessionKey(userID string) string {
	return "session:" + userID
}
