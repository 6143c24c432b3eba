package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the hash holding the active login session of a user.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

// RedisSessions keeps one active session per user as a Redis hash.
type RedisSessions struct {
	rdb *redis.Client
	TTL time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, TTL: ttl}
}

// Save records sid as the current session, replacing any previous one.
func (s *RedisSessions) Save(ctx context.Context, userID, sid string, fields map[string]any) error {
	key := SessionKey(userID)
	values := map[string]any{
		"user_id":    userID,
		"sid":        sid,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		values[k] = v
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, s.TTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Current returns the active session id, or "" when there is none.
func (s *RedisSessions) Current(ctx context.Context, userID string) (string, error) {
	sid, err := s.rdb.HGet(ctx, SessionKey(userID), "sid").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return sid, err
}

func (s *RedisSessions) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, SessionKey(userID)).Err()
}
