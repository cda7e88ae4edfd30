package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rossnomann/terminator/internal/modules/snapshot/domain"
	"github.com/samber/oops"
)

// RedisStorage implements snapshot.Repository on top of redis. Expiry is
// delegated to the server (SET with TTL) and consumption uses GETDEL, so
// TakeSnapshot is atomic across processes.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage creates a redis-backed snapshot repository.
func NewRedisStorage(addr, password string, db int) *RedisStorage {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStorage{client: client}
}

func (s *RedisStorage) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot, ttl time.Duration) error {
	snapshot.ExpiresAt = time.Now().Add(ttl)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return oops.With("chat_id", snapshot.ChatID, "user_id", snapshot.UserID, "context", "failed to marshal snapshot").Wrap(err)
	}

	key := redisKey(snapshot.ChatID, snapshot.UserID)
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return oops.With("key", key, "context", "failed to store snapshot").Wrap(err)
	}

	return nil
}

func (s *RedisStorage) TakeSnapshot(ctx context.Context, chatID, userID int64) (*domain.Snapshot, error) {
	key := redisKey(chatID, userID)
	data, err := s.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, oops.With("key", key, "context", "failed to take snapshot").Wrap(err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, oops.With("key", key, "context", "failed to unmarshal snapshot").Wrap(err)
	}

	return &snapshot, nil
}

// SweepExpired is a no-op for redis: the server evicts keys by TTL.
func (s *RedisStorage) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Close releases the underlying redis connection.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func redisKey(chatID, userID int64) string {
	return fmt.Sprintf("terminator:snapshot:%d:%d", chatID, userID)
}
