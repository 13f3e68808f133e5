package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashflow/internal/cache"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers logged-out token ids until the tokens would have
// expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedPrefix = "revoked:"

// RedisRevoker keeps revoked ids in Redis with a TTL.
type RedisRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevoker connects to redisURL and checks the connection.
func NewRedisRevoker(ctx context.Context, redisURL string) (*RedisRevoker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRevoker{client: client, now: time.Now}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, revokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return true, nil
}

func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

// MemoryRevoker keeps revoked ids in a bounded in-process cache. Ids are
// lost on restart.
type MemoryRevoker struct {
	entries *cache.LRUCache[struct{}]
	now     func() time.Time
}

func NewMemoryRevoker(maxEntries int) *MemoryRevoker {
	return &MemoryRevoker{
		entries: cache.NewLRUCache[struct{}](maxEntries, time.Hour),
		now:     time.Now,
	}
}

// Cache exposes the backing cache so it can be swept by a cache.Manager.
func (m *MemoryRevoker) Cache() cache.Cleaner { return m.entries }

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	ttl := until.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	m.entries.SetWithTTL(jti, struct{}{}, ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.entries.Get(jti)
	return ok, nil
}
