package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{
		client:  client,
		baseTTL: 24 * time.Hour,
	}
}

// RedisCartStore persists session carts with a TTL so abandoned sessions
// age out on their own. TTL jitter spreads expiry of carts created in the
// same burst.
type RedisCartStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCartStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cartKey(sessionID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &cart, nil
}

func (r RedisCartStore) Set(ctx context.Context, sessionID string, cart *domain.Cart) error {
	key := cartKey(sessionID)
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, string(jsonCart), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	key := cartKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
