package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCartStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCartStore(client), mr
}

func testCart(sessionID string) *domain.Cart {
	return &domain.Cart{
		SessionID: sessionID,
		Items: []domain.CartItem{
			{ID: "laddu", Name: "Motichoor Laddu", UnitPrice: 150, Quantity: 2, Unit: "kg", Category: domain.CategorySweet},
			{ID: "mixture", Name: "Madras Mixture", UnitPrice: 200, Quantity: 1, Unit: "kg", Category: domain.CategorySavoury},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := testCart("sess-1")
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cartKey("sess-1"), string(cartJSON))

	result, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", result.SessionID)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "laddu", result.Items[0].ID)
	assert.Equal(t, 2, result.Items[0].Quantity)
}

func TestGet_NotFound(t *testing.T) {
	store, _ := setupTestRedis(t)

	result, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	store, mr := setupTestRedis(t)

	cartJSON, err := json.Marshal(testCart("sess-2"))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cartKey("sess-2"), string(cartJSON[:10])))

	_, getErr := store.Get(context.Background(), "sess-2")
	require.ErrorContains(t, getErr, "unmarshal cart failed")
}

func TestSet_Success(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	err := store.Set(ctx, "sess-3", testCart("sess-3"))
	require.NoError(t, err)

	stored, e2 := mr.Get(cartKey("sess-3"))
	require.NoError(t, e2)
	require.NotEmpty(t, stored)

	var storedCart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Equal(t, "sess-3", storedCart.SessionID)
	assert.Len(t, storedCart.Items, 2)
}

func TestSet_WithTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	err := store.Set(context.Background(), "sess-4", testCart("sess-4"))
	require.NoError(t, err)

	ttl := mr.TTL(cartKey("sess-4"))
	assert.True(t, ttl >= 24*time.Hour, "TTL should be at least base TTL")
	assert.True(t, ttl < 24*time.Hour+30*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	cartJSON, _ := json.Marshal(testCart("sess-5"))
	mr.Set(cartKey("sess-5"), string(cartJSON))
	require.True(t, mr.Exists(cartKey("sess-5")))

	require.NoError(t, store.Delete(ctx, "sess-5"))
	assert.False(t, mr.Exists(cartKey("sess-5")))
}

func TestDelete_NonExistentKey(t *testing.T) {
	store, _ := setupTestRedis(t)

	assert.NoError(t, store.Delete(context.Background(), "nonexistent"))
}

func TestCartKey_Format(t *testing.T) {
	assert.Equal(t, "cart:sess-9", cartKey("sess-9"))
}
