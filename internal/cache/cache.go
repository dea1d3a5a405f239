package cache

import (
	"context"
	"errors"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// CartStore keeps session carts between requests. The engine itself is
// in-memory; this store is what survives a page reload.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCartNotFound = errors.New("cart not found")
