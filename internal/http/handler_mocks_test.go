package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cache"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/repository"
)

type memCartStore struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	getErr  error
	setErr  error
	delErr  error
	deleted []string
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*domain.Cart)}
}

func (s *memCartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.carts[sessionID]
	if !ok {
		return nil, cache.ErrCartNotFound
	}
	return c, nil
}

func (s *memCartStore) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.carts[sessionID] = cart
	return nil
}

func (s *memCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.carts, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*domain.Order
	createErr error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *memOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *memOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

type stubVerifier struct {
	verified bool
}

func (v stubVerifier) HasVerified(context.Context, string) (bool, error) {
	return v.verified, nil
}

type memOTPRepo struct {
	mu     sync.Mutex
	nextID int64
	recs   []*domain.OTPRecord
}

func (r *memOTPRepo) Insert(_ context.Context, rec *domain.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	clone := *rec
	r.recs = append(r.recs, &clone)
	return nil
}

func (r *memOTPRepo) CountIssuedSince(_ context.Context, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.recs {
		if rec.Email == email && !rec.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memOTPRepo) RecentUnverified(_ context.Context, email string, now time.Time, limit int) ([]*domain.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OTPRecord
	for i := len(r.recs) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.recs[i]
		if rec.Email == email && !rec.Verified && rec.ExpiresAt.After(now) {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memOTPRepo) MarkVerified(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.ID == id {
			rec.Verified = true
		}
	}
	return nil
}

func (r *memOTPRepo) HasVerified(_ context.Context, email string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.Email == email && rec.Verified && rec.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

type captureSender struct {
	mu    sync.Mutex
	codes []string
}

func (s *captureSender) Send(_ context.Context, _, _, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

type memSnapshotRepo struct {
	mu    sync.Mutex
	snaps []domain.AbandonedCartSnapshot
}

func (r *memSnapshotRepo) Insert(_ context.Context, snap *domain.AbandonedCartSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, *snap)
	return nil
}

func (r *memSnapshotRepo) ListRecent(_ context.Context, limit int) ([]domain.AbandonedCartSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AbandonedCartSnapshot, 0, limit)
	for i := len(r.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.snaps[i])
	}
	return out, nil
}

func (r *memSnapshotRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *memSnapshotRepo) lastSnap() domain.AbandonedCartSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}
