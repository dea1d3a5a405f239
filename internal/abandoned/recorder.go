package abandoned

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// Repository stores snapshots for operator follow-up.
type Repository interface {
	Insert(ctx context.Context, snap *domain.AbandonedCartSnapshot) error
	ListRecent(ctx context.Context, limit int) ([]domain.AbandonedCartSnapshot, error)
}

// Publisher pushes snapshots to the remarketing pipeline.
type Publisher interface {
	Publish(ctx context.Context, snap *domain.AbandonedCartSnapshot) error
}

// Recorder persists a cart snapshot plus contact details before the OTP
// flow runs, and on the WhatsApp handoff path. Strictly best-effort: every
// failure is logged and swallowed so the checkout path can never stall on
// remarketing data.
type Recorder struct {
	repo    Repository
	pub     Publisher
	timeout time.Duration
}

func NewRecorder(repo Repository, pub Publisher) *Recorder {
	return &Recorder{
		repo:    repo,
		pub:     pub,
		timeout: 5 * time.Second,
	}
}

// Record fills in the snapshot id and timestamp, then writes and publishes.
// Returns nothing; callers must not be able to fail on this path.
func (r *Recorder) Record(ctx context.Context, snap domain.AbandonedCartSnapshot) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.Insert(ctx, &snap); err != nil {
		log.Printf("abandoned cart insert failed for %s: %v", snap.Email, err)
	}

	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(ctx, &snap); err != nil {
		log.Printf("abandoned cart publish failed for %s: %v", snap.Email, err)
	}
}

// ListRecent returns the newest snapshots for operator outreach.
func (r *Recorder) ListRecent(ctx context.Context, limit int) ([]domain.AbandonedCartSnapshot, error) {
	return r.repo.ListRecent(ctx, limit)
}
