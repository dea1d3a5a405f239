package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrVerificationRequired = errors.New("email verification required before placing an order")
	ErrEmptyCart            = errors.New("cart is empty, nothing to order")
)

// Repository is the order store of record. ErrOrderNotFound comes from the
// implementing package.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Verifier reports whether an email completed OTP verification.
// Satisfied by *otp.Service.
type Verifier interface {
	HasVerified(ctx context.Context, email string) (bool, error)
}

type CreateRequest struct {
	Contact             domain.CustomerContact
	Address             string
	SpecialInstructions string
	Items               []domain.CartItem
	Totals              domain.CartTotals
}

type Service struct {
	repo       Repository
	verifier   Verifier
	otpEnabled bool

	now func() time.Time
}

// NewService wires the order service. When otpEnabled is false (an
// administrative toggle), Create skips the verification gate entirely.
func NewService(repo Repository, verifier Verifier, otpEnabled bool) *Service {
	return &Service{
		repo:       repo,
		verifier:   verifier,
		otpEnabled: otpEnabled,
		now:        time.Now,
	}
}

// Create turns a verified cart into an order. Items and totals are frozen
// at creation time; catalog price changes never touch a placed order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if s.otpEnabled {
		verified, err := s.verifier.HasVerified(ctx, req.Contact.Email)
		if err != nil {
			return nil, fmt.Errorf("check verification: %w", err)
		}
		if !verified {
			return nil, ErrVerificationRequired
		}
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.OrderItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Category:  item.Category,
		}
	}

	now := s.now()
	order := &domain.Order{
		ID:                  uuid.New(),
		Customer:            req.Contact,
		Address:             req.Address,
		SpecialInstructions: req.SpecialInstructions,
		Items:               items,
		Subtotal:            req.Totals.Subtotal,
		TaxAmount:           req.Totals.TaxAmount,
		TotalAmount:         req.Totals.Total,
		TotalUnits:          req.Totals.TotalUnits,
		Status:              domain.OrderStatusReceived,
		PaymentStatus:       domain.PaymentStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// SetStatus applies a status transition. Writes outside the transition
// table fail with ErrInvalidTransition unless force is set; forced writes
// are for operator corrections and get their own log line. Setting the
// current status again is a no-op.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, force bool) error {
	if !status.Valid() {
		return ErrInvalidTransition
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if order.Status == status {
		return nil
	}

	if !domain.CanTransitionTo(order.Status, status) {
		if !force {
			return ErrInvalidTransition
		}
		log.Printf("forced status override on order %s: %s -> %s", order.ShortID(), order.Status, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// SetPaymentStatus is monotonic: pending -> received, never back.
func (s *Service) SetPaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	if !status.Valid() {
		return ErrInvalidTransition
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if order.PaymentStatus == status {
		return nil
	}
	if order.PaymentStatus == domain.PaymentStatusReceived {
		return ErrInvalidTransition
	}

	return s.repo.UpdatePaymentStatus(ctx, id, status)
}

// Delete hard-deletes the order. Irreversible.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List fetches all orders and applies the filter in memory. The console
// recomputes views from the full set on every poll; at this order volume a
// table scan is simpler than pushing predicates into SQL.
func (s *Service) List(ctx context.Context, f Filter) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	now := s.now()
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o, now) {
			out = append(out, o)
		}
	}
	return out, nil
}
