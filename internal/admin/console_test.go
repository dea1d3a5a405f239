package admin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/order"
)

var errMissingOrder = errors.New("order not found")

type mockOrderService struct {
	m       sync.Mutex
	orders  map[uuid.UUID]*domain.Order
	listErr error
	setErr  map[uuid.UUID]error
	lists   int
}

func newMockOrderService() *mockOrderService {
	return &mockOrderService{
		orders: make(map[uuid.UUID]*domain.Order),
		setErr: make(map[uuid.UUID]error),
	}
}

func (m *mockOrderService) add(o *domain.Order) {
	m.m.Lock()
	defer m.m.Unlock()
	m.orders[o.ID] = o
}

func (m *mockOrderService) List(_ context.Context, f order.Filter) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	now := time.Now()
	var out []*domain.Order
	for _, o := range m.orders {
		if f.Matches(o, now) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderService) Get(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errMissingOrder
	}
	return o, nil
}

func (m *mockOrderService) SetStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus, _ bool) error {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.setErr[id]; err != nil {
		return err
	}
	o, ok := m.orders[id]
	if !ok {
		return order.ErrInvalidTransition
	}
	o.Status = status
	return nil
}

func sampleOrder(status domain.OrderStatus, payment domain.PaymentStatus, total float64, age time.Duration) *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		Customer:      domain.CustomerContact{Name: "Asha", Phone: "+919876543210"},
		Status:        status,
		PaymentStatus: payment,
		TotalAmount:   total,
		CreatedAt:     time.Now().Add(-age),
	}
}

func TestBulkSetStatus_MixedValidity(t *testing.T) {
	svc := newMockOrderService()
	good1 := sampleOrder(domain.OrderStatusReceived, domain.PaymentStatusPending, 500, 0)
	good2 := sampleOrder(domain.OrderStatusReceived, domain.PaymentStatusPending, 700, 0)
	bad := sampleOrder(domain.OrderStatusReceived, domain.PaymentStatusPending, 900, 0)
	svc.add(good1)
	svc.add(good2)
	svc.add(bad)
	svc.setErr[bad.ID] = order.ErrInvalidTransition

	sut := NewConsole(svc)
	result := sut.BulkSetStatus(context.Background(),
		[]string{good1.ID.String(), "not-a-uuid", bad.ID.String(), good2.ID.String()},
		domain.OrderStatusProcessing, false)

	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "not-a-uuid", result.Failed[0].OrderID)

	// Valid updates were not rolled back.
	assert.Equal(t, domain.OrderStatusProcessing, good1.Status)
	assert.Equal(t, domain.OrderStatusProcessing, good2.Status)
}

func TestReminders_StatusAndPaymentTemplates(t *testing.T) {
	svc := newMockOrderService()
	o := sampleOrder(domain.OrderStatusProcessing, domain.PaymentStatusPending, 945, 0)
	svc.add(o)
	sut := NewConsole(svc)
	ctx := context.Background()

	reminders, failed := sut.Reminders(ctx, []string{o.ID.String()}, false)
	require.Empty(t, failed)
	require.Len(t, reminders, 1)
	assert.Contains(t, reminders[0].Message, "being prepared")
	assert.Contains(t, reminders[0].DeepLink, "https://wa.me/919876543210?text=")

	payment, failed := sut.Reminders(ctx, []string{o.ID.String()}, true)
	require.Empty(t, failed)
	assert.Contains(t, payment[0].Message, "payment of ₹945.00")
}

func TestReminders_ReportsMissingOrders(t *testing.T) {
	svc := newMockOrderService()
	o := sampleOrder(domain.OrderStatusReceived, domain.PaymentStatusPending, 500, 0)
	svc.add(o)
	sut := NewConsole(svc)

	reminders, failed := sut.Reminders(context.Background(),
		[]string{o.ID.String(), uuid.NewString(), "garbage"}, false)

	assert.Len(t, reminders, 1)
	assert.Len(t, failed, 2)
}

func TestStats_Aggregates(t *testing.T) {
	svc := newMockOrderService()
	svc.add(sampleOrder(domain.OrderStatusCompleted, domain.PaymentStatusReceived, 1000, time.Hour))
	svc.add(sampleOrder(domain.OrderStatusCompleted, domain.PaymentStatusPending, 500, time.Hour))
	svc.add(sampleOrder(domain.OrderStatusReceived, domain.PaymentStatusPending, 250, 30*time.Hour)) // overdue
	svc.add(sampleOrder(domain.OrderStatusCancelled, domain.PaymentStatusPending, 100, 48*time.Hour))

	sut := NewConsole(svc)
	stats, err := sut.Stats(context.Background(), order.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[domain.OrderStatusCompleted])
	assert.Equal(t, 1850.0, stats.Revenue)
	assert.Equal(t, 1000.0, stats.PaidRevenue)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 0.5, stats.CompletionRate)
	assert.Equal(t, 0.25, stats.CollectionRate)
}

func TestStats_EmptySet(t *testing.T) {
	sut := NewConsole(newMockOrderService())

	stats, err := sut.Stats(context.Background(), order.Filter{})
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.CollectionRate)
}
