// Package admin is the back-office side of the order pipeline: the polling
// loop behind the live dashboard, bulk status changes, reminder dispatch,
// CSV export and aggregate statistics.
package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/messaging"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/order"
)

// OrderService is what the console needs from the order layer.
type OrderService interface {
	List(ctx context.Context, f order.Filter) ([]*domain.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, force bool) error
}

type Console struct {
	orders OrderService
	sfg    singleflight.Group // collapses concurrent stats recomputation
}

func NewConsole(orders OrderService) *Console {
	return &Console{orders: orders}
}

// Orders returns the filtered order list for console views and the CSV
// export.
func (c *Console) Orders(ctx context.Context, f order.Filter) ([]*domain.Order, error) {
	return c.orders.List(ctx, f)
}

type BulkFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type BulkResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkSetStatus applies the target status to each selected order
// independently. Valid ids are updated even when others fail; the result
// reports both sides instead of aborting the batch.
func (c *Console) BulkSetStatus(ctx context.Context, ids []string, target domain.OrderStatus, force bool) BulkResult {
	var result BulkResult
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: raw, Reason: "invalid order id"})
			continue
		}
		if err := c.orders.SetStatus(ctx, id, target, force); err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: raw, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	return result
}

type Reminder struct {
	OrderID  string `json:"order_id"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	DeepLink string `json:"deep_link"`
}

// Reminders builds one templated WhatsApp deep link per selected order:
// the status template, or the generic payment reminder when payment is set.
// Each order is an independent side effect; a missing order is skipped and
// reported alongside the built reminders.
func (c *Console) Reminders(ctx context.Context, ids []string, payment bool) ([]Reminder, []BulkFailure) {
	var reminders []Reminder
	var failed []BulkFailure

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			failed = append(failed, BulkFailure{OrderID: raw, Reason: "invalid order id"})
			continue
		}
		o, err := c.orders.Get(ctx, id)
		if err != nil {
			failed = append(failed, BulkFailure{OrderID: raw, Reason: err.Error()})
			continue
		}

		msg := messaging.StatusMessage(o)
		if payment {
			msg = messaging.PaymentReminderMessage(o)
		}
		reminders = append(reminders, Reminder{
			OrderID:  o.ID.String(),
			Phone:    o.Customer.Phone,
			Message:  msg,
			DeepLink: messaging.DeepLink(o.Customer.Phone, msg),
		})
	}
	return reminders, failed
}

func statsKey(f order.Filter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d", f.Query, f.Status, f.PaymentStatus, f.Window, f.From.Unix(), f.To.Unix())
}
