package order

import (
	"strings"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// Window is a trailing time-window predicate on order age.
type Window string

const (
	WindowAll    Window = "all"
	Window5Min   Window = "5m"
	Window30Min  Window = "30m"
	WindowHour   Window = "1h"
	WindowDay    Window = "1d"
	WindowWeek   Window = "1w"
	WindowCustom Window = "custom"
)

func (w Window) duration() (time.Duration, bool) {
	switch w {
	case Window5Min:
		return 5 * time.Minute, true
	case Window30Min:
		return 30 * time.Minute, true
	case WindowHour:
		return time.Hour, true
	case WindowDay:
		return 24 * time.Hour, true
	case WindowWeek:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

// Filter narrows the order list. Zero value matches everything.
type Filter struct {
	// Query matches case-insensitively against customer name, phone and
	// the short order id.
	Query         string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Window        Window
	// From/To bound CreatedAt when Window is WindowCustom. A zero To is
	// open-ended.
	From time.Time
	To   time.Time
	// OverdueOnly keeps orders older than the overdue age that have not
	// reached a terminal status.
	OverdueOnly bool
}

func (f Filter) Matches(o *domain.Order, now time.Time) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.OverdueOnly && !o.Overdue(now) {
		return false
	}
	if !f.matchesWindow(o, now) {
		return false
	}
	return f.matchesQuery(o)
}

func (f Filter) matchesWindow(o *domain.Order, now time.Time) bool {
	if d, ok := f.Window.duration(); ok {
		return now.Sub(o.CreatedAt) <= d
	}
	if f.Window == WindowCustom {
		if o.CreatedAt.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && o.CreatedAt.After(f.To) {
			return false
		}
	}
	return true
}

func (f Filter) matchesQuery(o *domain.Order) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.Customer.Name), q) {
		return true
	}
	if strings.Contains(o.Customer.Phone, q) {
		return true
	}
	return strings.Contains(strings.ToLower(o.ID.String()), q)
}
