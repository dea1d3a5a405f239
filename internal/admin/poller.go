package admin

import (
	"context"
	"log"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/order"
)

// NotifyFunc receives the poll result: how many orders appeared since the
// last poll and the current total.
type NotifyFunc func(newCount, total int)

// Poller drives the console's "live" view: a fixed-interval refetch of the
// order list with a new-order counter. The counter is a heuristic
// (concurrent deletes can mask arrivals), fine for a dashboard badge.
type Poller struct {
	orders   OrderService
	interval time.Duration
	notify   NotifyFunc

	prevTotal int
	primed    bool
}

func NewPoller(orders OrderService, interval time.Duration, notify NotifyFunc) *Poller {
	return &Poller{
		orders:   orders,
		interval: interval,
		notify:   notify,
	}
}

// Run polls until the context is cancelled. One Run per console session;
// cancelling the context is the only way to stop it, so toggling the view
// cannot leak a second ticker.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx) // establish the baseline immediately
	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	orders, err := p.orders.List(ctx, order.Filter{})
	if err != nil {
		log.Printf("order poll failed: %v", err)
		return
	}

	total := len(orders)
	newCount := total - p.prevTotal
	if !p.primed {
		// First poll only sets the baseline; pre-existing orders are
		// not "new".
		newCount = 0
		p.primed = true
	}
	if newCount < 0 {
		newCount = 0
	}
	p.prevTotal = total

	if p.notify != nil {
		p.notify(newCount, total)
	}
}
