package notify

import (
	"sort"
	"sync"
	"time"

	"ms-raffles/internal/models"
)

// DefaultDebounceWindow is how long the debouncer waits for sibling
// ticket events before flushing one notification per order.
const DefaultDebounceWindow = 500 * time.Millisecond

// Debouncer coalesces the per-ticket insert events of one purchase into
// a single OrderNotification. A batch of N tickets arrives as N events in
// quick succession; each event resets the order's timer, and the pending
// notification accumulates numbers until the timer fires.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingOrder
	flush   func(OrderNotification)
}

type pendingOrder struct {
	notification OrderNotification
	timer        *time.Timer
}

// NewDebouncer returns a debouncer that calls flush once per coalesced
// order. A window <= 0 falls back to DefaultDebounceWindow.
func NewDebouncer(window time.Duration, flush func(OrderNotification)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingOrder),
		flush:   flush,
	}
}

// Observe feeds one ticket insert event into the debouncer. Tickets
// without an order id flush immediately: there is no batch to wait for.
func (d *Debouncer) Observe(ticket models.Ticket) {
	n := OrderNotification{
		OrderID:     ticket.OrderID,
		RaffleID:    ticket.RaffleID,
		Numbers:     []int{ticket.Number},
		BuyerName:   ticket.BuyerName,
		BuyerCedula: ticket.BuyerCedula,
		BuyerPhone:  ticket.BuyerPhone,
		TicketCount: 1,
		CreatedAt:   ticket.CreatedAt,
	}

	if ticket.OrderID == "" {
		d.flush(n)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[ticket.OrderID]; ok {
		p.notification.Numbers = append(p.notification.Numbers, ticket.Number)
		p.notification.TicketCount++
		p.timer.Reset(d.window)
		return
	}

	p := &pendingOrder{notification: n}
	p.timer = time.AfterFunc(d.window, func() {
		d.fire(ticket.OrderID)
	})
	d.pending[ticket.OrderID] = p
}

func (d *Debouncer) fire(orderID string) {
	d.mu.Lock()
	p, ok := d.pending[orderID]
	if ok {
		delete(d.pending, orderID)
	}
	d.mu.Unlock()

	if !ok {
		return
	}
	sort.Ints(p.notification.Numbers)
	d.flush(p.notification)
}

// Stop cancels all pending timers without flushing.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, id)
	}
}
