package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-raffles/internal/models"
)

type capture struct {
	mu            sync.Mutex
	notifications []OrderNotification
}

func (c *capture) flush(n OrderNotification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, n)
}

func (c *capture) all() []OrderNotification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]OrderNotification(nil), c.notifications...)
}

func insertEvent(orderID string, number int) models.Ticket {
	return models.Ticket{
		RaffleID:    "raffle-1",
		OrderID:     orderID,
		Number:      number,
		BuyerName:   "Maria Perez",
		BuyerCedula: "V-11222333",
	}
}

func TestDebouncer_CoalescesBatch(t *testing.T) {
	c := &capture{}
	d := NewDebouncer(50*time.Millisecond, c.flush)
	defer d.Stop()

	// Three ticket events of one purchase arriving in quick succession.
	d.Observe(insertEvent("order-a", 3))
	d.Observe(insertEvent("order-a", 4))
	d.Observe(insertEvent("order-a", 5))

	assert.Empty(t, c.all(), "nothing flushes inside the window")

	require.Eventually(t, func() bool {
		return len(c.all()) == 1
	}, time.Second, 10*time.Millisecond)

	n := c.all()[0]
	assert.Equal(t, "order-a", n.OrderID)
	assert.Equal(t, []int{3, 4, 5}, n.Numbers)
	assert.Equal(t, 3, n.TicketCount)
}

func TestDebouncer_SeparateOrders(t *testing.T) {
	c := &capture{}
	d := NewDebouncer(50*time.Millisecond, c.flush)
	defer d.Stop()

	d.Observe(insertEvent("order-a", 1))
	d.Observe(insertEvent("order-b", 2))

	require.Eventually(t, func() bool {
		return len(c.all()) == 2
	}, time.Second, 10*time.Millisecond)

	seen := map[string]int{}
	for _, n := range c.all() {
		seen[n.OrderID] = n.TicketCount
	}
	assert.Equal(t, map[string]int{"order-a": 1, "order-b": 1}, seen)
}

func TestDebouncer_EventResetsWindow(t *testing.T) {
	c := &capture{}
	d := NewDebouncer(60*time.Millisecond, c.flush)
	defer d.Stop()

	d.Observe(insertEvent("order-a", 1))
	time.Sleep(40 * time.Millisecond)
	d.Observe(insertEvent("order-a", 2))
	time.Sleep(40 * time.Millisecond)

	// 80ms elapsed but the second event reset the timer.
	assert.Empty(t, c.all())

	require.Eventually(t, func() bool {
		return len(c.all()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{1, 2}, c.all()[0].Numbers)
}

func TestDebouncer_NoOrderIDFlushesImmediately(t *testing.T) {
	c := &capture{}
	d := NewDebouncer(time.Hour, c.flush)
	defer d.Stop()

	d.Observe(insertEvent("", 9))

	require.Len(t, c.all(), 1)
	assert.Equal(t, []int{9}, c.all()[0].Numbers)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	c := &capture{}
	d := NewDebouncer(20*time.Millisecond, c.flush)

	d.Observe(insertEvent("order-a", 1))
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, c.all())
}

func TestEmitter_FanOutPerRaffle(t *testing.T) {
	e := NewOrderEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chA := e.SubscribeToRaffle(ctx, "raffle-1")
	chB := e.SubscribeToRaffle(ctx, "raffle-2")

	e.Emit(OrderNotification{RaffleID: "raffle-1", OrderID: "order-a"})

	select {
	case n := <-chA:
		assert.Equal(t, "order-a", n.OrderID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive notification")
	}

	select {
	case <-chB:
		t.Fatal("raffle-2 subscriber must not receive raffle-1 events")
	default:
	}
}
