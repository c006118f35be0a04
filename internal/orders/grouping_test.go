package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

func ticket(id, orderID string, number int, createdAt time.Time) models.Ticket {
	return models.Ticket{
		ID:            id,
		RaffleID:      "raffle-1",
		OrderID:       orderID,
		Number:        number,
		BuyerName:     "Maria Perez",
		BuyerCedula:   "V-11222333",
		BuyerPhone:    "+58 412 5550101",
		PaymentStatus: models.StatusPending,
		CreatedAt:     createdAt,
	}
}

func TestGroupTickets_ByOrderID(t *testing.T) {
	now := time.Now()
	tickets := []models.Ticket{
		ticket("t1", "order-a", 3, now),
		ticket("t2", "order-a", 4, now),
		ticket("t3", "order-a", 5, now),
		ticket("t4", "order-b", 9, now.Add(time.Minute)),
	}

	groups := orders.GroupTickets(tickets)
	require.Len(t, groups, 2)

	// Newest order first
	assert.Equal(t, "order-b", groups[0].OrderID)
	assert.Equal(t, []int{9}, groups[0].Numbers)

	assert.Equal(t, "order-a", groups[1].OrderID)
	assert.ElementsMatch(t, []int{3, 4, 5}, groups[1].Numbers)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, groups[1].TicketIDs)
	assert.False(t, groups[1].Legacy)
}

func TestGroupTickets_LegacyFallback(t *testing.T) {
	base := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	// Same cedula, same second: one legacy group.
	t1 := ticket("t1", "", 7, base)
	t2 := ticket("t2", "", 8, base.Add(300*time.Millisecond))
	// Same cedula, a different second: separate group.
	t3 := ticket("t3", "", 9, base.Add(2*time.Second))

	groups := orders.GroupTickets([]models.Ticket{t1, t2, t3})
	require.Len(t, groups, 2)

	for _, g := range groups {
		assert.True(t, g.Legacy)
		assert.NotEmpty(t, g.OrderID)
	}
	assert.Equal(t, []int{9}, groups[0].Numbers)
	assert.ElementsMatch(t, []int{7, 8}, groups[1].Numbers)
}

func TestGroupTickets_RepresentativeIsNewest(t *testing.T) {
	now := time.Now()

	older := ticket("t1", "order-a", 1, now)
	older.ReferenceNumber = "ref-old"

	newer := ticket("t2", "order-a", 2, now.Add(time.Hour))
	newer.ReferenceNumber = "ref-new"
	newer.PaymentStatus = models.StatusPaid
	newer.PaymentProofURL = "tg_file_id:abc"

	groups := orders.GroupTickets([]models.Ticket{older, newer})
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "ref-new", g.ReferenceNumber)
	assert.Equal(t, models.StatusPaid, g.StoredStatus)
	assert.Equal(t, "tg_file_id:abc", g.PaymentProofURL)
	assert.Equal(t, newer.CreatedAt, g.CreatedAt)
}

func TestGroupTickets_MixedLegacyAndModern(t *testing.T) {
	now := time.Now()
	tickets := []models.Ticket{
		ticket("t1", "order-a", 1, now),
		ticket("t2", "", 2, now),
	}

	groups := orders.GroupTickets(tickets)
	require.Len(t, groups, 2)

	var legacyCount int
	for _, g := range groups {
		if g.Legacy {
			legacyCount++
		}
	}
	assert.Equal(t, 1, legacyCount)
}

func TestGroupTickets_Empty(t *testing.T) {
	assert.Empty(t, orders.GroupTickets(nil))
}
