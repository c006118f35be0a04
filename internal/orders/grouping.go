package orders

import (
	"fmt"
	"sort"
	"time"

	"ms-raffles/internal/models"
)

// GroupTickets folds raw ticket rows into derived orders keyed by order id.
// Rows without an order id (created before order ids existed) fall back to
// a cedula+timestamp composite key; such orders are tagged Legacy because
// two rows from one batch can still split if their timestamps differ.
//
// Every ticket lands in exactly one group. Numbers are not deduplicated
// here; write-time allocation is the Guard's job.
func GroupTickets(tickets []models.Ticket) []models.Order {
	groups := make(map[string]*models.Order)
	order := make([]string, 0, len(tickets))

	for _, t := range tickets {
		key := t.OrderID
		legacy := false
		if key == "" {
			key = fallbackKey(t)
			legacy = true
		}

		g, ok := groups[key]
		if !ok {
			g = &models.Order{
				OrderID:  t.OrderID,
				RaffleID: t.RaffleID,
				Legacy:   legacy,
			}
			if g.OrderID == "" {
				g.OrderID = key
			}
			groups[key] = g
			order = append(order, key)
		}

		g.Numbers = append(g.Numbers, t.Number)
		g.TicketIDs = append(g.TicketIDs, t.ID)
		g.Tickets = append(g.Tickets, t)

		// The representative ticket is the most recently created one;
		// buyer identity and payment markers follow it.
		if t.CreatedAt.After(g.CreatedAt) || g.BuyerCedula == "" {
			g.CreatedAt = t.CreatedAt
			g.BuyerName = t.BuyerName
			g.BuyerCedula = t.BuyerCedula
			g.BuyerPhone = t.BuyerPhone
			g.ReferenceNumber = t.ReferenceNumber
			g.PaymentProofURL = t.PaymentProofURL
			g.StoredStatus = t.PaymentStatus
		}
	}

	result := make([]models.Order, 0, len(groups))
	for _, key := range order {
		result = append(result, *groups[key])
	}

	// Newest purchases first, matching the admin order view.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// fallbackKey approximates the original batch identity for legacy rows.
// Truncating to the second absorbs sub-second insert jitter but remains
// best-effort.
func fallbackKey(t models.Ticket) string {
	return fmt.Sprintf("%s-%d", t.BuyerCedula, t.CreatedAt.Truncate(time.Second).Unix())
}
