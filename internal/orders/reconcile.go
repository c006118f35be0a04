package orders

import (
	"ms-raffles/internal/models"
)

// Reconcile computes an order's expected total, collected amount and
// outstanding debt against the raffle's CURRENT price, then derives a
// single presentation status.
//
// The stored payment_status is an administrative workflow marker (what the
// admin last clicked); the derived status prefers the money-based truth.
// In particular an order marked 'paid' in storage is still "abonado" when
// the collected amount falls short of the current price: raising a
// raffle's price retroactively reopens the debt.
func Reconcile(order models.Order, raffle models.Raffle) models.ReconciledOrder {
	total := raffle.Price * float64(len(order.Numbers))

	var paid float64
	for _, t := range order.Tickets {
		paid += t.AmountPaid
	}

	debt := total - paid
	if debt < 0 {
		debt = 0
	}

	r := models.ReconciledOrder{
		Order:       order,
		TotalAmount: total,
		AmountPaid:  paid,
		Debt:        debt,
		Status:      deriveStatus(order.StoredStatus, paid, total),
	}

	if raffle.CopRate > 0 {
		r.CopTotal = total * raffle.CopRate
	}
	if raffle.BsRate > 0 {
		r.BsTotal = total * raffle.BsRate
	}

	return r
}

// ReconcileAll reconciles every order against its raffle.
func ReconcileAll(orders []models.Order, raffle models.Raffle) []models.ReconciledOrder {
	result := make([]models.ReconciledOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, Reconcile(o, raffle))
	}
	return result
}

// deriveStatus applies the classification precedence; first match wins.
func deriveStatus(stored models.PaymentStatus, paid, total float64) models.OrderStatus {
	switch {
	case stored == models.StatusRejected:
		return models.OrderRejected
	case paid > 0 && paid < total:
		return models.OrderPartiallyPaid
	case stored == models.StatusPaid && paid >= total:
		return models.OrderPaid
	case stored == models.StatusReserved && paid == 0:
		return models.OrderReserved
	default:
		return models.OrderPending
	}
}
