package models

import "time"

// UndoAction records a reversible admin status change on one order. Held
// in memory only; superseded by a newer action on the same order.
type UndoAction struct {
	OrderID        string        `json:"order_id"`
	TicketIDs      []string      `json:"ticket_ids"`
	PreviousStatus PaymentStatus `json:"previous_status"`
	NewStatus      PaymentStatus `json:"new_status"`
	Timestamp      time.Time     `json:"timestamp"`
}
