package models

import (
	"time"
)

// OrderStatus is the derived presentation status of a grouped order. It is
// computed from money actually collected versus current raffle price and
// can disagree with the stored per-ticket payment_status (an admin marking
// an order paid does not make it paid if the collected amount fell short).
type OrderStatus string

const (
	OrderPaid          OrderStatus = "paid"
	OrderPartiallyPaid OrderStatus = "partially_paid" // "abonado"
	OrderReserved      OrderStatus = "reserved"
	OrderPending       OrderStatus = "pending"
	OrderRejected      OrderStatus = "rejected"
)

// Order is the derived grouping of all tickets sharing one purchase
// transaction. It is never persisted; it is recomputed from ticket rows on
// every read.
type Order struct {
	OrderID  string `json:"order_id"`
	RaffleID string `json:"raffle_id"`

	Numbers   []int    `json:"numbers"`
	TicketIDs []string `json:"ticket_ids"`
	Tickets   []Ticket `json:"-"`

	// Buyer identity comes from the most recently created ticket in the
	// group; all siblings should share it.
	BuyerName       string `json:"buyer_name"`
	BuyerCedula     string `json:"buyer_cedula"`
	BuyerPhone      string `json:"buyer_phone"`
	ReferenceNumber string `json:"reference_number"`
	PaymentProofURL string `json:"payment_proof_url"`

	StoredStatus PaymentStatus `json:"payment_status"`
	CreatedAt    time.Time     `json:"created_at"`

	// Legacy marks orders grouped via the cedula+timestamp fallback key.
	// Grouping may be unreliable for such rows and the UI should warn.
	Legacy bool `json:"legacy,omitempty"`
}

// ReconciledOrder adds the money-derived fields computed against the
// owning raffle's current price.
type ReconciledOrder struct {
	Order

	TotalAmount float64     `json:"total_amount"`
	AmountPaid  float64     `json:"amount_paid"`
	Debt        float64     `json:"debt"`
	Status      OrderStatus `json:"status"`

	// Secondary-currency totals; zero when the raffle has no rate.
	CopTotal float64 `json:"cop_total,omitempty"`
	BsTotal  float64 `json:"bs_total,omitempty"`
}

// RaffleStats summarizes a raffle's sales for the admin dashboard.
type RaffleStats struct {
	Collected    float64 `json:"collected"`
	PaidCount    int     `json:"paid_count"`
	PendingCount int     `json:"pending_count"`
}

// Availability describes the number grid for a raffle.
type Availability struct {
	NumberCount  int   `json:"number_count"`
	TakenNumbers []int `json:"taken_numbers"`
	TakenCount   int   `json:"taken_count"`
	FreeCount    int   `json:"free_count"`
}
