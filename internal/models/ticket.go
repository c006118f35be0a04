package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusReserved PaymentStatus = "reserved"
	StatusPaid     PaymentStatus = "paid"
	StatusRejected PaymentStatus = "rejected"
)

// Ticket is one raffle number allocated to one buyer. Numbers are held
// exclusively by non-rejected tickets: a rejected ticket frees its number
// for reallocation, enforced by a partial unique index on
// (raffle_id, number) WHERE payment_status <> 'rejected'.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID       string `bun:"id,pk" json:"id"`
	RaffleID string `bun:"raffle_id,notnull" json:"raffle_id"`
	// OrderID groups sibling tickets from one purchase event. Legacy rows
	// created before order ids existed may have it empty.
	OrderID         string        `bun:"order_id" json:"order_id"`
	Number          int           `bun:"number,notnull" json:"number"`
	BuyerName       string        `bun:"buyer_name,notnull" json:"buyer_name"`
	BuyerCedula     string        `bun:"buyer_cedula,notnull" json:"buyer_cedula"`
	BuyerPhone      string        `bun:"buyer_phone,notnull" json:"buyer_phone"`
	ReferenceNumber string        `bun:"reference_number" json:"reference_number"`
	PaymentProofURL string        `bun:"payment_proof_url,nullzero" json:"payment_proof_url"`
	PaymentStatus   PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	AmountPaid      float64       `bun:"amount_paid" json:"amount_paid"`
	CreatedAt       time.Time     `bun:"created_at,notnull" json:"created_at"`
}

// PurchaseRequest is a customer checkout: one order covering the selected
// numbers, with an optional payment-proof file.
type PurchaseRequest struct {
	RaffleID        string  `json:"raffle_id"`
	Numbers         []int   `json:"numbers"`
	BuyerName       string  `json:"buyer_name"`
	BuyerCedula     string  `json:"buyer_cedula"`
	BuyerPhone      string  `json:"buyer_phone"`
	ReferenceNumber string  `json:"reference_number"`
	PaymentType     string  `json:"payment_type"` // full, partial, reserve
	PartialAmount   float64 `json:"partial_amount"`

	Proof *ProofFile `json:"-"`
}

const (
	PaymentFull    = "full"
	PaymentPartial = "partial"
	PaymentReserve = "reserve"
)

type ProofFile struct {
	Name string
	Data []byte
}

// CompletionRequest tops up a reserved or partially paid order.
type CompletionRequest struct {
	OrderID         string  `json:"order_id"`
	Amount          float64 `json:"amount"`
	ReferenceNumber string  `json:"reference_number"`

	Proof *ProofFile `json:"-"`
}
