package models

import "time"

// Client is a read-time rollup of every ticket sharing one cedula across
// all raffles. It has no lifecycle of its own.
type Client struct {
	Cedula       string    `json:"cedula"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	TotalTickets int       `json:"total_tickets"`
	TotalPaid    float64   `json:"total_paid"`
	TotalDebt    float64   `json:"total_debt"`
	TotalRaffles int       `json:"total_raffles"`
	LastPurchase time.Time `json:"last_purchase"`
	Tickets      []Ticket  `json:"tickets"`
}
