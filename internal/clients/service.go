// Package clients derives buyer rollups from ticket rows. There is no
// clients table; a buyer exists because their cedula appears on tickets.
package clients

import (
	"context"
	"fmt"
	"sort"

	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

type TicketSource interface {
	AllTickets(ctx context.Context) ([]models.Ticket, error)
	ByCedulaGlobal(ctx context.Context, cedula string) ([]models.Ticket, error)
}

type RaffleSource interface {
	All(ctx context.Context) ([]models.Raffle, error)
}

type Service struct {
	Tickets TicketSource
	Raffles RaffleSource
}

func NewService(tickets TicketSource, raffles RaffleSource) *Service {
	return &Service{Tickets: tickets, Raffles: raffles}
}

// List rolls every ticket in the system up into per-cedula clients,
// sorted by most recent purchase.
func (s *Service) List(ctx context.Context) ([]models.Client, error) {
	tickets, err := s.Tickets.AllTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	raffles, err := s.Raffles.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raffles: %w", err)
	}

	prices := make(map[string]float64, len(raffles))
	for _, r := range raffles {
		prices[r.ID] = r.Price
	}

	byCedula := make(map[string]*models.Client)
	order := []string{}
	for _, t := range tickets {
		c, ok := byCedula[t.BuyerCedula]
		if !ok {
			c = &models.Client{Cedula: t.BuyerCedula}
			byCedula[t.BuyerCedula] = c
			order = append(order, t.BuyerCedula)
		}
		c.Tickets = append(c.Tickets, t)
		c.TotalTickets++
		if t.PaymentStatus != models.StatusRejected {
			c.TotalPaid += t.AmountPaid
			// Debt clamps per ticket; an overpaid ticket never offsets
			// another ticket's outstanding balance.
			if debt := prices[t.RaffleID] - t.AmountPaid; debt > 0 {
				c.TotalDebt += debt
			}
		}
		// Identity follows the newest ticket, same rule as order grouping.
		if t.CreatedAt.After(c.LastPurchase) {
			c.Name = t.BuyerName
			c.Phone = t.BuyerPhone
			c.LastPurchase = t.CreatedAt
		}
	}

	clients := make([]models.Client, 0, len(byCedula))
	for _, cedula := range order {
		c := byCedula[cedula]
		seen := map[string]bool{}
		for _, t := range c.Tickets {
			if !seen[t.RaffleID] {
				seen[t.RaffleID] = true
				c.TotalRaffles++
			}
		}
		clients = append(clients, *c)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].LastPurchase.After(clients[j].LastPurchase)
	})
	return clients, nil
}

// Get returns one buyer's rollup across all raffles.
func (s *Service) Get(ctx context.Context, cedula string) (*models.Client, error) {
	if cedula == "" {
		return nil, &orders.ValidationError{Field: "cedula", Message: "required"}
	}
	tickets, err := s.Tickets.ByCedulaGlobal(ctx, cedula)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for cedula %s: %w", cedula, err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("no tickets found for cedula %s", cedula)
	}
	raffles, err := s.Raffles.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raffles: %w", err)
	}

	prices := make(map[string]float64, len(raffles))
	for _, r := range raffles {
		prices[r.ID] = r.Price
	}

	c := models.Client{Cedula: cedula}
	seen := map[string]bool{}
	for _, t := range tickets {
		c.Tickets = append(c.Tickets, t)
		c.TotalTickets++
		if t.PaymentStatus != models.StatusRejected {
			c.TotalPaid += t.AmountPaid
			// Debt clamps per ticket; an overpaid ticket never offsets
			// another ticket's outstanding balance.
			if debt := prices[t.RaffleID] - t.AmountPaid; debt > 0 {
				c.TotalDebt += debt
			}
		}
		if t.CreatedAt.After(c.LastPurchase) {
			c.Name = t.BuyerName
			c.Phone = t.BuyerPhone
			c.LastPurchase = t.CreatedAt
		}
		if !seen[t.RaffleID] {
			seen[t.RaffleID] = true
			c.TotalRaffles++
		}
	}
	return &c, nil
}
