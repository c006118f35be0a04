package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-raffles/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// ---------------- TICKETS ----------------

// ByRaffle → fetch every ticket of a raffle, oldest first
func (d *DB) ByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("raffle_id = ?", raffleID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ActiveByRaffle → tickets currently holding their number. Rejected rows
// have released theirs.
func (d *DB) ActiveByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("raffle_id = ?", raffleID).
		Where("payment_status <> ?", models.StatusRejected).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ByOrder → fetch all tickets linked to an order
func (d *DB) ByOrder(ctx context.Context, orderID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ByCedula → a buyer's tickets within one raffle
func (d *DB) ByCedula(ctx context.Context, raffleID, cedula string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("raffle_id = ?", raffleID).
		Where("buyer_cedula = ?", cedula).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ByCedulaGlobal → a buyer's tickets across all raffles
func (d *DB) ByCedulaGlobal(ctx context.Context, cedula string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("buyer_cedula = ?", cedula).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// AllTickets → every ticket in the system, for the clients rollup
func (d *DB) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// Insert → insert a purchase batch in one statement, all or nothing
func (d *DB) Insert(ctx context.Context, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&tickets).Exec(ctx)
	return err
}

// UpdateStatusByIDs → one batched status update over an order's tickets
func (d *DB) UpdateStatusByIDs(ctx context.Context, ids []string, status models.PaymentStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("payment_status = ?", status).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}

// UpdateTicket → update payment fields of one ticket
func (d *DB) UpdateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("amount_paid", "reference_number", "payment_proof_url").
		Where("id = ?", ticket.ID).
		Exec(ctx)
	return err
}

// DeleteByIDs → remove an order's tickets
func (d *DB) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	return err
}
