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

// ByID → fetch one raffle by its ID
func (d *DB) ByID(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle
	err := d.Bun.NewSelect().
		Model(&raffle).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

// All → every raffle, newest first
func (d *DB) All(ctx context.Context) ([]models.Raffle, error) {
	var raffles []models.Raffle
	err := d.Bun.NewSelect().
		Model(&raffles).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return raffles, nil
}

// Active → raffles still selling numbers, newest first
func (d *DB) Active(ctx context.Context) ([]models.Raffle, error) {
	var raffles []models.Raffle
	err := d.Bun.NewSelect().
		Model(&raffles).
		Where("status = ?", models.RaffleActive).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return raffles, nil
}

// Create → insert new raffle
func (d *DB) Create(ctx context.Context, raffle models.Raffle) error {
	_, err := d.Bun.NewInsert().Model(&raffle).Exec(ctx)
	return err
}

// Update → update allowed fields
func (d *DB) Update(ctx context.Context, raffle models.Raffle) error {
	_, err := d.Bun.NewUpdate().
		Model(&raffle).
		Column("title", "description", "cover_image", "price", "raffle_date",
			"number_count", "max_numbers_per_client", "status", "cop_rate", "bs_rate").
		Where("id = ?", raffle.ID).
		Exec(ctx)
	return err
}

// Delete → remove a raffle and all of its tickets
func (d *DB) Delete(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Ticket)(nil)).
			Where("raffle_id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Raffle)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
