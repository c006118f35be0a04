// Package settings stores the storefront's site configuration and the
// payment methods shown at checkout.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-raffles/internal/models"
)

// siteSettingsID pins the singleton row.
const siteSettingsID = "default"

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// GetSettings returns the singleton site settings, defaulting when the
// row was never written.
func (d *DB) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var s models.SiteSettings
	err := d.Bun.NewSelect().
		Model(&s).
		Where("id = ?", siteSettingsID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.SiteSettings{ID: siteSettingsID, AppName: "Rifas"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts the singleton row.
func (d *DB) SaveSettings(ctx context.Context, s models.SiteSettings) error {
	s.ID = siteSettingsID
	s.UpdatedAt = time.Now()
	_, err := d.Bun.NewInsert().
		Model(&s).
		On("CONFLICT (id) DO UPDATE").
		Set("cover_image = EXCLUDED.cover_image").
		Set("admin_whatsapp = EXCLUDED.admin_whatsapp").
		Set("app_name = EXCLUDED.app_name").
		Set("terms_conditions = EXCLUDED.terms_conditions").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ---------------- PAYMENT METHODS ----------------

// PaymentMethods lists methods in display order. With activeOnly set,
// hidden methods are skipped.
func (d *DB) PaymentMethods(ctx context.Context, activeOnly bool) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	q := d.Bun.NewSelect().
		Model(&methods).
		Order("display_order ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return methods, nil
}

func (d *DB) CreatePaymentMethod(ctx context.Context, m models.PaymentMethod) (*models.PaymentMethod, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	if _, err := d.Bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (d *DB) UpdatePaymentMethod(ctx context.Context, m models.PaymentMethod) error {
	_, err := d.Bun.NewUpdate().
		Model(&m).
		Column("name", "image_url", "details", "payment_fields", "is_active", "display_order").
		Where("id = ?", m.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeletePaymentMethod(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.PaymentMethod)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
