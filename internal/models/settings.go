package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SiteSettings struct {
	bun.BaseModel `bun:"table:site_settings"`

	ID              string    `bun:"id,pk" json:"id"`
	CoverImage      string    `bun:"cover_image" json:"cover_image"`
	AdminWhatsApp   string    `bun:"admin_whatsapp" json:"admin_whatsapp"`
	AppName         string    `bun:"app_name" json:"app_name"`
	TermsConditions string    `bun:"terms_conditions" json:"terms_conditions"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

type PaymentField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type PaymentMethod struct {
	bun.BaseModel `bun:"table:payment_methods"`

	ID            string         `bun:"id,pk" json:"id"`
	Name          string         `bun:"name,notnull" json:"name"`
	ImageURL      string         `bun:"image_url,nullzero" json:"image_url"`
	Details       string         `bun:"details" json:"details"`
	PaymentFields []PaymentField `bun:"payment_fields,type:jsonb,nullzero" json:"payment_fields"`
	IsActive      bool           `bun:"is_active" json:"is_active"`
	DisplayOrder  int            `bun:"display_order" json:"display_order"`
	CreatedAt     time.Time      `bun:"created_at,notnull" json:"created_at"`
}
