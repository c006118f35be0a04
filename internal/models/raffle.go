package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RaffleStatus string

const (
	RaffleActive   RaffleStatus = "active"
	RaffleFinished RaffleStatus = "finished"
)

type Raffle struct {
	bun.BaseModel `bun:"table:raffles"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	CoverImage  string    `bun:"cover_image" json:"cover_image"`
	Price       float64   `bun:"price,notnull" json:"price"`
	RaffleDate  time.Time `bun:"raffle_date,notnull" json:"raffle_date"`
	NumberCount int       `bun:"number_count,notnull" json:"number_count"`
	// MaxNumbersPerClient caps non-rejected tickets per cedula; 0 = unlimited.
	MaxNumbersPerClient int          `bun:"max_numbers_per_client,nullzero" json:"max_numbers_per_client"`
	Status              RaffleStatus `bun:"status,notnull" json:"status"`
	// Exchange rates for secondary currency display. Zero means the
	// currency is unavailable for this raffle.
	CopRate   float64   `bun:"cop_rate" json:"cop_rate"`
	BsRate    float64   `bun:"bs_rate" json:"bs_rate"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

type RaffleRequest struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	CoverImage          string  `json:"cover_image"`
	Price               float64 `json:"price"`
	RaffleDate          string  `json:"raffle_date"`
	NumberCount         int     `json:"number_count"`
	MaxNumbersPerClient int     `json:"max_numbers_per_client"`
	CopRate             float64 `json:"cop_rate"`
	BsRate              float64 `json:"bs_rate"`
}
