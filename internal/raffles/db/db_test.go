package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-raffles/internal/models"
	"ms-raffles/internal/raffles/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, m := range []interface{}{(*models.Raffle)(nil), (*models.Ticket)(nil)} {
		_, err = bunDB.NewCreateTable().Model(m).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}

	return db.New(bunDB), bunDB
}

func seedRaffle(t *testing.T, bunDB *bun.DB, id string, status models.RaffleStatus) models.Raffle {
	t.Helper()
	raffle := models.Raffle{
		ID:          id,
		Title:       "Gran Rifa " + id,
		Price:       10,
		NumberCount: 100,
		Status:      status,
		RaffleDate:  time.Now().AddDate(0, 1, 0),
		CreatedAt:   time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&raffle).Exec(context.Background())
	require.NoError(t, err)
	return raffle
}

func seedTicket(t *testing.T, bunDB *bun.DB, raffleID string, number int) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		ID:            uuid.New().String(),
		RaffleID:      raffleID,
		OrderID:       "order-" + raffleID,
		Number:        number,
		BuyerName:     "Maria Perez",
		BuyerCedula:   "V-11222333",
		PaymentStatus: models.StatusPending,
		CreatedAt:     time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&ticket).Exec(context.Background())
	require.NoError(t, err)
	return ticket
}

func TestByIDAndActive(t *testing.T) {
	raffleDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRaffle(t, bunDB, "r1", models.RaffleActive)
	seedRaffle(t, bunDB, "r2", models.RaffleFinished)

	got, err := raffleDB.ByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Gran Rifa r1", got.Title)

	active, err := raffleDB.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "r1", active[0].ID)

	_, err = raffleDB.ByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestDeleteCascadesTickets(t *testing.T) {
	raffleDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRaffle(t, bunDB, "r1", models.RaffleActive)
	seedRaffle(t, bunDB, "r2", models.RaffleActive)
	seedTicket(t, bunDB, "r1", 1)
	seedTicket(t, bunDB, "r1", 2)
	kept := seedTicket(t, bunDB, "r2", 1)

	require.NoError(t, raffleDB.Delete(context.Background(), "r1"))

	_, err := raffleDB.ByID(context.Background(), "r1")
	assert.Error(t, err, "deleted raffle must be gone")

	var orphans []models.Ticket
	err = bunDB.NewSelect().Model(&orphans).Where("raffle_id = ?", "r1").Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orphans, "raffle deletion removes its tickets")

	var remaining []models.Ticket
	err = bunDB.NewSelect().Model(&remaining).Where("raffle_id = ?", "r2").Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}
