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
	"ms-raffles/internal/tickets/db"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Ticket)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create ticket table: %v", err)
	}

	return db.New(bunDB), bunDB
}

func seedTicket(t *testing.T, bunDB *bun.DB, orderID string, number int, status models.PaymentStatus) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		ID:            uuid.New().String(),
		RaffleID:      "raffle-1",
		OrderID:       orderID,
		Number:        number,
		BuyerName:     "Maria Perez",
		BuyerCedula:   "V-11222333",
		BuyerPhone:    "04125550101",
		PaymentStatus: status,
		CreatedAt:     time.Now(),
	}
	_, err := bunDB.NewInsert().Model(&ticket).Exec(context.Background())
	require.NoError(t, err)
	return ticket
}

func TestByRaffleAndActive(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedTicket(t, bunDB, "order-a", 1, models.StatusPending)
	seedTicket(t, bunDB, "order-a", 2, models.StatusPaid)
	seedTicket(t, bunDB, "order-b", 3, models.StatusRejected)

	all, err := ticketDB.ByRaffle(context.Background(), "raffle-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := ticketDB.ActiveByRaffle(context.Background(), "raffle-1")
	require.NoError(t, err)
	assert.Len(t, active, 2, "rejected tickets are not active")

	empty, err := ticketDB.ByRaffle(context.Background(), "raffle-x")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInsertBatchAndByOrder(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	batch := []models.Ticket{}
	for i := 1; i <= 3; i++ {
		batch = append(batch, models.Ticket{
			ID:            uuid.New().String(),
			RaffleID:      "raffle-1",
			OrderID:       "order-a",
			Number:        i,
			BuyerName:     "Maria Perez",
			BuyerCedula:   "V-11222333",
			BuyerPhone:    "04125550101",
			PaymentStatus: models.StatusPending,
			CreatedAt:     time.Now(),
		})
	}
	require.NoError(t, ticketDB.Insert(context.Background(), batch))

	byOrder, err := ticketDB.ByOrder(context.Background(), "order-a")
	require.NoError(t, err)
	assert.Len(t, byOrder, 3)
}

func TestUpdateStatusByIDs(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	t1 := seedTicket(t, bunDB, "order-a", 1, models.StatusPending)
	t2 := seedTicket(t, bunDB, "order-a", 2, models.StatusPending)
	other := seedTicket(t, bunDB, "order-b", 3, models.StatusPending)

	err := ticketDB.UpdateStatusByIDs(context.Background(), []string{t1.ID, t2.ID}, models.StatusPaid)
	require.NoError(t, err)

	byOrder, err := ticketDB.ByOrder(context.Background(), "order-a")
	require.NoError(t, err)
	for _, tk := range byOrder {
		assert.Equal(t, models.StatusPaid, tk.PaymentStatus)
	}

	untouched, err := ticketDB.ByOrder(context.Background(), "order-b")
	require.NoError(t, err)
	require.Len(t, untouched, 1)
	assert.Equal(t, models.StatusPending, untouched[0].PaymentStatus)
	assert.Equal(t, other.ID, untouched[0].ID)
}

func TestUpdateTicket(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ticket := seedTicket(t, bunDB, "order-a", 1, models.StatusPending)

	ticket.AmountPaid = 15
	ticket.ReferenceNumber = "ref-999"
	require.NoError(t, ticketDB.UpdateTicket(context.Background(), ticket))

	byOrder, err := ticketDB.ByOrder(context.Background(), "order-a")
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, 15.0, byOrder[0].AmountPaid)
	assert.Equal(t, "ref-999", byOrder[0].ReferenceNumber)
}

func TestByCedulaAndDelete(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	t1 := seedTicket(t, bunDB, "order-a", 1, models.StatusRejected)
	seedTicket(t, bunDB, "order-b", 2, models.StatusPending)

	byCedula, err := ticketDB.ByCedula(context.Background(), "raffle-1", "V-11222333")
	require.NoError(t, err)
	assert.Len(t, byCedula, 2)

	global, err := ticketDB.ByCedulaGlobal(context.Background(), "V-11222333")
	require.NoError(t, err)
	assert.Len(t, global, 2)

	require.NoError(t, ticketDB.DeleteByIDs(context.Background(), []string{t1.ID}))

	all, err := ticketDB.AllTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUniqueNumberIndex(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	// Same partial index the migration creates; it is the real
	// allocation guarantee, the guard is only an advisory pre-check.
	_, err := bunDB.ExecContext(context.Background(), `
		CREATE UNIQUE INDEX IF NOT EXISTS tickets_raffle_number_active
		ON tickets (raffle_id, number)
		WHERE payment_status <> 'rejected'`)
	require.NoError(t, err)

	winner := seedTicket(t, bunDB, "order-a", 7, models.StatusPending)

	loser := models.Ticket{
		ID:            uuid.New().String(),
		RaffleID:      "raffle-1",
		OrderID:       "order-b",
		Number:        7,
		BuyerName:     "Jose Gomez",
		BuyerCedula:   "V-99888777",
		PaymentStatus: models.StatusPending,
		CreatedAt:     time.Now(),
	}
	err = ticketDB.Insert(context.Background(), []models.Ticket{loser})
	require.Error(t, err, "second live ticket on the same number must lose")

	otherRaffle := loser
	otherRaffle.ID = uuid.New().String()
	otherRaffle.RaffleID = "raffle-2"
	require.NoError(t, ticketDB.Insert(context.Background(), []models.Ticket{otherRaffle}))

	// Rejecting the winner frees the number for reallocation.
	require.NoError(t, ticketDB.UpdateStatusByIDs(context.Background(), []string{winner.ID}, models.StatusRejected))
	require.NoError(t, ticketDB.Insert(context.Background(), []models.Ticket{loser}))

	active, err := ticketDB.ActiveByRaffle(context.Background(), "raffle-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, loser.ID, active[0].ID)
}
