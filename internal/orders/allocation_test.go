package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

type stubAllocationReader struct {
	active []models.Ticket
	err    error
}

func (s *stubAllocationReader) ActiveByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error) {
	return s.active, s.err
}

func activeTicket(number int, cedula string) models.Ticket {
	return models.Ticket{
		RaffleID:      "raffle-1",
		Number:        number,
		BuyerCedula:   cedula,
		PaymentStatus: models.StatusPending,
	}
}

func guardRaffle(cap int) models.Raffle {
	return models.Raffle{
		ID:                  "raffle-1",
		NumberCount:         100,
		MaxNumbersPerClient: cap,
		Status:              models.RaffleActive,
	}
}

func TestGuardCheck_Available(t *testing.T) {
	guard := orders.NewGuard(&stubAllocationReader{})
	err := guard.Check(context.Background(), guardRaffle(0), []int{1, 2, 3}, "V-1", false)
	assert.NoError(t, err)
}

func TestGuardCheck_NumberTaken(t *testing.T) {
	guard := orders.NewGuard(&stubAllocationReader{
		active: []models.Ticket{activeTicket(5, "V-2"), activeTicket(7, "V-2")},
	})

	err := guard.Check(context.Background(), guardRaffle(0), []int{5, 6, 7}, "V-1", false)
	require.Error(t, err)

	var conflict *orders.AllocationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, orders.ReasonNumberTaken, conflict.Reason)
	assert.ElementsMatch(t, []int{5, 7}, conflict.Conflicts)
}

func TestGuardCheck_CapExceeded(t *testing.T) {
	// Buyer holds 2 with a cap of 3; 2 more must be refused.
	guard := orders.NewGuard(&stubAllocationReader{
		active: []models.Ticket{activeTicket(1, "V-1"), activeTicket(2, "V-1")},
	})

	err := guard.Check(context.Background(), guardRaffle(3), []int{10, 11}, "V-1", false)
	require.Error(t, err)

	var conflict *orders.AllocationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, orders.ReasonLimitExceeded, conflict.Reason)
	assert.Equal(t, 2, conflict.Current)
	assert.Equal(t, 2, conflict.Requested)
	assert.Equal(t, 3, conflict.Limit)
}

func TestGuardCheck_CapExactlyReached(t *testing.T) {
	guard := orders.NewGuard(&stubAllocationReader{
		active: []models.Ticket{activeTicket(1, "V-1"), activeTicket(2, "V-1")},
	})

	err := guard.Check(context.Background(), guardRaffle(3), []int{10}, "V-1", false)
	assert.NoError(t, err)
}

func TestGuardCheck_OverrideSkipsCapOnly(t *testing.T) {
	guard := orders.NewGuard(&stubAllocationReader{
		active: []models.Ticket{activeTicket(1, "V-1"), activeTicket(2, "V-1")},
	})

	// Cap is bypassed with override.
	err := guard.Check(context.Background(), guardRaffle(3), []int{10, 11}, "V-1", true)
	assert.NoError(t, err)

	// Taken numbers still conflict with override.
	err = guard.Check(context.Background(), guardRaffle(3), []int{1}, "V-9", true)
	var conflict *orders.AllocationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, orders.ReasonNumberTaken, conflict.Reason)
}

func TestGuardCheck_RejectedTicketsFreeTheirNumbers(t *testing.T) {
	// ActiveByRaffle excludes rejected rows, so a stub with none active
	// models a raffle where every prior sale was rejected.
	guard := orders.NewGuard(&stubAllocationReader{})
	err := guard.Check(context.Background(), guardRaffle(2), []int{1, 2}, "V-1", false)
	assert.NoError(t, err)
}

func TestGuardCheck_Validation(t *testing.T) {
	guard := orders.NewGuard(&stubAllocationReader{})

	var vErr *orders.ValidationError

	err := guard.Check(context.Background(), guardRaffle(0), nil, "V-1", false)
	require.ErrorAs(t, err, &vErr)

	err = guard.Check(context.Background(), guardRaffle(0), []int{100}, "V-1", false)
	require.ErrorAs(t, err, &vErr, "number must be below the grid size")

	err = guard.Check(context.Background(), guardRaffle(0), []int{-1}, "V-1", false)
	require.ErrorAs(t, err, &vErr)
}
