package orders

import (
	"context"
	"fmt"

	"ms-raffles/internal/models"
)

// AllocationReader is the slice of the ticket store the guard needs.
type AllocationReader interface {
	ActiveByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error)
}

// Guard validates a requested allocation before any ticket insert. It is
// an optimistic pre-check for UX: the check and the later insert are not
// one transaction, so the partial unique index on (raffle_id, number)
// remains the real concurrency guarantee. A losing concurrent purchaser is
// rejected by the storage layer and must re-select.
type Guard struct {
	DB AllocationReader
}

func NewGuard(db AllocationReader) *Guard {
	return &Guard{DB: db}
}

// Check fails with an AllocationConflictError when a requested number is
// already held by a non-rejected ticket, or when the buyer's post-purchase
// count would exceed the raffle's per-client cap. overrideCap skips only
// the cap (admin manual adds); the availability check always runs.
func (g *Guard) Check(ctx context.Context, raffle models.Raffle, requested []int, buyerCedula string, overrideCap bool) error {
	if len(requested) == 0 {
		return &ValidationError{Field: "numbers", Message: "no numbers selected"}
	}
	for _, n := range requested {
		if n < 0 || n >= raffle.NumberCount {
			return &ValidationError{
				Field:   "numbers",
				Message: fmt.Sprintf("number %d out of range [0, %d)", n, raffle.NumberCount),
			}
		}
	}

	active, err := g.DB.ActiveByRaffle(ctx, raffle.ID)
	if err != nil {
		return fmt.Errorf("failed to load tickets for raffle %s: %w", raffle.ID, err)
	}

	taken := make(map[int]bool, len(active))
	buyerCount := 0
	for _, t := range active {
		taken[t.Number] = true
		if t.BuyerCedula == buyerCedula {
			buyerCount++
		}
	}

	var conflicts []int
	for _, n := range requested {
		if taken[n] {
			conflicts = append(conflicts, n)
		}
	}
	if len(conflicts) > 0 {
		return &AllocationConflictError{Reason: ReasonNumberTaken, Conflicts: conflicts}
	}

	if overrideCap {
		return nil
	}
	if limit := raffle.MaxNumbersPerClient; limit > 0 {
		if buyerCount+len(requested) > limit {
			return &AllocationConflictError{
				Reason:    ReasonLimitExceeded,
				Current:   buyerCount,
				Requested: len(requested),
				Limit:     limit,
			}
		}
	}

	return nil
}
