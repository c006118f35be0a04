package orders

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRaffleNotFound is returned when a raffle id resolves to nothing.
var ErrRaffleNotFound = errors.New("raffle not found")

// ErrOrderNotFound is returned when an order id matches no tickets.
var ErrOrderNotFound = errors.New("order not found")

// ErrRaffleFinished rejects purchases against a finished raffle.
var ErrRaffleFinished = errors.New("raffle is finished")

// ValidationError covers malformed purchase input: missing buyer fields,
// a missing payment reference when payment is claimed, numbers out of
// range. Nothing is mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

const (
	ReasonNumberTaken   = "number_taken"
	ReasonLimitExceeded = "limit_exceeded"
)

// AllocationConflictError is the Allocation Guard's failure: either one of
// the requested numbers is already held by a non-rejected ticket, or the
// buyer's post-purchase count would exceed the raffle's per-client cap.
type AllocationConflictError struct {
	Reason    string
	Conflicts []int // taken numbers, for number_taken
	Current   int   // buyer's existing non-rejected tickets, for limit_exceeded
	Requested int
	Limit     int
}

func (e *AllocationConflictError) Error() string {
	if e.Reason == ReasonNumberTaken {
		parts := make([]string, len(e.Conflicts))
		for i, n := range e.Conflicts {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("numbers no longer available: %s", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("purchase limit exceeded: holding %d, requested %d, limit %d",
		e.Current, e.Requested, e.Limit)
}
