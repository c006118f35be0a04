package orders_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

func TestUndoStack_PushAndByOrder(t *testing.T) {
	s := orders.NewUndoStack(orders.DefaultUndoDepth)

	s.Push(models.UndoAction{
		OrderID:        "order-a",
		TicketIDs:      []string{"t1", "t2"},
		PreviousStatus: models.StatusPending,
		NewStatus:      models.StatusPaid,
	})

	action, ok := s.ByOrder("order-a")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, action.PreviousStatus)
	assert.False(t, action.Timestamp.IsZero())

	_, ok = s.ByOrder("order-x")
	assert.False(t, ok)
}

func TestUndoStack_SupersedesSameOrder(t *testing.T) {
	s := orders.NewUndoStack(orders.DefaultUndoDepth)

	s.Push(models.UndoAction{OrderID: "order-a", PreviousStatus: models.StatusPending, NewStatus: models.StatusPaid})
	s.Push(models.UndoAction{OrderID: "order-a", PreviousStatus: models.StatusPaid, NewStatus: models.StatusRejected})

	assert.Equal(t, 1, s.Len())

	action, ok := s.ByOrder("order-a")
	require.True(t, ok)
	assert.Equal(t, models.StatusPaid, action.PreviousStatus)
	assert.Equal(t, models.StatusRejected, action.NewStatus)
}

func TestUndoStack_DepthBound(t *testing.T) {
	s := orders.NewUndoStack(3)

	for i := 0; i < 5; i++ {
		s.Push(models.UndoAction{OrderID: fmt.Sprintf("order-%d", i)})
	}

	assert.Equal(t, 3, s.Len())

	// The oldest two fell off.
	_, ok := s.ByOrder("order-0")
	assert.False(t, ok)
	_, ok = s.ByOrder("order-1")
	assert.False(t, ok)
	_, ok = s.ByOrder("order-4")
	assert.True(t, ok)
}

func TestUndoStack_Remove(t *testing.T) {
	s := orders.NewUndoStack(orders.DefaultUndoDepth)
	s.Push(models.UndoAction{OrderID: "order-a"})
	s.Push(models.UndoAction{OrderID: "order-b"})

	s.Remove("order-a")

	assert.Equal(t, 1, s.Len())
	_, ok := s.ByOrder("order-a")
	assert.False(t, ok)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "order-b", latest.OrderID)
}
