package orders

import (
	"sync"
	"time"

	"ms-raffles/internal/models"
)

// DefaultUndoDepth bounds the in-memory undo history.
const DefaultUndoDepth = 20

// UndoStack holds the most recent reversible status changes. A new action
// on an order supersedes the older one for that order. Undo itself is not
// undoable; there is no redo stack.
type UndoStack struct {
	mu      sync.Mutex
	actions []models.UndoAction
	depth   int
}

func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

func (s *UndoStack) Push(action models.UndoAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}

	// Supersede any previous action on the same order.
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.OrderID != action.OrderID {
			kept = append(kept, a)
		}
	}
	s.actions = append(kept, action)

	if len(s.actions) > s.depth {
		s.actions = s.actions[len(s.actions)-s.depth:]
	}
}

// Latest returns the most recent action, if any.
func (s *UndoStack) Latest() (models.UndoAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.actions) == 0 {
		return models.UndoAction{}, false
	}
	return s.actions[len(s.actions)-1], true
}

// ByOrder returns the pending action for one order, if any.
func (s *UndoStack) ByOrder(orderID string) (models.UndoAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actions {
		if a.OrderID == orderID {
			return a, true
		}
	}
	return models.UndoAction{}, false
}

// Remove drops the action for an order once it has been applied.
func (s *UndoStack) Remove(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.OrderID != orderID {
			kept = append(kept, a)
		}
	}
	s.actions = kept
}

func (s *UndoStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
