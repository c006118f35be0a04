// Package notify turns per-ticket insert events into per-order admin
// notifications and fans them out to SSE subscribers.
package notify

import (
	"context"
	"sync"
	"time"
)

// OrderNotification is one coalesced "new order" event: all the numbers
// of a purchase batch in a single message.
type OrderNotification struct {
	OrderID     string    `json:"order_id"`
	RaffleID    string    `json:"raffle_id"`
	Numbers     []int     `json:"numbers"`
	BuyerName   string    `json:"buyer_name"`
	BuyerCedula string    `json:"buyer_cedula"`
	BuyerPhone  string    `json:"buyer_phone"`
	TicketCount int       `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderEventEmitter manages SSE connections and notification broadcasting
// per raffle.
type OrderEventEmitter struct {
	clients     map[string][]chan OrderNotification
	clientMutex sync.RWMutex
}

func NewOrderEventEmitter() *OrderEventEmitter {
	return &OrderEventEmitter{
		clients: make(map[string][]chan OrderNotification),
	}
}

// SubscribeToRaffle adds a client to the raffle's order notifications.
func (e *OrderEventEmitter) SubscribeToRaffle(ctx context.Context, raffleID string) chan OrderNotification {
	clientChan := make(chan OrderNotification, 10)

	e.clientMutex.Lock()
	e.clients[raffleID] = append(e.clients[raffleID], clientChan)
	e.clientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeClient(raffleID, clientChan)
	}()

	return clientChan
}

// Emit broadcasts a notification to all clients subscribed to its raffle.
func (e *OrderEventEmitter) Emit(n OrderNotification) {
	e.clientMutex.RLock()
	clients := e.clients[n.RaffleID]
	e.clientMutex.RUnlock()

	for _, clientChan := range clients {
		// Non-blocking send so a slow client never stalls the emitter
		select {
		case clientChan <- n:
		default:
		}
	}
}

func (e *OrderEventEmitter) removeClient(raffleID string, clientChan chan OrderNotification) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[raffleID]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[raffleID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[raffleID]) == 0 {
		delete(e.clients, raffleID)
	}
}

// ClientCount returns the number of clients subscribed to a raffle.
func (e *OrderEventEmitter) ClientCount(raffleID string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[raffleID])
}
