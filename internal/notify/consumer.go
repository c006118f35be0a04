package notify

import (
	"fmt"

	"ms-raffles/internal/kafka"
	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
)

// Bridge wires the ticket-insert Kafka stream through the debouncer into
// the SSE emitter.
type Bridge struct {
	Consumer  *kafka.Consumer
	Debouncer *Debouncer
	Emitter   *OrderEventEmitter
	Logger    *logger.Logger
}

func NewBridge(consumer *kafka.Consumer, emitter *OrderEventEmitter, log *logger.Logger) *Bridge {
	b := &Bridge{
		Consumer: consumer,
		Emitter:  emitter,
		Logger:   log,
	}
	b.Debouncer = NewDebouncer(DefaultDebounceWindow, func(n OrderNotification) {
		log.Info("NOTIFY", fmt.Sprintf("new order %s: %d numbers for %s", n.OrderID, n.TicketCount, n.BuyerCedula))
		emitter.Emit(n)
	})
	return b
}

// Start blocks consuming ticket events; run it in a goroutine.
func (b *Bridge) Start() {
	b.Consumer.Start(func(ticket models.Ticket) {
		b.Debouncer.Observe(ticket)
	})
}

func (b *Bridge) Close() error {
	b.Debouncer.Stop()
	return b.Consumer.Close()
}
