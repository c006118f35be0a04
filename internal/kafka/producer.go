package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-raffles/internal/models"
)

type Producer struct {
	TicketWriter   *kafka.Writer
	ApprovalWriter *kafka.Writer
}

func NewProducer(brokers []string, ticketTopic, approvalTopic string) *Producer {
	return &Producer{
		TicketWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   ticketTopic,
		}),
		ApprovalWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   approvalTopic,
		}),
	}
}

// PublishTicketInserted streams one ticket row creation event. Events are
// keyed by order id so consumers can coalesce siblings of one purchase.
func (p *Producer) PublishTicketInserted(ticket models.Ticket) error {
	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [ticket_inserted]: order=%s number=%d\n", ticket.OrderID, ticket.Number)

	return p.TicketWriter.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(ticket.OrderID),
			Value: msgBytes,
		},
	)
}

// OrderApprovedEvent is the payload of an approval event.
type OrderApprovedEvent struct {
	OrderID   string   `json:"order_id"`
	TicketIDs []string `json:"ticket_ids"`
}

// PublishOrderApproved streams an order approval event.
func (p *Producer) PublishOrderApproved(orderID string, ticketIDs []string) error {
	msgBytes, err := json.Marshal(OrderApprovedEvent{OrderID: orderID, TicketIDs: ticketIDs})
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [order_approved]: %s\n", orderID)

	return p.ApprovalWriter.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(orderID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if err := p.TicketWriter.Close(); err != nil {
		return err
	}
	return p.ApprovalWriter.Close()
}
