package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/segmentio/kafka-go"

	"ms-raffles/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start begins consuming ticket insert events from Kafka
func (c *Consumer) Start(handler func(ticket models.Ticket)) {
	fmt.Println("🔄 Kafka consumer started...")

	for {
		msg, err := c.reader.ReadMessage(context.Background())
		if err != nil {
			if isReaderClosed(err) {
				log.Println("🛑 Kafka consumer stopped")
				return
			}
			log.Printf("❌ Error reading message: %v\n", err)
			continue
		}

		var ticket models.Ticket
		if err := json.Unmarshal(msg.Value, &ticket); err != nil {
			log.Printf("⚠️ Failed to unmarshal message: %v\n", err)
			continue
		}

		log.Printf("📩 Received ticket event: order=%s number=%d", ticket.OrderID, ticket.Number)
		handler(ticket)
	}
}

// isReaderClosed reports whether a read error means the reader was shut
// down. A closed kafka.Reader surfaces io.EOF from ReadMessage.
func isReaderClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe)
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
