// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort: the lifecycle never fails because the broker is down, and a nil
// *Producer is a valid no-op.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Topic carries every order lifecycle event.
const Topic = "order-events"

// OrderEvent is the wire shape of a lifecycle event.
type OrderEvent struct {
	Type       string    `json:"type"` // e.g. "order.shipped", "order.delivered"
	OrderID    string    `json:"order_id"`
	OrderKind  string    `json:"order_kind"`
	CustomerID string    `json:"customer_id"`
	DriverID   string    `json:"driver_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Producer struct {
	producer sarama.SyncProducer
}

func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second
	prod, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: prod}, nil
}

// Publish sends the event, keyed by order id so per-order ordering holds.
func (p *Producer) Publish(ev OrderEvent) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("events: marshal %s for order %s failed: %v", ev.Type, ev.OrderID, err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: Topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		log.Printf("events: publish %s for order %s failed: %v", ev.Type, ev.OrderID, err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
