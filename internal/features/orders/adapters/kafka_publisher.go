package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-ledger/internal/core/config"
	"order-ledger/internal/features/orders/ports"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaLedgerPublisher implements ports.LedgerEventPublisher on a Kafka topic.
// Messages are keyed by order id so one order's events stay on one partition.
type KafkaLedgerPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaLedgerPublisher creates a publisher for the configured brokers and topic.
func NewKafkaLedgerPublisher(cfg config.KafkaConfig) *KafkaLedgerPublisher {
	return &KafkaLedgerPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.BrokerList()...),
			Topic:        cfg.LedgerTopic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		now: time.Now,
	}
}

// Publish writes one ledger event.
func (p *KafkaLedgerPublisher) Publish(ctx context.Context, event ports.LedgerEvent) error {
	msg, err := buildMessage(event, p.now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaLedgerPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(event ports.LedgerEvent, at time.Time) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode ledger event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  at,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "record-id", Value: []byte(event.RecordID)},
		},
	}, nil
}

// NopLedgerPublisher drops every event. Used when no brokers are configured.
type NopLedgerPublisher struct{}

// Publish does nothing.
func (NopLedgerPublisher) Publish(context.Context, ports.LedgerEvent) error { return nil }

// Close does nothing.
func (NopLedgerPublisher) Close() error { return nil }
