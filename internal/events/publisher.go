package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// Order event types
const (
	OrderCreated         = "order.created"
	OrderUpdated         = "order.updated"
	OrderStatusChanged   = "order.status_changed"
	OrderPaymentRecorded = "order.payment_recorded"
	OrderDeleted         = "order.deleted"
)

type OrderEvent struct {
	Type            string    `json:"type"`
	OrderID         string    `json:"order_id"`
	OrganizationID  string    `json:"organization_id"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	TableNumber     *int      `json:"table_number,omitempty"`
	Total           float64   `json:"total"`
	PaymentReceived float64   `json:"payment_received"`
	BalanceAmount   float64   `json:"balance_amount"`
	EventTime       time.Time `json:"event_time"`
}

// OrderEventPublisher fans order lifecycle events out to downstream consumers
type OrderEventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logrus.Entry
}

func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisherFromProducer(producer, topic, logger), nil
}

func NewKafkaPublisherFromProducer(producer sarama.SyncProducer, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.WithField("component", "events"),
	}
}

// Publish sends the event keyed by order id so one order's events stay in one partition
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if event.EventTime.IsZero() {
		event.EventTime = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("organization_id"), Value: []byte(event.OrganizationID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("order_id", event.OrderID).Error("failed to send order event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     p.topic,
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
		"order_id":  event.OrderID,
	}).Debug("order event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher is used when no brokers are configured
func NewNoopPublisher() OrderEventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, OrderEvent) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
