package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restobill/internal/logging"
)

func TestKafkaPublisher_PublishEncodesEvent(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "restobill.orders", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "o1", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)
		var event OrderEvent
		require.NoError(t, json.Unmarshal(value, &event))
		assert.Equal(t, OrderCreated, event.Type)
		assert.Equal(t, "org1", event.OrganizationID)
		assert.Equal(t, 132.0, event.Total)
		assert.False(t, event.EventTime.IsZero())
		return nil
	})

	publisher := NewKafkaPublisherFromProducer(producer, "restobill.orders", logging.Discard())
	err := publisher.Publish(context.Background(), OrderEvent{
		Type:           OrderCreated,
		OrderID:        "o1",
		OrganizationID: "org1",
		Status:         "pending",
		Total:          132,
	})
	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageAndFail(errors.New("broker unavailable"))

	publisher := NewKafkaPublisherFromProducer(producer, "restobill.orders", logging.Discard())
	err := publisher.Publish(context.Background(), OrderEvent{Type: OrderStatusChanged, OrderID: "o1"})
	assert.EqualError(t, err, "broker unavailable")
	assert.NoError(t, publisher.Close())
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	assert.NoError(t, p.Publish(context.Background(), OrderEvent{Type: OrderCreated}))
	assert.NoError(t, p.Close())
}
