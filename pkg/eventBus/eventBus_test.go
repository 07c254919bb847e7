package eventBus

import (
	"context"
	"testing"

	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func Test_EventBus(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	t.Run("Publishes to subscribed consumers", func(t *testing.T) {
		eb := NewEventBus(l)
		consumer := &eventBusTypes.Consumer{
			Id:      "test",
			Context: context.Background(),
			Channel: make(chan *eventBusTypes.Event, 1),
		}
		eb.Subscribe(consumer)

		eb.Publish(&eventBusTypes.Event{
			Name: eventBusTypes.Event_TransactionParsed,
			Data: &eventBusTypes.TransactionParsedData{TxnHash: "hash1", Source: "api"},
		})

		event := <-consumer.Channel
		assert.Equal(t, eventBusTypes.Event_TransactionParsed, event.Name)
		assert.Equal(t, "hash1", event.Data.(*eventBusTypes.TransactionParsedData).TxnHash)
	})
	t.Run("Full channels do not block", func(t *testing.T) {
		eb := NewEventBus(l)
		consumer := &eventBusTypes.Consumer{Id: "full", Channel: make(chan *eventBusTypes.Event)}
		eb.Subscribe(consumer)
		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_TransactionParsed})
		assert.Len(t, consumer.Channel, 0)
	})
	t.Run("Unsubscribed consumers receive nothing", func(t *testing.T) {
		eb := NewEventBus(l)
		consumer := &eventBusTypes.Consumer{Id: "gone", Channel: make(chan *eventBusTypes.Event, 1)}
		eb.Subscribe(consumer)
		eb.Unsubscribe(consumer)
		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_TransactionParsed})
		assert.Len(t, consumer.Channel, 0)
	})
	t.Run("Unsubscribe only drops the given consumer", func(t *testing.T) {
		eb := NewEventBus(l)
		first := &eventBusTypes.Consumer{Id: "same", Channel: make(chan *eventBusTypes.Event, 1)}
		second := &eventBusTypes.Consumer{Id: "same", Channel: make(chan *eventBusTypes.Event, 1)}
		eb.Subscribe(first)
		eb.Subscribe(second)

		eb.Unsubscribe(second)
		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_TransactionParsed})
		assert.Len(t, first.Channel, 1)
		assert.Len(t, second.Channel, 0)

		eb.Unsubscribe(second)
		assert.Len(t, eb.consumers.GetAll(), 1)
	})
}
