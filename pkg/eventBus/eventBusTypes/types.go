// Package eventBusTypes defines the types and interfaces used by the eventBus package.
package eventBusTypes

import (
	"context"
	"sync"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
)

type EventName string

func (en *EventName) String() string {
	return string(*en)
}

var (
	// Event_TransactionParsed is emitted once the action list of a transaction is built.
	Event_TransactionParsed EventName = "transaction_parsed"
)

type Event struct {
	Name EventName
	Data any
}

type ConsumerId string

// Consumer receives events on Channel until it unsubscribes.
type Consumer struct {
	Id      ConsumerId
	Context context.Context
	Channel chan *Event
}

// ConsumerList is a mutex guarded list of consumers.
type ConsumerList struct {
	mu        sync.Mutex
	consumers []*Consumer
}

func NewConsumerList() *ConsumerList {
	return &ConsumerList{
		consumers: make([]*Consumer, 0),
	}
}

func (cl *ConsumerList) Add(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = append(cl.consumers, consumer)
}

// Remove drops consumer. Consumers are matched by identity, not Id.
func (cl *ConsumerList) Remove(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for i, c := range cl.consumers {
		if c == consumer {
			cl.consumers = append(cl.consumers[:i], cl.consumers[i+1:]...)
			break
		}
	}
}

// GetAll returns a snapshot of the current consumers.
func (cl *ConsumerList) GetAll() []*Consumer {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]*Consumer, len(cl.consumers))
	copy(out, cl.consumers)
	return out
}

type IEventBus interface {
	Subscribe(consumer *Consumer)
	Unsubscribe(consumer *Consumer)
	Publish(event *Event)
}

// TransactionParsedData is the payload of Event_TransactionParsed.
type TransactionParsedData struct {
	TxnHash     string
	Source      string
	BlockHeight uint64
	Actions     []nearTypes.ParsedAction
}
