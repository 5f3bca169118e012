package queue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	consumers = 4
	rounds    = 100
)

func TestQueueDrainsFiniteProducer(t *testing.T) {
	producer := newMockedProducer(rounds)
	consumer := newMockedConsumer()
	q := NewQueue(
		"test",
		func() (Producer[string], error) {
			return producer, nil
		},
		func() (Consumer[string], error) {
			return consumer, nil
		},
	)
	q.SetName("mockedQueue")
	q.SetNumConsumer(consumers)
	q.SetNumProducer(1)

	// Start blocks until the producer is exhausted and the channel drained.
	q.Start()
	assert.Equal(t, int32(rounds), atomic.LoadInt32(&consumer.count))
}

func TestQueueStop(t *testing.T) {
	producer := newMockedProducer(1 << 30)
	consumer := newMockedConsumer()
	q := NewQueue(
		"endless",
		func() (Producer[string], error) {
			return producer, nil
		},
		func() (Consumer[string], error) {
			return consumer, nil
		},
	)
	q.SetNumConsumer(consumers)
	q.SetNumProducer(1)

	go func() {
		for atomic.LoadInt32(&consumer.count) < rounds {
			time.Sleep(time.Millisecond)
		}
		q.Stop()
	}()
	q.Start()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&consumer.count), int32(rounds))
}

type (
	mockedProducer struct {
		total int32
		count int32
	}

	mockedConsumer struct {
		count int32
	}
)

func newMockedProducer(total int32) *mockedProducer {
	return &mockedProducer{total: total}
}

func newMockedConsumer() *mockedConsumer {
	return &mockedConsumer{}
}

func (p *mockedProducer) Produce() (string, bool) {
	if atomic.AddInt32(&p.count, 1) <= p.total {
		return "item", true
	}
	return "", false
}

func (c *mockedConsumer) Consume(string) error {
	atomic.AddInt32(&c.count, 1)
	return nil
}
