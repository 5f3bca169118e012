package queue

import (
	"runtime"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
	"github.com/omerfarukorc/ulog-analysis/core/rescue"
	"github.com/omerfarukorc/ulog-analysis/core/threading"
)

// Queue is the structure for a producer/consumer task queue.
type Queue[T any] struct {
	name                 string
	producerFactory      ProducerFactory[T]
	producerRoutineGroup *threading.RoutineGroup
	consumerFactory      ConsumeFactory[T]
	consumerRoutineGroup *threading.RoutineGroup
	producerCount        int
	consumerCount        int
	channel              chan T
	quit                 chan struct{}
}

// NewQueue returns a new queue.
func NewQueue[T any](name string, producerFactory ProducerFactory[T], consumerFactory ConsumeFactory[T]) *Queue[T] {
	q := &Queue[T]{
		producerFactory:      producerFactory,
		producerRoutineGroup: threading.NewRoutineGroup(),
		consumerFactory:      consumerFactory,
		consumerRoutineGroup: threading.NewRoutineGroup(),
		producerCount:        runtime.NumCPU(),
		consumerCount:        runtime.NumCPU() << 1,
		channel:              make(chan T),
		quit:                 make(chan struct{}),
	}

	q.SetName(name)
	return q
}

// SetName sets the name of the task queue.
func (q *Queue[T]) SetName(name string) {
	q.name = name
}

// SetNumProducer sets the number of producers.
func (q *Queue[T]) SetNumProducer(count int) {
	q.producerCount = count
}

// SetNumConsumer sets the number of consumers.
func (q *Queue[T]) SetNumConsumer(count int) {
	q.consumerCount = count
}

// Start starts the task queue and blocks until all producers and consumers are done.
func (q *Queue[T]) Start() {
	q.startProducers(q.producerCount)
	q.startConsumers(q.consumerCount)

	q.producerRoutineGroup.Wait()
	close(q.channel)
	q.consumerRoutineGroup.Wait()
}

// Stop stops the task queue.
func (q *Queue[T]) Stop() {
	close(q.quit)
}

func (q *Queue[T]) produceOne(producer Producer[T]) (T, bool) {
	defer rescue.Recover()

	return producer.Produce()
}

func (q *Queue[T]) produce() {
	var producer Producer[T]

	for {
		var err error
		if producer, err = q.producerFactory(); err != nil {
			logger.Error("queue %s: error occurred while creating producer: %v", q.name, err)
			return
		} else {
			break
		}
	}

	for {
		select {
		case <-q.quit:
			logger.Debug("queue %s: quitting producer", q.name)
			return
		default:
			if v, ok := q.produceOne(producer); ok {
				q.channel <- v
			} else {
				return
			}
		}
	}
}

func (q *Queue[T]) startProducers(number int) {
	for i := 0; i < number; i++ {
		q.producerRoutineGroup.Run(func() {
			q.produce()
		})
	}
}

func (q *Queue[T]) consumeOne(consumer Consumer[T], task T) {
	threading.RunSafe(func() {
		if err := consumer.Consume(task); err != nil {
			logger.Error("queue %s: error occurred while consuming: %v", q.name, err)
		}
	})
}

func (q *Queue[T]) consume() {
	var consumer Consumer[T]

	for {
		var err error
		if consumer, err = q.consumerFactory(); err != nil {
			logger.Error("queue %s: error occurred while creating consumer: %v", q.name, err)
			return
		} else {
			break
		}
	}

	for message := range q.channel {
		q.consumeOne(consumer, message)
	}
	logger.Debug("queue %s: task channel was closed, quitting consumer", q.name)
}

func (q *Queue[T]) startConsumers(number int) {
	for i := 0; i < number; i++ {
		q.consumerRoutineGroup.RunSafe(func() {
			q.consume()
		})
	}
}
