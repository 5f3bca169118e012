package queue

type (
	// A Producer interface represents a producer that produces messages.
	// Produce reports false once the producer has nothing left to emit.
	Producer[T any] interface {
		Produce() (T, bool)
	}

	// A ProducerFactory is a factory that creates a producer.
	ProducerFactory[T any] func() (Producer[T], error)
)
