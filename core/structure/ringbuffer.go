package structure

import (
	"sync/atomic"
)

// RingBuffer is a fixed-size, thread-safe ring buffer.
type RingBuffer[T any] struct {
	buffer   []T
	capacity uint64
	writePos atomic.Uint64
	readPos  atomic.Uint64
}

func NewRingBuffer[T any](size int) *RingBuffer[T] {
	if size <= 0 {
		size = 1 // Prevent zero-size buffer
	}
	return &RingBuffer[T]{
		buffer:   make([]T, size),
		capacity: uint64(size),
	}
}

func (r *RingBuffer[T]) Push(entry T) bool {
	for {
		read := r.readPos.Load()
		write := r.writePos.Load()

		if write-read >= r.capacity { // Buffer full
			return false
		}

		nextWrite := write + 1
		if r.writePos.CompareAndSwap(write, nextWrite) {
			r.buffer[write%r.capacity] = entry
			return true
		}
	}
}

// PushEvict pushes the entry, dropping the oldest one when the buffer is full.
func (r *RingBuffer[T]) PushEvict(entry T) {
	for !r.Push(entry) {
		r.Pop()
	}
}

func (r *RingBuffer[T]) Pop() (T, bool) {
	var zero T
	for {
		read := r.readPos.Load()
		write := r.writePos.Load()

		if read >= write { // Buffer empty
			return zero, false
		}

		nextRead := read + 1
		if r.readPos.CompareAndSwap(read, nextRead) {
			entry := r.buffer[read%r.capacity]
			return entry, true
		}
	}
}

// Snapshot drains nothing; it copies the currently readable entries in FIFO order.
func (r *RingBuffer[T]) Snapshot() []T {
	read := r.readPos.Load()
	write := r.writePos.Load()
	if write <= read {
		return nil
	}
	out := make([]T, 0, write-read)
	for i := read; i < write; i++ {
		out = append(out, r.buffer[i%r.capacity])
	}
	return out
}

func (r *RingBuffer[T]) Len() uint64 {
	read := r.readPos.Load()
	write := r.writePos.Load()
	if write < read {
		return 0
	}
	return write - read
}
