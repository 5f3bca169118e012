package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferPushPop(t *testing.T) {
	rb := NewRingBuffer[int](4)
	for i := 0; i < 4; i++ {
		assert.True(t, rb.Push(i))
	}
	assert.False(t, rb.Push(4), "push into a full buffer must fail")
	assert.Equal(t, uint64(4), rb.Len())

	v, ok := rb.Pop()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestRingBufferPushEvict(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 0; i < 5; i++ {
		rb.PushEvict(i)
	}
	assert.Equal(t, []int{2, 3, 4}, rb.Snapshot())
}

func TestRingBufferSnapshotKeepsEntries(t *testing.T) {
	rb := NewRingBuffer[string](8)
	rb.Push("a")
	rb.Push("b")

	assert.Equal(t, []string{"a", "b"}, rb.Snapshot())
	assert.Equal(t, uint64(2), rb.Len(), "snapshot must not drain")

	_, ok := rb.Pop()
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, rb.Snapshot())
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer[int](2)
	_, ok := rb.Pop()
	assert.False(t, ok)
	assert.Nil(t, rb.Snapshot())
}
