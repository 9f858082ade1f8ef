package queue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/queue"
)

type person struct {
	FirstName string `json:"first_name"`
	Age       int    `json:"age"`
}

func TestMemoryQueuePublishPull(t *testing.T) {
	q := queue.NewMemoryQueue()
	w := queue.NewMemoryWriter[person](q)
	r := queue.NewMemoryReader[person](q)

	ctx := context.Background()
	require.NoError(t, w.Publish(ctx, person{FirstName: "John", Age: 18}))

	msg, ok, err := r.Pull(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, person{FirstName: "John", Age: 18}, msg.Body)
	require.NoError(t, msg.Ack())
}

func TestMemoryQueuePullEmpty(t *testing.T) {
	q := queue.NewMemoryQueue()
	r := queue.NewMemoryReader[person](q)

	_, ok, err := r.Pull(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryQueueFIFO(t *testing.T) {
	q := queue.NewMemoryQueue()
	w := queue.NewMemoryWriter[int](q)
	r := queue.NewMemoryReader[int](q)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Publish(ctx, i))
	}
	for i := 0; i < 5; i++ {
		msg, ok, err := r.Pull(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, i, msg.Body)
	}
}

// TestMemoryQueueSharedAcrossWrappers asserts that a writer and a reader
// constructed separately over the same backing queue share its state.
func TestMemoryQueueSharedAcrossWrappers(t *testing.T) {
	q := queue.NewMemoryQueue()

	w := queue.NewMemoryWriter[string](q)
	require.NoError(t, w.Publish(context.Background(), "hello"))

	r := queue.NewMemoryReader[string](q)
	msg, ok, err := r.Pull(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Body)
}
