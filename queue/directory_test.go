package queue_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
)

func TestDirectoryQueueFileNaming(t *testing.T) {
	dir := t.TempDir()
	q, err := queue.NewDirectoryQueue(dir, "trigger")
	require.NoError(t, err)

	w := queue.NewDirectoryWriter[protocol.Trigger](q)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Publish(ctx, protocol.Trigger{TriggerType: "x"}))
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "trigger_"+string(rune('0'+i))+".txt")
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected %s to exist", path)
	}
}

func TestDirectoryQueuePullAcksDeleteFile(t *testing.T) {
	dir := t.TempDir()
	q, err := queue.NewDirectoryQueue(dir, "action_manifest")
	require.NoError(t, err)

	w := queue.NewDirectoryWriter[protocol.ActionManifest](q)
	r := queue.NewDirectoryReader[protocol.ActionManifest](q)
	ctx := context.Background()

	manifest := protocol.ActionManifest{ActionType: "notify", Data: "{}"}
	require.NoError(t, w.Publish(ctx, manifest))

	msg, ok, err := r.Pull(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, manifest, msg.Body)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, msg.Ack())

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 0)

	// Double-ack is a no-op, not an error, and doesn't touch other files.
	require.NoError(t, msg.Ack())
}

func TestDirectoryQueueOrdersByCounter(t *testing.T) {
	dir := t.TempDir()
	q, err := queue.NewDirectoryQueue(dir, "trigger")
	require.NoError(t, err)

	w := queue.NewDirectoryWriter[protocol.Trigger](q)
	r := queue.NewDirectoryReader[protocol.Trigger](q)
	ctx := context.Background()

	require.NoError(t, w.Publish(ctx, protocol.Trigger{TriggerType: "first"}))
	require.NoError(t, w.Publish(ctx, protocol.Trigger{TriggerType: "second"}))

	msg1, ok, err := r.Pull(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", msg1.Body.TriggerType)
	require.NoError(t, msg1.Ack())

	msg2, ok, err := r.Pull(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", msg2.Body.TriggerType)
}

func TestDirectoryQueuePullEmptyReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	q, err := queue.NewDirectoryQueue(dir, "trigger")
	require.NoError(t, err)

	r := queue.NewDirectoryReader[protocol.Trigger](q)
	_, ok, err := r.Pull(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectoryQueuePoisonMessageStillAckable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trigger_0.txt"), []byte("not json"), 0o644))

	q, err := queue.NewDirectoryQueue(dir, "trigger")
	require.NoError(t, err)
	r := queue.NewDirectoryReader[protocol.Trigger](q)

	msg, ok, err := r.Pull(context.Background())
	require.Error(t, err)
	require.True(t, ok)
	require.NoError(t, msg.Ack())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}
