package interpreter_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/interpreter"
	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
)

type fakeRuleReader struct {
	rules map[protocol.RuleID]protocol.Rule
}

func (f fakeRuleReader) Rule(id protocol.RuleID) (protocol.Rule, error) {
	r, ok := f.rules[id]
	if !ok {
		return protocol.Rule{}, assert.AnError
	}
	return r, nil
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

// TestInterpreterJoinsRuleAndRenders verifies that a trigger is joined with
// its rule and that the rendered manifest, with the rule's action type, is
// published downstream.
func TestInterpreterJoinsRuleAndRenders(t *testing.T) {
	triggerQ := queue.NewMemoryQueue()
	manifestQ := queue.NewMemoryQueue()

	ruleID := protocol.RuleID("rule-1")
	rules := fakeRuleReader{rules: map[protocol.RuleID]protocol.Rule{
		ruleID: {ID: ruleID, ActionType: "notify", ActionConfig: `{"title":"{{file_name}}"}`},
	}}

	stage := interpreter.Start(interpreter.Config{
		TriggerReader:  queue.NewMemoryReader[protocol.Trigger](triggerQ),
		RuleReader:     rules,
		ManifestWriter: queue.NewMemoryWriter[protocol.ActionManifest](manifestQ),
	})
	defer stage.Stop()

	w := queue.NewMemoryWriter[protocol.Trigger](triggerQ)
	require.NoError(t, w.Publish(context.Background(), protocol.Trigger{
		Rule:        ruleID,
		TriggerType: "directory_watch",
		Data:        json.RawMessage(`{"file_name":"a.txt"}`),
	}))

	r := queue.NewMemoryReader[protocol.ActionManifest](manifestQ)
	var msg queue.Message[protocol.ActionManifest]
	var ok bool
	waitForCondition(t, 2*time.Second, func() bool {
		m, found, err := r.Pull(context.Background())
		if err == nil && found {
			msg, ok = m, found
			return true
		}
		return false
	})
	require.True(t, ok)
	assert.Equal(t, `{"title":"a.txt"}`, msg.Body.Data)
	assert.Equal(t, "notify", msg.Body.ActionType)
}

// TestInterpreterRuleNotFoundProducesNoManifest asserts that when the rule
// lookup fails, no manifest is produced. We assert this indirectly: the
// manifest queue never receives a manifest for the unknown rule.
func TestInterpreterRuleNotFoundProducesNoManifest(t *testing.T) {
	triggerQ := queue.NewMemoryQueue()
	manifestQ := queue.NewMemoryQueue()

	rules := fakeRuleReader{rules: map[protocol.RuleID]protocol.Rule{}}

	stage := interpreter.Start(interpreter.Config{
		TriggerReader:  queue.NewMemoryReader[protocol.Trigger](triggerQ),
		RuleReader:     rules,
		ManifestWriter: queue.NewMemoryWriter[protocol.ActionManifest](manifestQ),
	})
	defer stage.Stop()

	w := queue.NewMemoryWriter[protocol.Trigger](triggerQ)
	require.NoError(t, w.Publish(context.Background(), protocol.Trigger{
		Rule:        protocol.RuleID("unknown"),
		TriggerType: "directory_watch",
		Data:        json.RawMessage(`{}`),
	}))

	time.Sleep(200 * time.Millisecond)

	r := queue.NewMemoryReader[protocol.ActionManifest](manifestQ)
	_, ok, err := r.Pull(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInterpreterStopTerminatesPromptly(t *testing.T) {
	triggerQ := queue.NewMemoryQueue()
	manifestQ := queue.NewMemoryQueue()

	stage := interpreter.Start(interpreter.Config{
		TriggerReader:  queue.NewMemoryReader[protocol.Trigger](triggerQ),
		RuleReader:     fakeRuleReader{rules: map[protocol.RuleID]protocol.Rule{}},
		ManifestWriter: queue.NewMemoryWriter[protocol.ActionManifest](manifestQ),
	})

	done := make(chan struct{})
	go func() {
		stage.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not terminate promptly")
	}
}
