package trigger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	butrigger "github.com/bittoy/automaton/builtin/trigger"
	"github.com/bittoy/automaton/protocol"
)

func TestExprGateFiresWhenExpressionIsTrue(t *testing.T) {
	g := butrigger.NewExprGateTrigger()
	cfg := protocol.TriggerConfiguration{
		Rule: "r1", TriggerType: "expr_gate",
		Data: json.RawMessage(`{"expr":"temperature > 30","env":{"temperature":35}}`),
	}
	triggers, err := g.Pull(cfg)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, protocol.RuleID("r1"), triggers[0].Rule)
}

func TestExprGateDoesNotFireWhenExpressionIsFalse(t *testing.T) {
	g := butrigger.NewExprGateTrigger()
	cfg := protocol.TriggerConfiguration{
		Rule: "r1", TriggerType: "expr_gate",
		Data: json.RawMessage(`{"expr":"temperature > 30","env":{"temperature":10}}`),
	}
	triggers, err := g.Pull(cfg)
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestExprGateRejectsMalformedExpression(t *testing.T) {
	g := butrigger.NewExprGateTrigger()
	cfg := protocol.TriggerConfiguration{
		Rule: "r1", TriggerType: "expr_gate",
		Data: json.RawMessage(`{"expr":"(( not valid","env":{}}`),
	}
	_, err := g.Pull(cfg)
	assert.Error(t, err)
}
