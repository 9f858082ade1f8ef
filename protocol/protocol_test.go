package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/protocol"
)

func TestRuleRoundTrip(t *testing.T) {
	r := protocol.Rule{
		ID:              protocol.NewRuleID(),
		TriggerConfigID: "cfg-1",
		ActionType:      "notify",
		ActionConfig:    `{"title": "{{title}}"}`,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded protocol.Rule
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)
}

func TestTriggerRoundTrip(t *testing.T) {
	tr := protocol.Trigger{
		Rule:        protocol.NewRuleID(),
		TriggerType: "directory_watch",
		Data:        json.RawMessage(`{"file_name":"a.txt"}`),
	}

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var decoded protocol.Trigger
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tr.Rule, decoded.Rule)
	assert.Equal(t, tr.TriggerType, decoded.TriggerType)
	assert.JSONEq(t, string(tr.Data), string(decoded.Data))
}

func TestActionManifestRoundTrip(t *testing.T) {
	m := protocol.ActionManifest{
		Rule:       protocol.NewRuleID(),
		ActionType: "notify",
		Data:       `{"title":"hi","body":"there"}`,
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded protocol.ActionManifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m, decoded)
}

func TestNewRuleIDUnique(t *testing.T) {
	a := protocol.NewRuleID()
	b := protocol.NewRuleID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
