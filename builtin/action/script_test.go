package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	buaction "github.com/bittoy/automaton/builtin/action"
	"github.com/bittoy/automaton/protocol"
)

func TestScriptActionRunsScript(t *testing.T) {
	a := buaction.NewScriptAction()
	manifest := protocol.ActionManifest{
		Rule:       "r1",
		ActionType: "script_exec",
		Data:       `{"script":"var x = data.count + 1;","data":{"count":41}}`,
	}
	assert.NoError(t, a.Execute(manifest))
}

func TestScriptActionFailsOnThrow(t *testing.T) {
	a := buaction.NewScriptAction()
	manifest := protocol.ActionManifest{
		Rule:       "r1",
		ActionType: "script_exec",
		Data:       `{"script":"throw new Error('boom');","data":{}}`,
	}
	assert.Error(t, a.Execute(manifest))
}

func TestScriptActionFailsOnMalformedManifestData(t *testing.T) {
	a := buaction.NewScriptAction()
	manifest := protocol.ActionManifest{Rule: "r1", ActionType: "script_exec", Data: "not json"}
	assert.Error(t, a.Execute(manifest))
}
