package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/node"
)

func TestLoadConfigurationParsesJSON(t *testing.T) {
	doc := []byte(`{
		"plugin_paths": ["/opt/plugins"],
		"systems": [
			{"type": "Trigger", "config_reader": {"type": "File", "file": "triggers.json"}, "queue_writer": {"type": "InMemory", "topic": "triggers"}},
			{"type": "Interpreter", "config_reader": {"type": "File", "file": "rules.json"}, "queue_reader": {"type": "InMemory", "topic": "triggers"}, "queue_writer": {"type": "InMemory", "topic": "manifests"}},
			{"type": "Executor", "queue_reader": {"type": "InMemory", "topic": "manifests"}}
		]
	}`)

	cfg, err := node.LoadConfiguration(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/plugins"}, cfg.PluginPaths)
	require.Len(t, cfg.Systems, 3)

	require.NotNil(t, cfg.Systems[0].Trigger)
	assert.Equal(t, "File", cfg.Systems[0].Trigger.ConfigReader.Type)
	assert.Equal(t, "InMemory", cfg.Systems[0].Trigger.QueueWriter.Type)

	require.NotNil(t, cfg.Systems[1].Interpreter)
	require.NotNil(t, cfg.Systems[2].Executor)
}

func TestLoadConfigurationParsesYAML(t *testing.T) {
	doc := []byte(`
plugin_paths: []
systems:
  - type: Executor
    queue_reader:
      type: Directory
      path: /tmp/manifests
`)
	cfg, err := node.LoadConfiguration(doc)
	require.NoError(t, err)
	require.Len(t, cfg.Systems, 1)
	require.NotNil(t, cfg.Systems[0].Executor)
	assert.Equal(t, "Directory", cfg.Systems[0].Executor.QueueReader.Type)
	assert.Equal(t, "/tmp/manifests", cfg.Systems[0].Executor.QueueReader.Path)
}

func TestLoadConfigurationRejectsUnrecognizedSystemType(t *testing.T) {
	doc := []byte(`{"systems": [{"type": "Bogus"}]}`)
	_, err := node.LoadConfiguration(doc)
	require.Error(t, err)
}

func TestLoadConfigurationRejectsUnrecognizedQueueVariant(t *testing.T) {
	doc := []byte(`{"systems": [{"type": "Executor", "queue_reader": {"type": "Carrier Pigeon"}}]}`)
	_, err := node.LoadConfiguration(doc)
	require.Error(t, err)
}

func TestLoadConfigurationRejectsGarbage(t *testing.T) {
	_, err := node.LoadConfiguration([]byte("not json, not yaml: [}"))
	require.Error(t, err)
}
