package configstore_test

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittoy/automaton/configstore"
	"github.com/bittoy/automaton/protocol"
)

func TestEmbeddedStoreInsertAddressIsContentSHA1(t *testing.T) {
	store, err := configstore.OpenEmbeddedStore(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer store.Close()

	rules := configstore.Entity[protocol.Rule](store, "rule")
	rule := protocol.Rule{ActionType: "notify", ActionConfig: "{}"}

	id, err := rules.Insert(rule)
	require.NoError(t, err)

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	sum := sha1.Sum(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), id)
}

func TestEmbeddedStoreReinsertIdenticalContentIsIdempotent(t *testing.T) {
	store, err := configstore.OpenEmbeddedStore(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer store.Close()

	rules := configstore.Entity[protocol.Rule](store, "rule")
	rule := protocol.Rule{ActionType: "notify", ActionConfig: "{}"}

	id1, err := rules.Insert(rule)
	require.NoError(t, err)
	id2, err := rules.Insert(rule)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)

	all, err := rules.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmbeddedStoreGetAndListAll(t *testing.T) {
	store, err := configstore.OpenEmbeddedStore(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer store.Close()

	cfgs := configstore.Entity[protocol.TriggerConfiguration](store, "trigger_configuration")
	cfg := protocol.TriggerConfiguration{ID: "a", TriggerType: "directory_watch", Data: []byte(`{"directory":"/tmp"}`)}

	id, err := cfgs.Insert(cfg)
	require.NoError(t, err)

	fetched, found, err := cfgs.Get(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cfg.TriggerType, fetched.TriggerType)

	all, err := cfgs.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileActionConfigReaderRuleNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	data, err := json.Marshal([]protocol.Rule{{ID: "r1", ActionType: "notify"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r := configstore.NewFileActionConfigReader(path)
	rule, err := r.Rule("r1")
	require.NoError(t, err)
	assert.Equal(t, "notify", rule.ActionType)

	_, err = r.Rule("missing")
	require.Error(t, err)
}

func TestFileTriggerConfigLoaderLoadsAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triggers.json")
	data, err := json.Marshal([]protocol.TriggerConfiguration{
		{ID: "t1", TriggerType: "directory_watch"},
		{ID: "t2", TriggerType: "schedule"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	l := configstore.NewFileTriggerConfigLoader(path)
	cfgs, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, cfgs, 2)
}

