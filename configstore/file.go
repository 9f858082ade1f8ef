/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package configstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/protocol"
)

// FileTriggerConfigLoader reads the full set of TriggerConfigurations from a
// single JSON file (a JSON array) on every call to Load, re-reading the file
// each time so external edits take effect on the Trigger Stage's next
// refresh cycle.
type FileTriggerConfigLoader struct {
	Path string
}

// NewFileTriggerConfigLoader targets the JSON file at path.
func NewFileTriggerConfigLoader(path string) *FileTriggerConfigLoader {
	return &FileTriggerConfigLoader{Path: path}
}

// Load returns every TriggerConfiguration currently in the file.
func (l *FileTriggerConfigLoader) Load() ([]protocol.TriggerConfiguration, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read trigger config file %s: %v", errs.ErrTransient, l.Path, err)
	}
	var cfgs []protocol.TriggerConfiguration
	if err := json.Unmarshal(data, &cfgs); err != nil {
		return nil, fmt.Errorf("%w: parse trigger config file %s: %v", errs.ErrConfiguration, l.Path, err)
	}
	return cfgs, nil
}

// FileActionConfigReader reads the full set of Rules from a single JSON file
// and answers per-RuleID lookups, grounded on the original's
// FileActionConfigReader.
type FileActionConfigReader struct {
	Path string
}

// NewFileActionConfigReader targets the JSON file at path.
func NewFileActionConfigReader(path string) *FileActionConfigReader {
	return &FileActionConfigReader{Path: path}
}

// Rule returns the Rule with the given id, or ErrRuleNotFound.
func (r *FileActionConfigReader) Rule(id protocol.RuleID) (protocol.Rule, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return protocol.Rule{}, fmt.Errorf("%w: read rule config file %s: %v", errs.ErrTransient, r.Path, err)
	}
	var rules []protocol.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return protocol.Rule{}, fmt.Errorf("%w: parse rule config file %s: %v", errs.ErrConfiguration, r.Path, err)
	}
	for _, rule := range rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return protocol.Rule{}, fmt.Errorf("%w: %s", errs.ErrRuleNotFound, id)
}

// EmbeddedTriggerConfigLoader serves TriggerConfigurations out of an
// EmbeddedStore rather than a flat file.
type EmbeddedTriggerConfigLoader struct {
	store *EntityStore[protocol.TriggerConfiguration]
}

// NewEmbeddedTriggerConfigLoader opens the "trigger_configuration" bucket of store.
func NewEmbeddedTriggerConfigLoader(store *EmbeddedStore) *EmbeddedTriggerConfigLoader {
	return &EmbeddedTriggerConfigLoader{store: Entity[protocol.TriggerConfiguration](store, "trigger_configuration")}
}

// Load returns every TriggerConfiguration currently in the store.
func (l *EmbeddedTriggerConfigLoader) Load() ([]protocol.TriggerConfiguration, error) {
	return l.store.ListAll()
}
