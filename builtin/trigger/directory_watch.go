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

// Package trigger holds the built-in, compiled-in trigger plugins, grounded
// on the original's plugin-builtins/directory_watch and the rest of
// trigger-system::builtins.
package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bittoy/automaton/protocol"
)

// DirectoryWatcher polls a directory for files it has not seen before, on a
// per-rule basis. The first pull for a given rule only primes the seen-set
// (to avoid an initial flood of triggers for pre-existing files); later
// pulls emit one Trigger per newly-appeared file.
type DirectoryWatcher struct {
	mu        sync.Mutex
	seenFiles map[protocol.RuleID]map[string]struct{}
}

// NewDirectoryWatcher constructs an empty watcher.
func NewDirectoryWatcher() *DirectoryWatcher {
	return &DirectoryWatcher{seenFiles: make(map[protocol.RuleID]map[string]struct{})}
}

func (w *DirectoryWatcher) TypeName() string { return "directory_watch" }

type directoryWatchPayload struct {
	Directory string `json:"directory"`
}

type directoryTriggerData struct {
	FileName string `json:"file_name"`
}

func (w *DirectoryWatcher) Pull(cfg protocol.TriggerConfiguration) ([]protocol.Trigger, error) {
	var payload directoryWatchPayload
	if err := json.Unmarshal(cfg.Data, &payload); err != nil {
		return nil, fmt.Errorf("directory_watch: decode config data: %w", err)
	}

	entries, err := os.ReadDir(payload.Directory)
	if err != nil {
		return nil, fmt.Errorf("directory_watch: read dir %s: %w", payload.Directory, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen, ok := w.seenFiles[cfg.Rule]
	if !ok {
		seen = make(map[string]struct{}, len(entries))
		for _, e := range entries {
			seen[e.Name()] = struct{}{}
		}
		w.seenFiles[cfg.Rule] = seen
		return nil, nil
	}

	var triggers []protocol.Trigger
	for _, e := range entries {
		if _, already := seen[e.Name()]; already {
			continue
		}
		seen[e.Name()] = struct{}{}

		data, err := json.Marshal(directoryTriggerData{FileName: e.Name()})
		if err != nil {
			return triggers, fmt.Errorf("directory_watch: encode trigger data: %w", err)
		}
		triggers = append(triggers, protocol.Trigger{
			Rule:        cfg.Rule,
			TriggerType: cfg.TriggerType,
			Data:        data,
		})
	}
	return triggers, nil
}
