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

// Package action holds the built-in, compiled-in action plugins, grounded
// on the original's plugin-builtins/notify.
package action

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/bittoy/automaton/protocol"
)

// NotifyAction shells out to notify-send, exactly as the original's
// NotifyPlugin did via std::process::Command.
type NotifyAction struct{}

func NewNotifyAction() *NotifyAction { return &NotifyAction{} }

func (a *NotifyAction) TypeName() string { return "notify" }

type notifyPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (a *NotifyAction) Execute(manifest protocol.ActionManifest) error {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(manifest.Data), &payload); err != nil {
		return fmt.Errorf("notify: decode manifest data: %w", err)
	}

	cmd := exec.Command("notify-send", payload.Title, payload.Body)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify: notify-send: %w", err)
	}
	return nil
}

// NotifyMockAction records every manifest it's asked to execute instead of
// shelling out, standing in for end-to-end tests that need to assert a
// notification fired without a real desktop notification daemon present.
type NotifyMockAction struct {
	mu       sync.Mutex
	Executed []protocol.ActionManifest
}

func NewNotifyMockAction() *NotifyMockAction { return &NotifyMockAction{} }

func (a *NotifyMockAction) TypeName() string { return "notify_mock" }

func (a *NotifyMockAction) Execute(manifest protocol.ActionManifest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Executed = append(a.Executed, manifest)
	return nil
}

// Calls returns a snapshot of every manifest executed so far.
func (a *NotifyMockAction) Calls() []protocol.ActionManifest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]protocol.ActionManifest, len(a.Executed))
	copy(out, a.Executed)
	return out
}
