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

package action

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	"github.com/bittoy/automaton/protocol"
)

// ScriptAction runs a user-supplied JavaScript body against the manifest's
// rendered data, via goja. The script is handed the parsed manifest data as
// the global "data"; its completion value and any globals it sets are
// discarded. A script that throws fails the action.
type ScriptAction struct{}

func NewScriptAction() *ScriptAction { return &ScriptAction{} }

func (a *ScriptAction) TypeName() string { return "script_exec" }

type scriptPayload struct {
	Script string         `json:"script"`
	Data   map[string]any `json:"data"`
}

func (a *ScriptAction) Execute(manifest protocol.ActionManifest) error {
	var payload scriptPayload
	if err := json.Unmarshal([]byte(manifest.Data), &payload); err != nil {
		return fmt.Errorf("script_exec: decode manifest data: %w", err)
	}

	vm := goja.New()
	if err := vm.Set("data", payload.Data); err != nil {
		return fmt.Errorf("script_exec: bind data global: %w", err)
	}

	if _, err := vm.RunString(payload.Script); err != nil {
		return fmt.Errorf("script_exec: run script: %w", err)
	}
	return nil
}
