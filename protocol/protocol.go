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

// Package protocol defines the wire types shared by every stage of the
// automation engine: Rule, TriggerConfiguration, Trigger and ActionManifest.
package protocol

import (
	"encoding/json"

	"github.com/gofrs/uuid/v5"
)

// RuleID is a string identifier, wide enough to carry either an integer or
// a string rule identifier from any upstream source.
type RuleID string

// Rule binds a trigger configuration to a parameterized action.
type Rule struct {
	ID              RuleID `json:"id"`
	TriggerConfigID string `json:"trigger_config_id"`
	ActionType      string `json:"action_type"`
	// ActionConfig is a template string (JSON body with {{field}} placeholders).
	ActionConfig string `json:"action_config"`
}

// TriggerConfiguration tells a trigger plugin what to watch.
type TriggerConfiguration struct {
	ID          string          `json:"id"`
	Rule        RuleID          `json:"rule"`
	TriggerType string          `json:"trigger_type"`
	Data        json.RawMessage `json:"data"`
}

// Trigger is an event emitted by a trigger plugin.
type Trigger struct {
	Rule        RuleID          `json:"rule"`
	TriggerType string          `json:"trigger_type"`
	Data        json.RawMessage `json:"data"`
}

// ActionManifest is a ready-to-execute action record after template rendering.
type ActionManifest struct {
	Rule       RuleID `json:"rule"`
	ActionType string `json:"action_type"`
	Data       string `json:"data"`
}

// NewRuleID mints a fresh, unique rule identifier. The administrative surface
// that issues Rules is out of this engine's scope, but every in-process
// caller (tests, the rule-admin helper) needs some collision-free source.
func NewRuleID() RuleID {
	id, err := uuid.NewV7()
	if err != nil {
		// Entropy exhaustion only; fall back to the nil UUID's string form
		// rather than panicking a library function.
		return RuleID(uuid.Nil.String())
	}
	return RuleID(id.String())
}
