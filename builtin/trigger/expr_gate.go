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

package trigger

import (
	"encoding/json"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/bittoy/automaton/protocol"
)

// ExprGateTrigger evaluates a boolean expr-lang expression against a small
// JSON environment embedded in its own config on every pull, firing a
// Trigger whenever the expression evaluates true. This gives rule authors a
// generic "if this computed condition holds" trigger without a bespoke
// plugin per condition, supplementing the distillation with a capability
// the original's fixed builtin set didn't offer.
type ExprGateTrigger struct{}

func NewExprGateTrigger() *ExprGateTrigger { return &ExprGateTrigger{} }

func (t *ExprGateTrigger) TypeName() string { return "expr_gate" }

type exprGatePayload struct {
	Expression string         `json:"expr"`
	Env        map[string]any `json:"env"`
}

func (t *ExprGateTrigger) Pull(cfg protocol.TriggerConfiguration) ([]protocol.Trigger, error) {
	var payload exprGatePayload
	if err := json.Unmarshal(cfg.Data, &payload); err != nil {
		return nil, fmt.Errorf("expr_gate: decode config data: %w", err)
	}

	program, err := expr.Compile(payload.Expression, expr.Env(payload.Env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("expr_gate: compile expression %q: %w", payload.Expression, err)
	}

	result, err := expr.Run(program, payload.Env)
	if err != nil {
		return nil, fmt.Errorf("expr_gate: evaluate expression %q: %w", payload.Expression, err)
	}

	fire, _ := result.(bool)
	if !fire {
		return nil, nil
	}

	data, err := json.Marshal(payload.Env)
	if err != nil {
		return nil, fmt.Errorf("expr_gate: encode trigger data: %w", err)
	}

	return []protocol.Trigger{{
		Rule:        cfg.Rule,
		TriggerType: cfg.TriggerType,
		Data:        data,
	}}, nil
}
