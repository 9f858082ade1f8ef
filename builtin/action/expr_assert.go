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

	"github.com/expr-lang/expr"

	"github.com/bittoy/automaton/protocol"
)

// ExprAssertAction evaluates a boolean expr-lang expression over the
// manifest's rendered data and fails the action (which still acks: see the
// Executor Stage's no-retry error handling) when the expression is false,
// giving rule authors a lightweight guard clause on the action side without
// writing a dedicated plugin.
type ExprAssertAction struct{}

func NewExprAssertAction() *ExprAssertAction { return &ExprAssertAction{} }

func (a *ExprAssertAction) TypeName() string { return "expr_assert" }

type exprAssertPayload struct {
	Expression string         `json:"expr"`
	Env        map[string]any `json:"env"`
}

func (a *ExprAssertAction) Execute(manifest protocol.ActionManifest) error {
	var payload exprAssertPayload
	if err := json.Unmarshal([]byte(manifest.Data), &payload); err != nil {
		return fmt.Errorf("expr_assert: decode manifest data: %w", err)
	}

	program, err := expr.Compile(payload.Expression, expr.Env(payload.Env), expr.AsBool())
	if err != nil {
		return fmt.Errorf("expr_assert: compile expression %q: %w", payload.Expression, err)
	}

	result, err := expr.Run(program, payload.Env)
	if err != nil {
		return fmt.Errorf("expr_assert: evaluate expression %q: %w", payload.Expression, err)
	}

	if ok, _ := result.(bool); !ok {
		return fmt.Errorf("expr_assert: expression %q was false", payload.Expression)
	}
	return nil
}
