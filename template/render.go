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

// Package template implements the Template Renderer: Mustache-style
// {{field}} substitution of a trigger's top-level JSON fields into an
// action-config template string, grounded on the original's
// trigger-interpreter::templating::render_template (which used the
// handlebars crate for the same narrow substitution). Go's corpus has no
// single-source-of-truth templating dependency for a substitution need this
// small, so it is hand-rolled with regexp — see DESIGN.md.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render substitutes every {{field}} in tmpl with the stringified value of
// the top-level field named "field" in data. Unknown fields render as the
// empty string. Render is total: it always produces a string, never an error.
func Render(tmpl string, data json.RawMessage) string {
	var fields map[string]json.RawMessage
	// A non-object (or malformed) data payload simply yields no known
	// fields; every placeholder then renders empty rather than erroring.
	_ = json.Unmarshal(data, &fields)

	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		raw, ok := fields[name]
		if !ok {
			return ""
		}
		return stringify(raw)
	})
}

// stringify renders a JSON scalar/array/object as the text the original
// Handlebars-based renderer would have produced: quoted strings are
// unquoted, everything else uses its JSON text verbatim.
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return fmt.Sprint(string(raw))
}
