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

package node

import (
	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/pluginhost"
)

// buildOpts accumulates the result of applying a slice of Options.
type buildOpts struct {
	logger      logx.Logger
	extraBundle pluginhost.Bundle
}

// Option customizes a Node before it starts, following the standard
// functional-options pattern.
type Option func(*buildOpts)

// WithLogger overrides the default stderr logger for every stage the Node
// spawns.
func WithLogger(logger logx.Logger) Option {
	return func(o *buildOpts) { o.logger = logger }
}

// WithBuiltinPlugins registers an in-process plugin bundle (the compiled-in
// trigger/action plugins under builtin/) before any dynamic plugin_paths are
// loaded.
func WithBuiltinPlugins(b pluginhost.Bundle) Option {
	return func(o *buildOpts) {
		o.extraBundle.Actions = append(o.extraBundle.Actions, b.Actions...)
		o.extraBundle.Triggers = append(o.extraBundle.Triggers, b.Triggers...)
	}
}
