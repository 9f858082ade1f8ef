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

// Package pluginhost implements the Plugin Host: registration and
// dynamic loading of Trigger/Action plugins, grounded on the original's
// plugin-core (trait definitions + export! panic barrier) and plugin-host
// (PluginHandle/PluginHost) crates. Dynamic loading uses the standard
// library's plugin package as the idiomatic Go analog of libloading/dlopen.
package pluginhost

import (
	"github.com/bittoy/automaton/protocol"
)

// ActionPlugin executes a rendered ActionManifest.
type ActionPlugin interface {
	TypeName() string
	Execute(manifest protocol.ActionManifest) error
}

// TriggerPlugin polls an external source for new Triggers.
type TriggerPlugin interface {
	TypeName() string
	Pull(cfg protocol.TriggerConfiguration) ([]protocol.Trigger, error)
}

// InitSymbol is the exported symbol name a dynamically-loaded plugin must
// provide: a func() Bundle, matching the original's PLUGIN_INIT_SYMBOL
// ("init_plugin").
const InitSymbol = "InitPlugin"

// Bundle groups the plugins contributed by a single plugin module.
type Bundle struct {
	Actions  []ActionPlugin
	Triggers []TriggerPlugin
}
