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

package pluginhost

import (
	"fmt"
	"plugin"
	"sync"

	"github.com/bittoy/automaton/errs"
)

// handle pairs a loaded Bundle with the path it came from, mirroring the
// original's PluginHandle { plugin, library, path }. Go has no explicit
// "unload a shared library" operation, so there is no library field to close.
type handle struct {
	path   string
	bundle Bundle
}

// Host owns every plugin loaded into the process, in-memory or dynamic, and
// answers type-name lookups for the Trigger and Executor stages.
type Host struct {
	mu      sync.RWMutex
	handles []handle

	actions  map[string]ActionPlugin
	triggers map[string]TriggerPlugin
}

// New returns an empty plugin host.
func New() *Host {
	return &Host{
		actions:  make(map[string]ActionPlugin),
		triggers: make(map[string]TriggerPlugin),
	}
}

// AddBundle registers an in-process Bundle (built-in plugins compiled
// directly into the binary) under the given source label.
func (h *Host) AddBundle(label string, b Bundle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handles = append(h.handles, handle{path: label, bundle: b})
	for _, a := range b.Actions {
		h.actions[a.TypeName()] = a
	}
	for _, t := range b.Triggers {
		h.triggers[t.TypeName()] = t
	}
}

// LoadPath dynamically loads a Go plugin (.so) from libraryPath and
// registers everything its InitPlugin() returns. A panic inside InitPlugin
// is recovered and turned into an error, mirroring the original's
// catch_unwind panic barrier around init_plugin.
func (h *Host) LoadPath(libraryPath string) (bundle Bundle, err error) {
	lib, openErr := plugin.Open(libraryPath)
	if openErr != nil {
		return Bundle{}, fmt.Errorf("%w: open plugin %s: %v", errs.ErrFatalLoader, libraryPath, openErr)
	}

	sym, lookupErr := lib.Lookup(InitSymbol)
	if lookupErr != nil {
		return Bundle{}, fmt.Errorf("%w: missing symbol %s in %s: %v", errs.ErrFatalLoader, InitSymbol, libraryPath, lookupErr)
	}

	initFn, ok := sym.(func() Bundle)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: symbol %s in %s has unexpected signature", errs.ErrFatalLoader, InitSymbol, libraryPath)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: plugin %s panicked during init: %v", errs.ErrPluginFailed, libraryPath, r)
			bundle = Bundle{}
		}
	}()

	bundle = initFn()
	h.AddBundle(libraryPath, bundle)
	return bundle, nil
}

// Action looks up a registered action plugin by its ActionManifest type name.
func (h *Host) Action(typeName string) (ActionPlugin, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.actions[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: action %q", errs.ErrUnknownPluginType, typeName)
	}
	return a, nil
}

// Trigger looks up a registered trigger plugin by its TriggerConfiguration type name.
func (h *Host) Trigger(typeName string) (TriggerPlugin, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.triggers[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: trigger %q", errs.ErrUnknownPluginType, typeName)
	}
	return t, nil
}

// Snapshot returns every currently-registered action and trigger plugin.
// The Executor stage calls this once at startup: per spec, executor plugins
// do not hot-reload mid-run.
func (h *Host) Snapshot() Bundle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b := Bundle{
		Actions:  make([]ActionPlugin, 0, len(h.actions)),
		Triggers: make([]TriggerPlugin, 0, len(h.triggers)),
	}
	for _, a := range h.actions {
		b.Actions = append(b.Actions, a)
	}
	for _, t := range h.triggers {
		b.Triggers = append(b.Triggers, t)
	}
	return b
}
