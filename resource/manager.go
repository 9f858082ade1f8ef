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

// Package resource implements the Resource Manager: the shared owner of
// the plugin host, named in-memory queues and embedded stores that the three
// pipeline stages request as they boot, grounded on the original's
// process::resource_manager::ResourceManager.
package resource

import (
	"sync"

	"github.com/bittoy/automaton/configstore"
	"github.com/bittoy/automaton/pluginhost"
	"github.com/bittoy/automaton/queue"
)

// Manager hands out shared singletons by name, creating them lazily on
// first request. All getters are safe for concurrent use.
type Manager struct {
	host *pluginhost.Host

	mu     sync.Mutex
	queues map[string]*queue.MemoryQueue
	stores map[string]*configstore.EmbeddedStore
}

// New creates a Manager around an already-populated plugin host.
func New(host *pluginhost.Host) *Manager {
	return &Manager{
		host:   host,
		queues: make(map[string]*queue.MemoryQueue),
		stores: make(map[string]*configstore.EmbeddedStore),
	}
}

// PluginHost returns the shared plugin host.
func (m *Manager) PluginHost() *pluginhost.Host { return m.host }

// MemoryQueue returns the named in-memory queue, creating it if this is the
// first request for that name. Two callers asking for the same name always
// get the same backing *queue.MemoryQueue, regardless of what element type
// they wrap it with afterward.
func (m *Manager) MemoryQueue(name string) *queue.MemoryQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[name]
	if !ok {
		q = queue.NewMemoryQueue()
		m.queues[name] = q
	}
	return q
}

// EmbeddedStore returns the embedded key/value store rooted at path,
// opening it if this is the first request for that path.
func (m *Manager) EmbeddedStore(path string) (*configstore.EmbeddedStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[path]; ok {
		return s, nil
	}
	s, err := configstore.OpenEmbeddedStore(path)
	if err != nil {
		return nil, err
	}
	m.stores[path] = s
	return s, nil
}

// Close releases every embedded store this manager opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, s := range m.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
