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

// Package errs holds the sentinel error kinds shared across the engine, so
// callers can errors.Is against a semantic kind instead of string-matching
// log lines.
package errs

import "errors"

var (
	// ErrConfiguration marks a rejected Configuration document or sub-variant. Fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransient marks a queue/plugin/filesystem hiccup. Logged and retried.
	ErrTransient = errors.New("transient external error")

	// ErrPoisonMessage marks a payload that failed to decode to the expected shape.
	ErrPoisonMessage = errors.New("poison message")

	// ErrRuleNotFound marks a Trigger whose RuleID has no matching Rule yet.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrPluginFailed marks an error returned by a plugin's own execution.
	ErrPluginFailed = errors.New("plugin error")

	// ErrUnknownPluginType marks a manifest/configuration referring to an unregistered plugin type.
	ErrUnknownPluginType = errors.New("unknown plugin type")

	// ErrFatalLoader marks an unreachable mandatory configuration store at startup.
	ErrFatalLoader = errors.New("fatal loader error")

	// ErrAdapterNotImplemented marks a concrete cloud-service adapter that is
	// deliberately out of this engine's scope. The adapter still satisfies
	// its interface so configuration parsing and wiring succeed; only its
	// I/O methods return this error.
	ErrAdapterNotImplemented = errors.New("adapter not implemented in this build")

	// ErrAlreadyStopped marks a second Stop() call on a worker handle.
	ErrAlreadyStopped = errors.New("worker already stopped")
)
