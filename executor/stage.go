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

// Package executor implements the Executor Stage: dispatches
// ActionManifests to action plugins, grounded on the original's
// action-executor::ExecutorSystem.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/pluginhost"
	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
	"github.com/bittoy/automaton/worker"
)

const idlePause = 50 * time.Millisecond

// Config bundles everything a Stage needs to start.
type Config struct {
	ManifestReader queue.Reader[protocol.ActionManifest]
	PluginHost     *pluginhost.Host
	Logger         logx.Logger
}

// Stage is a running Executor Stage.
type Stage struct {
	w *worker.Stoppable[struct{}]
}

// Start spawns the stage's single worker. The action-plugin set is
// snapshotted once here and is not refreshed automatically for the
// lifetime of the stage.
func Start(cfg Config) *Stage {
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop{}
	}

	plugins := snapshotActions(cfg.PluginHost)

	w := worker.Spawn(func(stop <-chan struct{}) struct{} {
		ctx := context.Background()
		for {
			select {
			case <-stop:
				return struct{}{}
			default:
			}

			msg, ok, err := cfg.ManifestReader.Pull(ctx)
			if err != nil {
				if errors.Is(err, errs.ErrPoisonMessage) {
					logger.Warnf("executor: dropping poison manifest message: %v", err)
					if ackErr := msg.Ack(); ackErr != nil {
						logger.Warnf("executor: ack of poison message failed: %v", ackErr)
					}
					dispatchedTotal.WithLabelValues("", "poison").Inc()
					continue
				}
				logger.Warnf("executor: pull failed: %v", err)
				time.Sleep(idlePause)
				continue
			}
			if !ok {
				select {
				case <-stop:
					return struct{}{}
				case <-time.After(idlePause):
				}
				continue
			}

			dispatch(msg, plugins, logger)
		}
	})

	return &Stage{w: w}
}

func snapshotActions(host *pluginhost.Host) map[string]pluginhost.ActionPlugin {
	b := host.Snapshot()
	out := make(map[string]pluginhost.ActionPlugin, len(b.Actions))
	for _, a := range b.Actions {
		out[a.TypeName()] = a
	}
	return out
}

func dispatch(msg queue.Message[protocol.ActionManifest], plugins map[string]pluginhost.ActionPlugin, logger logx.Logger) {
	manifest := msg.Body

	plugin, ok := plugins[manifest.ActionType]
	if !ok {
		logger.Warnf("executor: unknown action type %q for rule %s", manifest.ActionType, manifest.Rule)
		dispatchedTotal.WithLabelValues(manifest.ActionType, "unknown_type").Inc()
	} else if err := executeSafely(plugin, manifest); err != nil {
		logger.Warnf("executor: plugin %q execution failed for rule %s: %v", manifest.ActionType, manifest.Rule, err)
		dispatchedTotal.WithLabelValues(manifest.ActionType, "plugin_error").Inc()
	} else {
		dispatchedTotal.WithLabelValues(manifest.ActionType, "ok").Inc()
	}

	// Always ack, even on plugin failure: there is no automatic retry for
	// action execution in this version.
	if err := msg.Ack(); err != nil {
		logger.Warnf("executor: ack failed for rule %s: %v", manifest.Rule, err)
	}
}

// executeSafely recovers a panicking action plugin so the stage's worker
// goroutine survives and the manifest still gets acked below, matching the
// "always ack, even on plugin failure" semantics for ordinary errors.
func executeSafely(plugin pluginhost.ActionPlugin, manifest protocol.ActionManifest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action plugin %q panicked: %v", manifest.ActionType, r)
		}
	}()
	return plugin.Execute(manifest)
}

// Stop signals the worker to stop and waits for it to exit.
func (s *Stage) Stop() error {
	_, err := s.w.Stop()
	return err
}
