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

// Package trigger implements the Trigger Stage: translates
// world-observations into Trigger events by polling trigger plugins on a
// schedule, grounded on the original's trigger-system::TriggerSystem.
package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/pluginhost"
	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
	"github.com/bittoy/automaton/worker"
)

// PollPeriod is the interval between successive sweeps of the trigger
// configuration list. Not configurable in this version (see the Design
// Notes open question on hardcoded periods).
const PollPeriod = 100 * time.Millisecond

// RefreshPeriod is the interval between configuration-list reloads.
const RefreshPeriod = 5 * time.Minute

// ConfigLoader supplies the current set of TriggerConfigurations.
type ConfigLoader interface {
	Load() ([]protocol.TriggerConfiguration, error)
}

// Config bundles everything a Stage needs to start.
type Config struct {
	ConfigLoader ConfigLoader
	QueueWriter  queue.Writer[protocol.Trigger]
	PluginHost   *pluginhost.Host
	Logger       logx.Logger
}

// Stage is a running Trigger Stage; Stop blocks until its worker exits.
type Stage struct {
	w *worker.Stoppable[struct{}]
}

// Start loads the configuration list once, returning any load error without
// spawning the worker, then spawns the stage's single worker. The first
// sweep runs on the first PollPeriod tick.
func Start(cfg Config) (*Stage, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop{}
	}

	cfgs, err := cfg.ConfigLoader.Load()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	snapshot := cfgs

	w := worker.Spawn(func(stop <-chan struct{}) struct{} {
		pollTicker := time.NewTicker(PollPeriod)
		defer pollTicker.Stop()
		refreshTicker := time.NewTicker(RefreshPeriod)
		defer refreshTicker.Stop()

		for {
			select {
			case <-stop:
				return struct{}{}
			case <-refreshTicker.C:
				fresh, err := cfg.ConfigLoader.Load()
				if err != nil {
					logger.Warnf("trigger: refresh deferred, keeping previous snapshot: %v", err)
					refreshesTotal.WithLabelValues("error").Inc()
					continue
				}
				mu.Lock()
				snapshot = fresh
				mu.Unlock()
				refreshesTotal.WithLabelValues("ok").Inc()
			case <-pollTicker.C:
				mu.Lock()
				current := snapshot
				mu.Unlock()
				sweep(current, cfg.PluginHost, cfg.QueueWriter, logger)
			}
		}
	})

	return &Stage{w: w}, nil
}

func sweep(cfgs []protocol.TriggerConfiguration, host *pluginhost.Host, writer queue.Writer[protocol.Trigger], logger logx.Logger) {
	ctx := context.Background()
	for _, c := range cfgs {
		plugin, err := host.Trigger(c.TriggerType)
		if err != nil {
			logger.Warnf("trigger: unknown trigger type %q for config %s: %v", c.TriggerType, c.ID, err)
			pollsTotal.WithLabelValues(c.TriggerType, "unknown_type").Inc()
			continue
		}

		triggers, err := pullSafely(plugin, c)
		if err != nil {
			logger.Warnf("trigger: plugin %q pull failed for config %s: %v", c.TriggerType, c.ID, err)
			pollsTotal.WithLabelValues(c.TriggerType, "plugin_error").Inc()
			continue
		}
		pollsTotal.WithLabelValues(c.TriggerType, "ok").Inc()

		for _, t := range triggers {
			if err := writer.Publish(ctx, t); err != nil {
				logger.Warnf("trigger: publish failed for config %s: %v", c.ID, err)
				continue
			}
			triggersEmitted.WithLabelValues(c.TriggerType).Inc()
		}
	}
}

// pullSafely recovers a panicking trigger plugin so that one misbehaving
// plugin cannot bring down the stage's worker goroutine; subsequent sweeps
// continue polling the remaining configurations undisturbed.
func pullSafely(plugin pluginhost.TriggerPlugin, c protocol.TriggerConfiguration) (triggers []protocol.Trigger, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trigger plugin %q panicked: %v", c.TriggerType, r)
		}
	}()
	return plugin.Pull(c)
}

// Stop signals the worker to stop and waits for it to exit.
func (s *Stage) Stop() error {
	_, err := s.w.Stop()
	return err
}
