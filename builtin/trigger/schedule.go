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
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bittoy/automaton/protocol"
)

// ScheduleWatcher fires a Trigger whenever a rule's cron expression matches
// a tick that's occurred since the last pull. There is no original-source
// equivalent — cron-based triggering is a feature the distilled spec
// implies ("if this" can be a schedule) but the Rust prototype never built;
// it is supplemented here using the pack's cron library.
type ScheduleWatcher struct {
	mu       sync.Mutex
	schedule map[protocol.RuleID]cron.Schedule
	lastRun  map[protocol.RuleID]time.Time
}

// NewScheduleWatcher constructs an empty watcher.
func NewScheduleWatcher() *ScheduleWatcher {
	return &ScheduleWatcher{
		schedule: make(map[protocol.RuleID]cron.Schedule),
		lastRun:  make(map[protocol.RuleID]time.Time),
	}
}

func (w *ScheduleWatcher) TypeName() string { return "schedule" }

type schedulePayload struct {
	Cron string `json:"cron"`
}

func (w *ScheduleWatcher) Pull(cfg protocol.TriggerConfiguration) ([]protocol.Trigger, error) {
	var payload schedulePayload
	if err := json.Unmarshal(cfg.Data, &payload); err != nil {
		return nil, fmt.Errorf("schedule: decode config data: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	sched, ok := w.schedule[cfg.Rule]
	if !ok {
		parsed, err := cron.ParseStandard(payload.Cron)
		if err != nil {
			return nil, fmt.Errorf("schedule: parse cron expression %q: %w", payload.Cron, err)
		}
		sched = parsed
		w.schedule[cfg.Rule] = sched
		w.lastRun[cfg.Rule] = time.Now()
		return nil, nil
	}

	last := w.lastRun[cfg.Rule]
	now := time.Now()
	if next := sched.Next(last); next.After(now) {
		return nil, nil
	}
	w.lastRun[cfg.Rule] = now

	data, err := json.Marshal(struct {
		FiredAt time.Time `json:"fired_at"`
	}{FiredAt: now})
	if err != nil {
		return nil, fmt.Errorf("schedule: encode trigger data: %w", err)
	}

	return []protocol.Trigger{{
		Rule:        cfg.Rule,
		TriggerType: cfg.TriggerType,
		Data:        data,
	}}, nil
}
