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

import "github.com/prometheus/client_golang/prometheus"

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "automaton",
			Subsystem: "trigger",
			Name:      "polls_total",
			Help:      "Trigger configurations polled, by trigger_type and outcome",
		},
		[]string{"trigger_type", "outcome"},
	)

	triggersEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "automaton",
			Subsystem: "trigger",
			Name:      "triggers_emitted_total",
			Help:      "Triggers published to the trigger queue",
		},
		[]string{"trigger_type"},
	)

	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "automaton",
			Subsystem: "trigger",
			Name:      "config_refreshes_total",
			Help:      "Trigger configuration reloads, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(pollsTotal, triggersEmitted, refreshesTotal)
}
