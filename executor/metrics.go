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

package executor

import "github.com/prometheus/client_golang/prometheus"

var (
	dispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "automaton",
			Subsystem: "executor",
			Name:      "manifests_dispatched_total",
			Help:      "Action manifests pulled from the manifest queue, by outcome",
		},
		[]string{"action_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(dispatchedTotal)
}
