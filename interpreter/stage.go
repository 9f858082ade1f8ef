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

// Package interpreter implements the Interpreter Stage: joins Trigger
// events with their Rule and renders the action-config template into an
// ActionManifest, grounded on the original's
// trigger-interpreter::TriggerInterpreter. Unlike the original (which for
// reasons lost to history spawned nine racing worker threads over one
// queue), this runs the single cooperative worker the design explicitly
// calls for.
package interpreter

import (
	"context"
	"errors"
	"time"

	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
	"github.com/bittoy/automaton/template"
	"github.com/bittoy/automaton/worker"
)

// idlePause is how long the worker sleeps between two empty pulls, so an
// idle interpreter doesn't spin its cooperative loop at full CPU.
const idlePause = 50 * time.Millisecond

// RuleReader resolves a RuleID to its Rule.
type RuleReader interface {
	Rule(id protocol.RuleID) (protocol.Rule, error)
}

// Config bundles everything a Stage needs to start.
type Config struct {
	TriggerReader  queue.Reader[protocol.Trigger]
	RuleReader     RuleReader
	ManifestWriter queue.Writer[protocol.ActionManifest]
	Logger         logx.Logger
}

// Stage is a running Interpreter Stage.
type Stage struct {
	w *worker.Stoppable[struct{}]
}

// Start spawns the stage's single worker.
func Start(cfg Config) *Stage {
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop{}
	}

	w := worker.Spawn(func(stop <-chan struct{}) struct{} {
		ctx := context.Background()
		for {
			select {
			case <-stop:
				return struct{}{}
			default:
			}

			msg, ok, err := cfg.TriggerReader.Pull(ctx)
			if err != nil {
				if errors.Is(err, errs.ErrPoisonMessage) {
					logger.Warnf("interpreter: dropping poison trigger message: %v", err)
					if ackErr := msg.Ack(); ackErr != nil {
						logger.Warnf("interpreter: ack of poison message failed: %v", ackErr)
					}
					processedTotal.WithLabelValues("poison").Inc()
					continue
				}
				logger.Warnf("interpreter: pull failed: %v", err)
				processedTotal.WithLabelValues("pull_error").Inc()
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

			handle(msg, cfg.RuleReader, cfg.ManifestWriter, logger, ctx)
		}
	})

	return &Stage{w: w}
}

func handle(msg queue.Message[protocol.Trigger], rules RuleReader, writer queue.Writer[protocol.ActionManifest], logger logx.Logger, ctx context.Context) {
	t := msg.Body

	rule, err := rules.Rule(t.Rule)
	if err != nil {
		// Rule not yet registered: leave the message unacked for a later
		// retry rather than dropping the trigger on the floor.
		logger.Infof("interpreter: rule %s not found, will retry: %v", t.Rule, err)
		processedTotal.WithLabelValues("rule_not_found").Inc()
		return
	}

	rendered := template.Render(rule.ActionConfig, t.Data)
	manifest := protocol.ActionManifest{
		Rule:       t.Rule,
		ActionType: rule.ActionType,
		Data:       rendered,
	}

	if err := writer.Publish(ctx, manifest); err != nil {
		logger.Warnf("interpreter: publish failed for rule %s, will retry: %v", t.Rule, err)
		processedTotal.WithLabelValues("publish_error").Inc()
		return
	}

	if err := msg.Ack(); err != nil {
		logger.Warnf("interpreter: ack failed for rule %s: %v", t.Rule, err)
	}
	processedTotal.WithLabelValues("ok").Inc()
}

// Stop signals the worker to stop and waits for it to exit.
func (s *Stage) Stop() error {
	_, err := s.w.Stop()
	return err
}
