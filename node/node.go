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

package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/executor"
	"github.com/bittoy/automaton/interpreter"
	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/pluginhost"
	"github.com/bittoy/automaton/resource"
	"github.com/bittoy/automaton/trigger"
)

// service is the common stoppable handle every stage returns.
type service interface {
	Stop() error
}

// Node is the running composition of a Configuration document: a Resource
// Manager, the plugin bundles loaded from disk or registered in-process,
// and the set of spawned stage handles.
type Node struct {
	resources *resource.Manager
	services  []service
	logger    logx.Logger
}

// Start builds a Resource Manager from cfg.PluginPaths, then constructs and
// starts one stage per cfg.Systems entry in order. If any stage fails to
// start, every stage already started is stopped before returning the error.
func Start(cfg Configuration, opts ...Option) (*Node, error) {
	o := &buildOpts{logger: logx.DefaultLogger()}
	for _, opt := range opts {
		opt(o)
	}

	host := pluginhost.New()
	if len(o.extraBundle.Actions) > 0 || len(o.extraBundle.Triggers) > 0 {
		host.AddBundle("builtin", o.extraBundle)
	}
	if err := loadPluginPaths(host, cfg.PluginPaths, o.logger); err != nil {
		return nil, err
	}

	rm := resource.New(host)

	n := &Node{resources: rm, logger: o.logger}

	for i, sys := range cfg.Systems {
		svc, err := n.startSystem(sys)
		if err != nil {
			n.Stop()
			return nil, fmt.Errorf("%w: starting system %d (%s): %v", errs.ErrConfiguration, i, sys.Type, err)
		}
		n.services = append(n.services, svc)
	}

	return n, nil
}

func (n *Node) startSystem(sys SystemConfiguration) (service, error) {
	switch sys.Type {
	case "Trigger":
		return n.startTrigger(*sys.Trigger)
	case "Interpreter":
		return n.startInterpreter(*sys.Interpreter)
	case "Executor":
		return n.startExecutor(*sys.Executor)
	default:
		return nil, fmt.Errorf("%w: unrecognized system type %q", errs.ErrConfiguration, sys.Type)
	}
}

func (n *Node) startTrigger(cfg TriggerSystemConfig) (service, error) {
	loader, err := buildTriggerConfigLoader(cfg.ConfigReader, n.resources)
	if err != nil {
		return nil, err
	}
	writer, err := buildTriggerWriter(cfg.QueueWriter, n.resources)
	if err != nil {
		return nil, err
	}
	return trigger.Start(trigger.Config{
		ConfigLoader: loader,
		QueueWriter:  writer,
		PluginHost:   n.resources.PluginHost(),
		Logger:       n.logger,
	})
}

func (n *Node) startInterpreter(cfg InterpreterSysConfig) (service, error) {
	rules, err := buildRuleReader(cfg.ConfigReader)
	if err != nil {
		return nil, err
	}
	reader, err := buildTriggerReader(cfg.QueueReader, n.resources)
	if err != nil {
		return nil, err
	}
	writer, err := buildManifestWriter(cfg.QueueWriter, n.resources)
	if err != nil {
		return nil, err
	}
	return interpreter.Start(interpreter.Config{
		TriggerReader:  reader,
		RuleReader:     rules,
		ManifestWriter: writer,
		Logger:         n.logger,
	}), nil
}

func (n *Node) startExecutor(cfg ExecutorSystemConfig) (service, error) {
	reader, err := buildManifestReader(cfg.QueueReader, n.resources)
	if err != nil {
		return nil, err
	}
	return executor.Start(executor.Config{
		ManifestReader: reader,
		PluginHost:     n.resources.PluginHost(),
		Logger:         n.logger,
	}), nil
}

// loadPluginPaths loads every *.so under each search directory. A library
// whose InitPlugin panics is logged and contributes an empty bundle; every
// other load failure aborts startup.
func loadPluginPaths(host *pluginhost.Host, dirs []string, logger logx.Logger) error {
	for _, dir := range dirs {
		info, statErr := os.Stat(dir)
		if statErr != nil {
			return fmt.Errorf("%w: plugin search path %s does not exist: %v", errs.ErrFatalLoader, dir, statErr)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: plugin search path %s is not a directory", errs.ErrFatalLoader, dir)
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.so"))
		if err != nil {
			return fmt.Errorf("%w: invalid plugin search path %s: %v", errs.ErrFatalLoader, dir, err)
		}
		for _, path := range matches {
			if _, err := host.LoadPath(path); err != nil {
				if errors.Is(err, errs.ErrPluginFailed) {
					logger.Errorf("node: %v; using an empty bundle", err)
					continue
				}
				return err
			}
		}
	}
	return nil
}

// Stop stops every started stage in startup order, collecting (but not
// stopping early on) any errors, then releases the Resource Manager's
// embedded stores.
func (n *Node) Stop() error {
	var firstErr error
	for _, svc := range n.services {
		if err := svc.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := n.resources.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
