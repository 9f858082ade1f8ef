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

// Command automatond is the host process: it parses a Configuration
// document, starts a Node, and runs until interrupted. External signal
// handling is out of the Node's own scope; this binary is the CLI that
// translates SIGINT/SIGTERM into Node.Stop, grounded on the original's
// process::main (clap CLI + ctrlc handler) translated to the standard
// library's flag and signal packages.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bittoy/automaton/builtin/action"
	"github.com/bittoy/automaton/builtin/trigger"
	"github.com/bittoy/automaton/logx"
	"github.com/bittoy/automaton/node"
	"github.com/bittoy/automaton/pluginhost"
)

func main() {
	cfgPath := flag.String("cfg", "", "path to the node configuration file (JSON or YAML)")
	flag.Parse()

	if *cfgPath == "" {
		log.Fatal("automatond: -cfg is required")
	}

	logger := logx.DefaultLogger()

	data, err := os.ReadFile(*cfgPath)
	if err != nil {
		logger.Errorf("automatond: read config %s: %v", *cfgPath, err)
		os.Exit(1)
	}

	cfg, err := node.LoadConfiguration(data)
	if err != nil {
		logger.Errorf("automatond: parse config %s: %v", *cfgPath, err)
		os.Exit(1)
	}

	n, err := node.Start(cfg,
		node.WithLogger(logger),
		node.WithBuiltinPlugins(builtinBundle()),
	)
	if err != nil {
		logger.Errorf("automatond: start node: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if err := n.Stop(); err != nil {
		logger.Errorf("automatond: stop node: %v", err)
		os.Exit(1)
	}
}

// builtinBundle registers every compiled-in trigger/action plugin. Plugins
// loaded dynamically from plugin_paths are layered on top of this set.
func builtinBundle() pluginhost.Bundle {
	return pluginhost.Bundle{
		Actions: []pluginhost.ActionPlugin{
			action.NewNotifyAction(),
			action.NewNotifyMockAction(),
			action.NewScriptAction(),
			action.NewExprAssertAction(),
		},
		Triggers: []pluginhost.TriggerPlugin{
			trigger.NewDirectoryWatcher(),
			trigger.NewScheduleWatcher(),
			trigger.NewMQTTWatcher(),
			trigger.NewExprGateTrigger(),
		},
	}
}
