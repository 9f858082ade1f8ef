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

// Command ruleadmin seeds a single Rule and its TriggerConfiguration into an
// embedded store from the command line, grounded on the original's
// rulecreator binary (a one-off seeding tool built directly against
// toolkit::db::sled::SledStore).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/structs"

	"github.com/bittoy/automaton/configstore"
	"github.com/bittoy/automaton/protocol"
)

func main() {
	dbPath := flag.String("db", "./automaton.db", "path to the embedded store")
	triggerType := flag.String("trigger-type", "directory_watch", "trigger_type for the new TriggerConfiguration")
	triggerData := flag.String("trigger-data", "{}", "opaque JSON data for the new TriggerConfiguration")
	actionType := flag.String("action-type", "notify", "action_type for the new Rule")
	actionConfig := flag.String("action-config", "{}", "action-config template for the new Rule")
	flag.Parse()

	store, err := configstore.OpenEmbeddedStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ruleadmin: open store %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	ruleID := protocol.NewRuleID()
	rule := protocol.Rule{
		ID:           ruleID,
		ActionType:   *actionType,
		ActionConfig: *actionConfig,
	}
	rules := configstore.Entity[protocol.Rule](store, "rule")
	if _, err := rules.Insert(rule); err != nil {
		fmt.Fprintf(os.Stderr, "ruleadmin: insert rule: %v\n", err)
		os.Exit(1)
	}

	cfg := protocol.TriggerConfiguration{
		ID:          string(protocol.NewRuleID()),
		Rule:        ruleID,
		TriggerType: *triggerType,
		Data:        []byte(*triggerData),
	}
	cfgs := configstore.Entity[protocol.TriggerConfiguration](store, "trigger_configuration")
	cfgID, err := cfgs.Insert(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ruleadmin: insert trigger configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("rule=%s trigger_configuration=%s\n", ruleID, cfgID)
	printFields("rule", structs.Map(rule))
	printFields("trigger_configuration", structs.Map(cfg))
}

// printFields dumps a struct's fields as a flattened map for operator
// inspection, via reflection-based struct-to-map conversion.
func printFields(label string, fields map[string]any) {
	for k, v := range fields {
		fmt.Printf("  %s.%s = %v\n", label, k, v)
	}
}
