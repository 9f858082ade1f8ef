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

// Package node implements the Node + Config component: the
// composition root that parses a Configuration document, wires the
// Resource Manager and Plugin Host, and spawns/stops the three pipeline
// stages. Grounded on the original's process::{Node, Configuration,
// SystemConfiguration} and their per-stage endpoint-variant enums.
package node

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bittoy/automaton/errs"
)

// Configuration is the root document a Node is built from.
type Configuration struct {
	PluginPaths []string              `json:"plugin_paths" yaml:"plugin_paths"`
	Systems     []SystemConfiguration `json:"systems" yaml:"systems"`
}

// LoadConfiguration parses a Configuration document. JSON and YAML are both
// accepted (the original only spoke one wire format; the ambient config
// layer here follows the rest of the retrieval pack's convention of
// accepting either).
func LoadConfiguration(data []byte) (Configuration, error) {
	var cfg Configuration
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr == nil {
		return cfg, nil
	}
	if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr == nil {
		return cfg, nil
	}
	return Configuration{}, fmt.Errorf("%w: configuration document is neither valid JSON nor YAML: %v", errs.ErrConfiguration, jsonErr)
}

// SystemConfiguration is a tagged union selecting one pipeline stage and its
// endpoint wiring.
type SystemConfiguration struct {
	Type        string                `json:"type" yaml:"type"`
	Trigger     *TriggerSystemConfig  `json:"-" yaml:"-"`
	Interpreter *InterpreterSysConfig `json:"-" yaml:"-"`
	Executor    *ExecutorSystemConfig `json:"-" yaml:"-"`
}

// rawSystemConfiguration mirrors SystemConfiguration's on-wire shape: all
// stage configs flattened into one object, discriminated by Type.
type rawSystemConfiguration struct {
	Type         string          `json:"type" yaml:"type"`
	ConfigReader json.RawMessage `json:"config_reader,omitempty" yaml:"config_reader,omitempty"`
	QueueReader  json.RawMessage `json:"queue_reader,omitempty" yaml:"queue_reader,omitempty"`
	QueueWriter  json.RawMessage `json:"queue_writer,omitempty" yaml:"queue_writer,omitempty"`
}

// UnmarshalJSON implements the tag-dispatch over the "type" field, which
// selects which of Trigger/Interpreter/Executor this entry populates.
func (s *SystemConfiguration) UnmarshalJSON(data []byte) error {
	var raw rawSystemConfiguration
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	s.Type = raw.Type
	switch raw.Type {
	case "Trigger":
		cfg := &TriggerSystemConfig{}
		if err := cfg.ConfigReader.UnmarshalJSON(raw.ConfigReader); err != nil {
			return err
		}
		if err := cfg.QueueWriter.UnmarshalJSON(raw.QueueWriter); err != nil {
			return err
		}
		s.Trigger = cfg
	case "Interpreter":
		cfg := &InterpreterSysConfig{}
		if err := cfg.ConfigReader.UnmarshalJSON(raw.ConfigReader); err != nil {
			return err
		}
		if err := cfg.QueueReader.UnmarshalJSON(raw.QueueReader); err != nil {
			return err
		}
		if err := cfg.QueueWriter.UnmarshalJSON(raw.QueueWriter); err != nil {
			return err
		}
		s.Interpreter = cfg
	case "Executor":
		cfg := &ExecutorSystemConfig{}
		if err := cfg.QueueReader.UnmarshalJSON(raw.QueueReader); err != nil {
			return err
		}
		s.Executor = cfg
	default:
		return fmt.Errorf("%w: unrecognized system type %q", errs.ErrConfiguration, raw.Type)
	}
	return nil
}

// TriggerSystemConfig configures the Trigger Stage's endpoints.
type TriggerSystemConfig struct {
	ConfigReader ConfigReaderVariant
	QueueWriter  QueueEndpointVariant
}

// InterpreterSysConfig configures the Interpreter Stage's endpoints.
type InterpreterSysConfig struct {
	ConfigReader ConfigReaderVariant
	QueueReader  QueueEndpointVariant
	QueueWriter  QueueEndpointVariant
}

// ExecutorSystemConfig configures the Executor Stage's endpoints.
type ExecutorSystemConfig struct {
	QueueReader QueueEndpointVariant
}

// UnmarshalYAML mirrors UnmarshalJSON's tag-dispatch for YAML documents,
// since gopkg.in/yaml.v3 does not route through encoding/json.Unmarshaler.
func (s *SystemConfiguration) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type         string    `yaml:"type"`
		ConfigReader yaml.Node `yaml:"config_reader"`
		QueueReader  yaml.Node `yaml:"queue_reader"`
		QueueWriter  yaml.Node `yaml:"queue_writer"`
	}
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	s.Type = raw.Type
	decode := func(node yaml.Node, out interface{}) error {
		if node.Kind == 0 {
			return nil
		}
		return node.Decode(out)
	}
	switch raw.Type {
	case "Trigger":
		cfg := &TriggerSystemConfig{}
		if err := decode(raw.ConfigReader, &cfg.ConfigReader); err != nil {
			return err
		}
		if err := decode(raw.QueueWriter, &cfg.QueueWriter); err != nil {
			return err
		}
		s.Trigger = cfg
	case "Interpreter":
		cfg := &InterpreterSysConfig{}
		if err := decode(raw.ConfigReader, &cfg.ConfigReader); err != nil {
			return err
		}
		if err := decode(raw.QueueReader, &cfg.QueueReader); err != nil {
			return err
		}
		if err := decode(raw.QueueWriter, &cfg.QueueWriter); err != nil {
			return err
		}
		s.Interpreter = cfg
	case "Executor":
		cfg := &ExecutorSystemConfig{}
		if err := decode(raw.QueueReader, &cfg.QueueReader); err != nil {
			return err
		}
		s.Executor = cfg
	default:
		return fmt.Errorf("%w: unrecognized system type %q", errs.ErrConfiguration, raw.Type)
	}
	return nil
}

// ConfigReaderVariant selects a trigger/rule config source: File, DataStore
// or Embedded.
type ConfigReaderVariant struct {
	Type                string `json:"type" yaml:"type"`
	File                string `json:"file,omitempty" yaml:"file,omitempty"`
	Directory           string `json:"directory,omitempty" yaml:"directory,omitempty"`
	ProjectID           string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	CredentialsFilePath string `json:"credentials_file_path,omitempty" yaml:"credentials_file_path,omitempty"`
}

func (v *ConfigReaderVariant) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	type alias ConfigReaderVariant
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: config reader variant: %v", errs.ErrConfiguration, err)
	}
	switch a.Type {
	case "File", "DataStore", "Embedded":
	default:
		return fmt.Errorf("%w: unrecognized config reader variant %q", errs.ErrConfiguration, a.Type)
	}
	*v = ConfigReaderVariant(a)
	return nil
}

func (v *ConfigReaderVariant) UnmarshalYAML(value *yaml.Node) error {
	type alias ConfigReaderVariant
	var a alias
	if err := value.Decode(&a); err != nil {
		return fmt.Errorf("%w: config reader variant: %v", errs.ErrConfiguration, err)
	}
	switch a.Type {
	case "File", "DataStore", "Embedded":
	default:
		return fmt.Errorf("%w: unrecognized config reader variant %q", errs.ErrConfiguration, a.Type)
	}
	*v = ConfigReaderVariant(a)
	return nil
}

// QueueEndpointVariant selects a trigger/manifest queue endpoint: Directory,
// PubSub or InMemory. One struct serves both queue-reader and queue-writer
// positions since their variant sets and keys coincide.
type QueueEndpointVariant struct {
	Type                string `json:"type" yaml:"type"`
	Path                string `json:"path,omitempty" yaml:"path,omitempty"`
	Topic               string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Subscription        string `json:"subscription,omitempty" yaml:"subscription,omitempty"`
	ProjectID           string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	CredentialsFilePath string `json:"credentials_file_path,omitempty" yaml:"credentials_file_path,omitempty"`
}

func (v *QueueEndpointVariant) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	type alias QueueEndpointVariant
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: queue endpoint variant: %v", errs.ErrConfiguration, err)
	}
	switch a.Type {
	case "Directory", "PubSub", "InMemory":
	default:
		return fmt.Errorf("%w: unrecognized queue endpoint variant %q", errs.ErrConfiguration, a.Type)
	}
	*v = QueueEndpointVariant(a)
	return nil
}

func (v *QueueEndpointVariant) UnmarshalYAML(value *yaml.Node) error {
	type alias QueueEndpointVariant
	var a alias
	if err := value.Decode(&a); err != nil {
		return fmt.Errorf("%w: queue endpoint variant: %v", errs.ErrConfiguration, err)
	}
	switch a.Type {
	case "Directory", "PubSub", "InMemory":
	default:
		return fmt.Errorf("%w: unrecognized queue endpoint variant %q", errs.ErrConfiguration, a.Type)
	}
	*v = QueueEndpointVariant(a)
	return nil
}
