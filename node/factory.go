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
	"fmt"

	"github.com/bittoy/automaton/configstore"
	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/interpreter"
	"github.com/bittoy/automaton/protocol"
	"github.com/bittoy/automaton/queue"
	"github.com/bittoy/automaton/resource"
	"github.com/bittoy/automaton/trigger"
)

// The PubSub variant's wire keys (project_id, credentials_file_path, topic,
// subscription) are carried over unchanged from the original's GCP-shaped
// schema for external-interface compatibility, but here they address a NATS
// JetStream endpoint rather than GCP Pub/Sub: project_id is repurposed as
// the NATS server URL, topic as the subject name, and subscription as the
// reader's durable consumer (and stream) name; writers use topic for both.
// credentials_file_path is parsed but not passed to NATS.

func buildTriggerConfigLoader(v ConfigReaderVariant, rm *resource.Manager) (trigger.ConfigLoader, error) {
	switch v.Type {
	case "File":
		return configstore.NewFileTriggerConfigLoader(v.File), nil
	case "Embedded":
		store, err := rm.EmbeddedStore(v.Directory)
		if err != nil {
			return nil, err
		}
		return configstore.NewEmbeddedTriggerConfigLoader(store), nil
	case "DataStore":
		return configstore.NewDataStoreTriggerConfigLoader(v.ProjectID, v.CredentialsFilePath), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized trigger config reader variant %q", errs.ErrConfiguration, v.Type)
	}
}

func buildRuleReader(v ConfigReaderVariant) (interpreter.RuleReader, error) {
	switch v.Type {
	case "File":
		return configstore.NewFileActionConfigReader(v.File), nil
	case "DataStore":
		return configstore.NewDataStoreActionConfigReader(v.ProjectID, v.CredentialsFilePath), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized rule config reader variant %q", errs.ErrConfiguration, v.Type)
	}
}

func buildTriggerWriter(v QueueEndpointVariant, rm *resource.Manager) (queue.Writer[protocol.Trigger], error) {
	switch v.Type {
	case "Directory":
		q, err := queue.NewDirectoryQueue(v.Path, "trigger")
		if err != nil {
			return nil, err
		}
		return queue.NewDirectoryWriter[protocol.Trigger](q), nil
	case "InMemory":
		return queue.NewMemoryWriter[protocol.Trigger](rm.MemoryQueue(v.Topic)), nil
	case "PubSub":
		q, err := queue.NewNATSQueue(v.ProjectID, v.Topic, v.Topic)
		if err != nil {
			return nil, err
		}
		return queue.NewNATSWriter[protocol.Trigger](q), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized trigger queue writer variant %q", errs.ErrConfiguration, v.Type)
	}
}

func buildTriggerReader(v QueueEndpointVariant, rm *resource.Manager) (queue.Reader[protocol.Trigger], error) {
	switch v.Type {
	case "Directory":
		q, err := queue.NewDirectoryQueue(v.Path, "trigger")
		if err != nil {
			return nil, err
		}
		return queue.NewDirectoryReader[protocol.Trigger](q), nil
	case "InMemory":
		return queue.NewMemoryReader[protocol.Trigger](rm.MemoryQueue(v.Topic)), nil
	case "PubSub":
		q, err := queue.NewNATSQueue(v.ProjectID, v.Topic, v.Subscription)
		if err != nil {
			return nil, err
		}
		return queue.NewNATSReader[protocol.Trigger](q), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized trigger queue reader variant %q", errs.ErrConfiguration, v.Type)
	}
}

func buildManifestWriter(v QueueEndpointVariant, rm *resource.Manager) (queue.Writer[protocol.ActionManifest], error) {
	switch v.Type {
	case "Directory":
		q, err := queue.NewDirectoryQueue(v.Path, "action_manifest")
		if err != nil {
			return nil, err
		}
		return queue.NewDirectoryWriter[protocol.ActionManifest](q), nil
	case "InMemory":
		return queue.NewMemoryWriter[protocol.ActionManifest](rm.MemoryQueue(v.Topic)), nil
	case "PubSub":
		q, err := queue.NewNATSQueue(v.ProjectID, v.Topic, v.Topic)
		if err != nil {
			return nil, err
		}
		return queue.NewNATSWriter[protocol.ActionManifest](q), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized manifest queue writer variant %q", errs.ErrConfiguration, v.Type)
	}
}

func buildManifestReader(v QueueEndpointVariant, rm *resource.Manager) (queue.Reader[protocol.ActionManifest], error) {
	switch v.Type {
	case "Directory":
		q, err := queue.NewDirectoryQueue(v.Path, "action_manifest")
		if err != nil {
			return nil, err
		}
		return queue.NewDirectoryReader[protocol.ActionManifest](q), nil
	case "InMemory":
		return queue.NewMemoryReader[protocol.ActionManifest](rm.MemoryQueue(v.Topic)), nil
	case "PubSub":
		q, err := queue.NewNATSQueue(v.ProjectID, v.Topic, v.Subscription)
		if err != nil {
			return nil, err
		}
		return queue.NewNATSReader[protocol.ActionManifest](q), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized manifest queue reader variant %q", errs.ErrConfiguration, v.Type)
	}
}
