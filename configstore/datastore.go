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

package configstore

import (
	"github.com/bittoy/automaton/errs"
	"github.com/bittoy/automaton/protocol"
)

// DataStoreTriggerConfigLoader stands in for the original's
// DatastoreTriggerConfigLoader (a GCP Cloud Datastore-backed config reader).
// Concrete cloud-service adapters are an explicit Non-goal; this type exists
// only so that a Configuration document naming the DataStore variant still
// parses and wires successfully. Every call fails with
// ErrAdapterNotImplemented.
type DataStoreTriggerConfigLoader struct {
	ProjectID           string
	CredentialsFilePath string
}

func NewDataStoreTriggerConfigLoader(projectID, credentialsFilePath string) *DataStoreTriggerConfigLoader {
	return &DataStoreTriggerConfigLoader{ProjectID: projectID, CredentialsFilePath: credentialsFilePath}
}

func (l *DataStoreTriggerConfigLoader) Load() ([]protocol.TriggerConfiguration, error) {
	return nil, errs.ErrAdapterNotImplemented
}

// DataStoreActionConfigReader is the Rule-reading counterpart of
// DataStoreTriggerConfigLoader; same rationale.
type DataStoreActionConfigReader struct {
	ProjectID           string
	CredentialsFilePath string
}

func NewDataStoreActionConfigReader(projectID, credentialsFilePath string) *DataStoreActionConfigReader {
	return &DataStoreActionConfigReader{ProjectID: projectID, CredentialsFilePath: credentialsFilePath}
}

func (r *DataStoreActionConfigReader) Rule(protocol.RuleID) (protocol.Rule, error) {
	return protocol.Rule{}, errs.ErrAdapterNotImplemented
}
