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

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mitchellh/mapstructure"

	"github.com/bittoy/automaton/protocol"
)

// MQTTWatcher subscribes to an MQTT topic on first pull for a rule and
// buffers every message received since; each pull drains the buffer into
// Triggers. A supplemented trigger type with no prior-implementation
// equivalent, built on eclipse/paho.mqtt.golang as a natural event source
// for "if this."
type MQTTWatcher struct {
	mu      sync.Mutex
	clients map[protocol.RuleID]mqtt.Client
	inbox   map[protocol.RuleID]chan mqtt.Message
}

// NewMQTTWatcher constructs an empty watcher.
func NewMQTTWatcher() *MQTTWatcher {
	return &MQTTWatcher{
		clients: make(map[protocol.RuleID]mqtt.Client),
		inbox:   make(map[protocol.RuleID]chan mqtt.Message),
	}
}

func (w *MQTTWatcher) TypeName() string { return "mqtt" }

type mqttPayload struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
	QoS    byte   `mapstructure:"qos"`
}

func (w *MQTTWatcher) Pull(cfg protocol.TriggerConfiguration) ([]protocol.Trigger, error) {
	var raw map[string]any
	if err := json.Unmarshal(cfg.Data, &raw); err != nil {
		return nil, fmt.Errorf("mqtt: decode config data: %w", err)
	}
	var payload mqttPayload
	if err := mapstructure.Decode(raw, &payload); err != nil {
		return nil, fmt.Errorf("mqtt: map config data: %w", err)
	}

	w.mu.Lock()
	inbox, ok := w.inbox[cfg.Rule]
	if !ok {
		inbox = make(chan mqtt.Message, 256)
		w.inbox[cfg.Rule] = inbox

		opts := mqtt.NewClientOptions().AddBroker(payload.Broker).SetClientID(fmt.Sprintf("automaton-%s", cfg.Rule))
		opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
			select {
			case inbox <- msg:
			default:
				// Inbox full: drop rather than block the MQTT client's own goroutine.
			}
		})
		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.WaitTimeout(5*time.Second) && token.Error() != nil {
			w.mu.Unlock()
			return nil, fmt.Errorf("mqtt: connect to %s: %w", payload.Broker, token.Error())
		}
		if token := client.Subscribe(payload.Topic, payload.QoS, nil); token.WaitTimeout(5*time.Second) && token.Error() != nil {
			w.mu.Unlock()
			return nil, fmt.Errorf("mqtt: subscribe to %s: %w", payload.Topic, token.Error())
		}
		w.clients[cfg.Rule] = client
	}
	w.mu.Unlock()

	var triggers []protocol.Trigger
	for {
		select {
		case msg := <-inbox:
			data, err := json.Marshal(struct {
				Topic   string `json:"topic"`
				Payload string `json:"payload"`
			}{Topic: msg.Topic(), Payload: string(msg.Payload())})
			if err != nil {
				return triggers, fmt.Errorf("mqtt: encode trigger data: %w", err)
			}
			triggers = append(triggers, protocol.Trigger{
				Rule:        cfg.Rule,
				TriggerType: cfg.TriggerType,
				Data:        data,
			})
		default:
			return triggers, nil
		}
	}
}
