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

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/bittoy/automaton/errs"
)

// NATSQueue adapts a NATS JetStream pull subscription into the same
// publish/pull shape as MemoryQueue and DirectoryQueue, standing in for a
// remote message bus that delegates to an external pub/sub client. Ack
// corresponds to JetStream message acknowledgement.
type NATSQueue struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	sub     *nats.Subscription
}

// NewNATSQueue connects to a NATS server and binds a durable pull consumer
// on subject, creating the backing stream if it does not already exist.
func NewNATSQueue(url, subject, durable string) (*NATSQueue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to nats %s: %v", errs.ErrFatalLoader, url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: open jetstream context: %v", errs.ErrFatalLoader, err)
	}
	if _, err := js.AddStream(&nats.StreamConfig{Name: durable, Subjects: []string{subject}}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		nc.Close()
		return nil, fmt.Errorf("%w: ensure stream %s: %v", errs.ErrFatalLoader, durable, err)
	}
	sub, err := js.PullSubscribe(subject, durable)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: pull-subscribe %s: %v", errs.ErrFatalLoader, subject, err)
	}
	return &NATSQueue{nc: nc, js: js, subject: subject, sub: sub}, nil
}

// Close releases the underlying NATS connection.
func (q *NATSQueue) Close() { q.nc.Close() }

func (q *NATSQueue) publish(body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode nats message: %v", errs.ErrTransient, err)
	}
	if _, err := q.js.Publish(q.subject, data); err != nil {
		return fmt.Errorf("%w: publish to %s: %v", errs.ErrTransient, q.subject, err)
	}
	return nil
}

func (q *NATSQueue) pull(ctx context.Context) (data []byte, ack func() error, ok bool, err error) {
	msgs, fetchErr := q.sub.Fetch(1, nats.Context(ctx))
	if fetchErr != nil {
		if fetchErr == nats.ErrTimeout || fetchErr == context.DeadlineExceeded {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("%w: fetch from %s: %v", errs.ErrTransient, q.subject, fetchErr)
	}
	if len(msgs) == 0 {
		return nil, nil, false, nil
	}
	m := msgs[0]
	return m.Data, func() error {
		if ackErr := m.Ack(); ackErr != nil {
			return fmt.Errorf("%w: ack nats message: %v", errs.ErrTransient, ackErr)
		}
		return nil
	}, true, nil
}

// NATSWriter publishes typed messages onto a NATS subject.
type NATSWriter[T any] struct{ Q *NATSQueue }

func NewNATSWriter[T any](q *NATSQueue) NATSWriter[T] { return NATSWriter[T]{Q: q} }

func (w NATSWriter[T]) Publish(_ context.Context, body T) error { return w.Q.publish(body) }

// NATSReader pulls typed messages from a NATS subject.
type NATSReader[T any] struct{ Q *NATSQueue }

func NewNATSReader[T any](q *NATSQueue) NATSReader[T] { return NATSReader[T]{Q: q} }

func (r NATSReader[T]) Pull(ctx context.Context) (Message[T], bool, error) {
	data, ack, ok, err := r.Q.pull(ctx)
	if err != nil || !ok {
		return Message[T]{}, ok, err
	}
	var body T
	if err := json.Unmarshal(data, &body); err != nil {
		return NewMessage(body, ack), true, fmt.Errorf("%w: %v", errs.ErrPoisonMessage, err)
	}
	return NewMessage(body, ack), true, nil
}
