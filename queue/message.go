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

// Package queue implements the Message/Queue abstraction. The backing
// queues (MemoryQueue, DirectoryQueue, NATSQueue) are type-erased — they move
// raw bytes — and a thin generic Reader[T]/Writer[T] pair is layered on top
// at the call site, mirroring the original toolkit::queue::memory::MemoryQueue
// (generic only at its publish<T>/pull<T> methods, not at the struct itself).
package queue

import "context"

// Message wraps one pulled payload together with its acknowledgement.
type Message[T any] struct {
	Body T

	ack func() error
}

// NewMessage constructs a Message around a decoded body and its ack func.
func NewMessage[T any](body T, ack func() error) Message[T] {
	return Message[T]{Body: body, ack: ack}
}

// Ack commits consumption of the message. For queues with at-least-once
// redelivery, failing to Ack makes the message visible again.
func (m Message[T]) Ack() error {
	if m.ack == nil {
		return nil
	}
	return m.ack()
}

// Reader pulls typed messages off a backing queue.
type Reader[T any] interface {
	// Pull returns the next message, or ok=false if the queue is empty.
	Pull(ctx context.Context) (msg Message[T], ok bool, err error)
}

// Writer publishes typed messages onto a backing queue.
type Writer[T any] interface {
	Publish(ctx context.Context, body T) error
}
