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
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bittoy/automaton/errs"
)

// MemoryQueue is an in-process FIFO byte queue. It is deliberately
// type-erased: the struct itself carries no type parameter, so a resource
// manager can hand out the same *MemoryQueue to callers wrapping it with
// different Reader[T]/Writer[T] element types without those types needing
// to agree.
type MemoryQueue struct {
	mu sync.Mutex
	l  *list.List
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{l: list.New()}
}

// publish appends the JSON encoding of body to the tail of the queue.
func (q *MemoryQueue) publish(body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode memory queue message: %v", errs.ErrTransient, err)
	}
	q.mu.Lock()
	q.l.PushBack(data)
	q.mu.Unlock()
	return nil
}

// pull removes and returns the head of the queue, or ok=false if empty.
func (q *MemoryQueue) pull() (data []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.l.Front()
	if front == nil {
		return nil, false
	}
	q.l.Remove(front)
	return front.Value.([]byte), true
}

// MemoryWriter publishes typed messages onto a shared *MemoryQueue.
type MemoryWriter[T any] struct {
	Q *MemoryQueue
}

// NewMemoryWriter adapts q into a typed Writer[T].
func NewMemoryWriter[T any](q *MemoryQueue) MemoryWriter[T] { return MemoryWriter[T]{Q: q} }

func (w MemoryWriter[T]) Publish(_ context.Context, body T) error {
	return w.Q.publish(body)
}

// MemoryReader pulls typed messages off a shared *MemoryQueue.
type MemoryReader[T any] struct {
	Q *MemoryQueue
}

// NewMemoryReader adapts q into a typed Reader[T].
func NewMemoryReader[T any](q *MemoryQueue) MemoryReader[T] { return MemoryReader[T]{Q: q} }

func (r MemoryReader[T]) Pull(_ context.Context) (Message[T], bool, error) {
	data, ok := r.Q.pull()
	if !ok {
		return Message[T]{}, false, nil
	}
	ack := func() error { return nil }
	var body T
	if err := json.Unmarshal(data, &body); err != nil {
		return NewMessage(body, ack), true, fmt.Errorf("%w: %v", errs.ErrPoisonMessage, err)
	}
	return NewMessage(body, ack), true, nil
}
