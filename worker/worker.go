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

// Package worker implements the Stoppable Worker: a reusable worker
// handle with cooperative-stop semantics, grounded on the original's
// toolkit::thread::StoppableThread.
package worker

import (
	"runtime"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"

	"github.com/bittoy/automaton/errs"
)

// Stoppable runs fn on its own goroutine and lets the owner cooperatively
// request it to stop. fn must poll the stop channel it's handed and return
// promptly once it's closed.
type Stoppable[T any] struct {
	// ID is a UUIDv7 minted at Spawn (uuid.Nil if generation fails). The
	// stages in this module do not write it into their log lines.
	ID uuid.UUID

	stopCh  chan struct{}
	done    chan T
	stopped atomic.Bool
}

// Spawn starts fn on a new goroutine and returns a handle to it.
func Spawn[T any](fn func(stop <-chan struct{}) T) *Stoppable[T] {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.Nil
	}

	s := &Stoppable[T]{
		ID:     id,
		stopCh: make(chan struct{}),
		done:   make(chan T, 1),
	}

	// The goroutine holds only the channels, not s, so an abandoned handle
	// can become unreachable and its finalizer below can run.
	stopCh, done := s.stopCh, s.done
	go func() {
		done <- fn(stopCh)
	}()

	// Best-effort: if the handle is garbage-collected without an explicit
	// Stop(), request the worker to wind down rather than leaking it.
	// Go has no deterministic destructors, so this is advisory only — it
	// runs at the GC's convenience, not at scope exit.
	runtime.SetFinalizer(s, func(s *Stoppable[T]) {
		_, _ = s.Stop()
	})

	return s
}

// Stop signals the worker to stop and blocks until it has exited, returning
// its result. A second call returns ErrAlreadyStopped.
func (s *Stoppable[T]) Stop() (T, error) {
	var zero T
	if !s.stopped.CompareAndSwap(false, true) {
		return zero, errs.ErrAlreadyStopped
	}
	runtime.SetFinalizer(s, nil)
	close(s.stopCh)
	return <-s.done, nil
}
