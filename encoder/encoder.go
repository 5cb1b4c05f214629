// Copyright 2026 mlx-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package encoder runs computation tasks on a single persistent worker
// goroutine, in dispatch order. It models a CPU command stream: callers
// enqueue closures over buffers they may not mutate until the stream is
// synchronized, and may hand the encoder temporary buffers to keep alive
// until the tasks that read them have run.
package encoder

import (
	"sync"
	"sync/atomic"
)

// Encoder is a FIFO task queue served by one worker goroutine spawned at
// creation. Tasks dispatched from a single goroutine run in dispatch order.
type Encoder struct {
	taskC     chan task
	closeOnce sync.Once
	closed    atomic.Bool

	mu          sync.Mutex
	temporaries []any
}

type task struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates an encoder and starts its worker.
func New() *Encoder {
	e := &Encoder{
		taskC: make(chan task, 16),
	}
	go e.worker()
	return e
}

func (e *Encoder) worker() {
	for t := range e.taskC {
		if t.fn != nil {
			t.fn()
		}
		if t.barrier != nil {
			t.barrier.Done()
		}
	}
}

// Dispatch enqueues fn to run on the worker after every previously
// dispatched task. It does not wait for fn to run. Dispatching on a closed
// encoder runs fn inline.
func (e *Encoder) Dispatch(fn func()) {
	if e.closed.Load() {
		fn()
		return
	}
	e.taskC <- task{fn: fn}
}

// AddTemporary retains v until the next Synchronize, keeping buffers that
// dispatched tasks read from reachable while the queue drains.
func (e *Encoder) AddTemporary(v any) {
	e.mu.Lock()
	e.temporaries = append(e.temporaries, v)
	e.mu.Unlock()
}

// Synchronize blocks until every task dispatched before the call has
// finished, then releases retained temporaries.
func (e *Encoder) Synchronize() {
	if !e.closed.Load() {
		var wg sync.WaitGroup
		wg.Add(1)
		e.taskC <- task{barrier: &wg}
		wg.Wait()
	}
	e.mu.Lock()
	e.temporaries = nil
	e.mu.Unlock()
}

// Close drains pending tasks and stops the worker. Calling Close more than
// once is safe; after Close, Dispatch runs tasks inline.
func (e *Encoder) Close() {
	e.closeOnce.Do(func() {
		e.Synchronize()
		e.closed.Store(true)
		close(e.taskC)
	})
}
