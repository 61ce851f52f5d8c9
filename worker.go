// Copyright (c) 2026 plume authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package plume

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/spin"
)

// dequeueBatch bounds how many events one queue may deliver before the
// worker moves to the next, so one chatty producer cannot starve the rest.
const dequeueBatch = 256

// backend is the single worker that drains every producer queue and owns all
// backend-exclusive state: the arena, the backtrace store and the handlers'
// local filter views. Nothing here is safe to touch from any other
// goroutine.
type backend struct {
	cfg       Config
	registry  *loggerRegistry
	contexts  *threadContextRegistry
	arena     *Arena
	backtrace *backtraceStore
	convertFn TimestampConverter

	localContexts []*threadContext

	stop chan struct{}
	done chan struct{}
}

func newBackend(cfg Config, registry *loggerRegistry, contexts *threadContextRegistry, convertFn TimestampConverter) *backend {
	arena := NewArena()
	return &backend{
		cfg:       cfg,
		registry:  registry,
		contexts:  contexts,
		arena:     arena,
		backtrace: newBacktraceStore(arena),
		convertFn: convertFn,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (b *backend) start() {
	go b.run()
}

// requestStop asks the worker to drain everything and exit; returns once the
// worker is gone.
func (b *backend) requestStop() {
	close(b.stop)
	<-b.done
}

func (b *backend) convert(capture uint64) int64 {
	return b.convertFn(capture)
}

// activeHandlers collects the distinct handlers across every registered
// logger.
func (b *backend) activeHandlers() []Handler {
	return b.registry.activeHandlers()
}

func (b *backend) reportError(err error) {
	internalError(err)
}

func (b *backend) run() {
	defer close(b.done)

	sw := spin.Wait{}
	idle := 0
	for {
		busy := b.drainOnce()

		select {
		case <-b.stop:
			// Cooperative shutdown: every remaining event in every queue is
			// processed before the handlers are released.
			for b.drainOnce() {
			}
			b.finalFlush()
			b.backtrace.releaseAll()
			return
		default:
		}

		if busy {
			sw = spin.Wait{}
			idle = 0
			continue
		}

		// Nothing ready: spin briefly, then yield the thread.
		if idle < 64 {
			sw.Once()
			idle++
		} else {
			time.Sleep(b.cfg.BackendSleep)
		}
	}
}

// drainOnce makes one pass over every producer queue, processing up to a
// batch per queue. Detached queues are dropped once empty.
func (b *backend) drainOnce() bool {
	b.localContexts = b.contexts.snapshot(b.localContexts)

	busy := false
	for _, tc := range b.localContexts {
		threadName := ""
		if n := tc.name.Load(); n != nil {
			threadName = *n
		}

		// Read the flag before draining: once it is seen set, every event the
		// producer enqueued before detaching is visible to the drain below.
		detached := tc.detached.Load()

		drained := 0
		for drained < dequeueBatch {
			ev, err := tc.queue.dequeue()
			if err != nil {
				break
			}
			b.processEvent(ev, tc.id, threadName)
			drained++
		}
		if drained > 0 {
			busy = true
		}

		// drained < batch means the loop stopped on an empty queue; a
		// detached producer enqueues nothing further, so the context can go
		// away. Its id and name live on in any stored backtrace entries.
		if detached && drained < dequeueBatch {
			b.contexts.remove(tc)
		}
	}
	return busy
}

// processEvent shields the worker from a panicking handler or filter; the
// worker must outlive any single bad record.
func (b *backend) processEvent(ev event, threadID, threadName string) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			fmt.Fprintf(os.Stderr, "plume: recovered while processing a record: %v\n%s\n", r, stack[:n])
		}
	}()
	ev.process(b, threadID, threadName)
}

func (b *backend) finalFlush() {
	for _, h := range b.activeHandlers() {
		if err := h.Flush(); err != nil {
			internalError(err)
		}
	}
}

var (
	_internalErrMu   sync.Mutex
	_lastInternalErr string
)

// internalError reports a backend-side failure to stderr, deduplicating
// repeats so a failing sink does not spam.
func internalError(err error) {
	if err == nil {
		return
	}
	_internalErrMu.Lock()
	defer _internalErrMu.Unlock()
	if _lastInternalErr == err.Error() {
		return
	}
	_lastInternalErr = err.Error()
	fmt.Fprintf(os.Stderr, "plume: logging error: %v\n", err)
}
