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
	"strconv"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/spin"
	"github.com/petermattis/goid"
)

// threadContext is the per-producer-goroutine state: the SPSC queue into the
// backend plus identity the backend copies into replayed records. A context
// is created lazily on the first log from a goroutine.
type threadContext struct {
	queue *spscRing
	gid   int64
	id    string
	name  atomic.Pointer[string]

	detached atomic.Bool

	// rateLimits maps a call-site program counter to the next wall time the
	// site may log. Producer-goroutine private; no synchronization.
	rateLimits map[uintptr]int64
}

// push publishes an event, applying the overflow policy when the ring is
// full. Flush barriers always block: dropping one would hang the producer.
func (tc *threadContext) push(ev event, policy OverflowPolicy) {
	if tc.queue.enqueue(ev) == nil {
		return
	}

	if policy == OverflowDrop {
		if _, ok := ev.(*flushEvent); !ok {
			return
		}
	}

	sw := spin.Wait{}
	for tc.queue.enqueue(ev) != nil {
		sw.Once()
	}
}

// threadContextRegistry tracks every live producer context. Registration is
// rare; the backend keeps a local snapshot and refreshes it only when the
// changed flag is raised, mirroring the handler filter chain.
type threadContextRegistry struct {
	mu       sync.Mutex
	contexts []*threadContext
	byGid    sync.Map // int64 -> *threadContext
	changed  atomic.Bool

	queueCapacity int
}

func newThreadContextRegistry(queueCapacity int) *threadContextRegistry {
	return &threadContextRegistry{queueCapacity: queueCapacity}
}

// current returns the calling goroutine's context, registering one on first
// use.
func (r *threadContextRegistry) current() *threadContext {
	gid := goid.Get()
	if tc, ok := r.byGid.Load(gid); ok {
		return tc.(*threadContext)
	}

	tc := &threadContext{
		queue:      newSPSCRing(r.queueCapacity),
		gid:        gid,
		id:         strconv.FormatInt(gid, 10),
		rateLimits: make(map[uintptr]int64),
	}

	r.mu.Lock()
	r.contexts = append(r.contexts, tc)
	r.mu.Unlock()
	r.byGid.Store(gid, tc)
	r.changed.Store(true)
	return tc
}

// deregisterCurrent detaches the calling goroutine's context. Queued events
// are still drained by the backend before the context is dropped.
func (r *threadContextRegistry) deregisterCurrent() {
	gid := goid.Get()
	if tc, ok := r.byGid.LoadAndDelete(gid); ok {
		tc.(*threadContext).detached.Store(true)
		r.changed.Store(true)
	}
}

// setCurrentName names the calling goroutine's context.
func (r *threadContextRegistry) setCurrentName(name string) {
	r.current().name.Store(&name)
}

// snapshot refreshes the backend's local view when registrations changed.
func (r *threadContextRegistry) snapshot(local []*threadContext) []*threadContext {
	if !r.changed.Load() {
		return local
	}

	r.mu.Lock()
	local = append(local[:0], r.contexts...)
	r.changed.Store(false)
	r.mu.Unlock()
	return local
}

// remove drops a drained, detached context. Backend only.
func (r *threadContextRegistry) remove(tc *threadContext) {
	r.mu.Lock()
	for i, existing := range r.contexts {
		if existing == tc {
			r.contexts = append(r.contexts[:i], r.contexts[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	r.changed.Store(true)
}
