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
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// spscRing is the per-producer bounded queue: one goroutine enqueues, only
// the backend worker dequeues.
//
// Lamport ring buffer with cached index optimization: the producer caches
// the consumer's head and vice versa, so the common case touches a single
// cache line.
type spscRing struct {
	_          cpu.CacheLinePad
	head       atomix.Uint64 // consumer reads from here
	_          cpu.CacheLinePad
	cachedTail uint64 // consumer's cached view of tail
	_          cpu.CacheLinePad
	tail       atomix.Uint64 // producer writes here
	_          cpu.CacheLinePad
	cachedHead uint64 // producer's cached view of head
	_          cpu.CacheLinePad
	buffer     []event
	mask       uint64
}

// newSPSCRing creates a ring. Capacity rounds up to the next power of two.
func newSPSCRing(capacity int) *spscRing {
	if capacity < 2 {
		panic("plume: queue capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &spscRing{
		buffer: make([]event, n),
		mask:   n - 1,
	}
}

// enqueue publishes an event (producer only). Returns ErrWouldBlock when the
// ring is full.
func (q *spscRing) enqueue(ev event) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return ErrWouldBlock
		}
	}

	q.buffer[tail&q.mask] = ev
	q.tail.StoreRelease(tail + 1)
	return nil
}

// dequeue removes the oldest event (consumer only). Returns ErrWouldBlock
// when the ring is empty.
func (q *spscRing) dequeue() (event, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return nil, ErrWouldBlock
		}
	}

	ev := q.buffer[head&q.mask]
	q.buffer[head&q.mask] = nil
	q.head.StoreRelease(head + 1)
	return ev, nil
}

func (q *spscRing) cap() int { return int(q.mask + 1) }

func roundToPow2(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}
