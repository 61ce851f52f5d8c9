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
	"sync"
	"testing"
)

type testEvent struct {
	seq uint64
}

func (e *testEvent) stamp() uint64                  { return e.seq }
func (e *testEvent) process(*backend, string, string) {}

func TestSPSCRingCapacityRounding(t *testing.T) {
	tests := []struct{ in, want int }{
		{2, 2}, {3, 4}, {4, 4}, {1000, 1024}, {8192, 8192},
	}
	for _, tt := range tests {
		if got := newSPSCRing(tt.in).cap(); got != tt.want {
			t.Errorf("newSPSCRing(%d).cap() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSPSCRingFIFO(t *testing.T) {
	q := newSPSCRing(8)

	for i := uint64(0); i < 8; i++ {
		if err := q.enqueue(&testEvent{seq: i}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.enqueue(&testEvent{seq: 99}); err != ErrWouldBlock {
		t.Fatalf("enqueue on full ring: got %v, want ErrWouldBlock", err)
	}

	for i := uint64(0); i < 8; i++ {
		ev, err := q.dequeue()
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if ev.(*testEvent).seq != i {
			t.Fatalf("dequeue %d returned seq %d", i, ev.(*testEvent).seq)
		}
	}
	if _, err := q.dequeue(); err != ErrWouldBlock {
		t.Fatalf("dequeue on empty ring: got %v, want ErrWouldBlock", err)
	}
}

func TestSPSCRingConcurrent(t *testing.T) {
	const total = 100000
	q := newSPSCRing(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < total; {
			if q.enqueue(&testEvent{seq: i}) == nil {
				i++
			}
		}
	}()

	next := uint64(0)
	for next < total {
		ev, err := q.dequeue()
		if err != nil {
			continue
		}
		if got := ev.(*testEvent).seq; got != next {
			t.Fatalf("out of order: got seq %d, want %d", got, next)
		}
		next++
	}
	wg.Wait()
}
