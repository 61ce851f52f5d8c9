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

import "sync"

// The backend churns through bytes in two places: formatting records for
// handlers, and flattening captured arguments through the wire codec before
// an arena clone. The two have very different size profiles, so each gets
// its own pool and recycle bound.

// buffer is a pooled byte slice. The backend takes one per record and
// returns it to its pool once the bytes are written or cloned.
type buffer struct {
	B []byte
}

const (
	// A formatted line plus pattern overhead.
	recordBufferSize = 4 << 10
	recordRecycleMax = 64 << 10

	// A handful of tagged arguments on the clone path.
	scratchBufferSize = 512
	scratchRecycleMax = 16 << 10
)

var recordPool = sync.Pool{
	New: func() any {
		return &buffer{B: make([]byte, 0, recordBufferSize)}
	},
}

var scratchPool = sync.Pool{
	New: func() any {
		return &buffer{B: make([]byte, 0, scratchBufferSize)}
	},
}

func getBuffer() *buffer {
	return recordPool.Get().(*buffer)
}

// putBuffer recycles a record buffer. Oversized buffers are dropped so one
// giant record does not pin memory.
func putBuffer(b *buffer) {
	if cap(b.B) > recordRecycleMax {
		return
	}
	b.B = b.B[:0]
	recordPool.Put(b)
}

// getScratch returns a scratch buffer for wire-encoding a record's
// arguments ahead of an arena clone.
func getScratch() *buffer {
	return scratchPool.Get().(*buffer)
}

func putScratch(b *buffer) {
	if cap(b.B) > scratchRecycleMax {
		return
	}
	b.B = b.B[:0]
	scratchPool.Put(b)
}

func (b *buffer) WriteString(s string) {
	b.B = append(b.B, s...)
}

func (b *buffer) WriteByte(c byte) {
	b.B = append(b.B, c)
}
