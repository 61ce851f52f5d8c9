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

// event is what travels through a producer queue. Construction happens on
// the producer goroutine (capturing the timestamp); process runs on the
// backend worker only.
type event interface {
	stamp() uint64
	process(b *backend, threadID, threadName string)
}

// logEvent is an ordinary or backtrace log record. The distinction lives in
// the call-site metadata; backtrace records are cloned into the ring instead
// of being written.
type logEvent struct {
	logger *Logger
	meta   *MacroMetadata
	args   []any
	fields []Field
	ts     uint64
}

func (e *logEvent) stamp() uint64 { return e.ts }

func (e *logEvent) process(b *backend, threadID, threadName string) {
	if e.meta.IsBacktrace {
		b.backtrace.store(e.logger.name, threadID, e.cloneInto(b.arena))
		return
	}

	ns := b.convert(e.ts)
	writeRecordToHandlers(b, e.logger, e.meta, threadID, threadName, ns, e.args, e.fields)

	// A severe enough record also drains the logger's backtrace ring.
	if e.meta.Level >= e.logger.backtraceFlushLevel.Level() {
		b.backtrace.process(e.logger.name, func(storedThreadID string, stored *storedEvent) {
			stored.replay(b, storedThreadID)
		})
	}
}

// cloneInto copies the record into the arena. The captured arguments are
// flattened through the wire codec, so the clone owns every byte it needs.
func (e *logEvent) cloneInto(a *Arena) *storedEvent {
	scratch := getScratch()
	scratch.B = encodeRecord(scratch.B, e.args, e.fields)

	block := a.Allocate(len(scratch.B))
	copy(block.Bytes(), scratch.B)

	stored := &storedEvent{
		block:   block,
		dataLen: len(scratch.B),
		logger:  e.logger,
		meta:    e.meta,
		ts:      e.ts,
	}
	putScratch(scratch)
	return stored
}

// storedEvent is a logEvent cloned into the arena for deferred replay. The
// block holds the encoded arguments; releasing the event returns the block.
type storedEvent struct {
	block   *Block
	dataLen int
	logger  *Logger
	meta    *MacroMetadata
	ts      uint64
}

func (s *storedEvent) replay(b *backend, threadID string) {
	args, fields := decodeRecord(s.block.Bytes()[:s.dataLen])
	ns := b.convert(s.ts)
	writeRecordToHandlers(b, s.logger, s.meta, threadID, "", ns, args, fields)
}

func (s *storedEvent) release(a *Arena) {
	a.Deallocate(s.block)
	s.block = nil
}

// writeRecordToHandlers runs the full format, filter, write pipeline for one
// record across every handler of its logger.
func writeRecordToHandlers(b *backend, l *Logger, meta *MacroMetadata, threadID, threadName string,
	ns int64, args []any, fields []Field) {

	msg := formatMessage(meta, args, fields)

	for _, h := range l.handlers {
		formatted := h.Formatter().Format(ns, threadID, threadName, _pid, l.name, meta, fields, msg)
		if h.ApplyFilters(threadID, ns, meta, formatted.B) {
			h.Write(formatted.B, ns, meta.Level)
		}
		putBuffer(formatted)
	}
}

// backtraceNoCapacity marks a backtraceEvent as a flush request rather than
// a configure request.
const backtraceNoCapacity = ^uint32(0)

// backtraceEvent either installs a ring capacity for a logger or replays and
// drains its ring, depending on whether capacity carries a real value.
type backtraceEvent struct {
	logger   *Logger
	capacity uint32
	ts       uint64
}

func (e *backtraceEvent) stamp() uint64 { return e.ts }

func (e *backtraceEvent) process(b *backend, _, _ string) {
	if e.capacity != backtraceNoCapacity {
		b.backtrace.setCapacity(e.logger.name, e.capacity)
		return
	}

	b.backtrace.process(e.logger.name, func(storedThreadID string, stored *storedEvent) {
		stored.replay(b, storedThreadID)
	})
}

// flushEvent is a barrier: the backend flushes every active handler, then
// wakes the producer waiting on done.
type flushEvent struct {
	done chan struct{}
	ts   uint64
}

func (e *flushEvent) stamp() uint64 { return e.ts }

func (e *flushEvent) process(b *backend, _, _ string) {
	for _, h := range b.activeHandlers() {
		if err := h.Flush(); err != nil {
			b.reportError(err)
		}
	}
	close(e.done)
}

func (e *flushEvent) wait() { <-e.done }
