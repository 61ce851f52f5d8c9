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

// backtraceEntry pairs a stored record with an owned copy of the producing
// thread id; the producer may be gone by the time the ring is replayed.
type backtraceEntry struct {
	threadID string
	stored   *storedEvent
}

type backtraceRing struct {
	capacity uint32
	index    uint32
	entries  []backtraceEntry
}

// backtraceStore keeps a bounded ring of recent backtrace records per logger
// name, replayed on demand. Backend-exclusive; records live in the arena.
type backtraceStore struct {
	rings map[string]*backtraceRing
	arena *Arena
}

func newBacktraceStore(arena *Arena) *backtraceStore {
	return &backtraceStore{
		rings: make(map[string]*backtraceRing),
		arena: arena,
	}
}

// setCapacity installs or resets a ring. Reconfiguring with the same
// capacity is a no-op and preserves existing contents; a different capacity
// drops them.
func (bs *backtraceStore) setCapacity(loggerName string, capacity uint32) {
	ring, ok := bs.rings[loggerName]
	if !ok {
		bs.rings[loggerName] = &backtraceRing{
			capacity: capacity,
			entries:  make([]backtraceEntry, 0, capacity),
		}
		return
	}

	if ring.capacity != capacity {
		bs.dropEntries(ring)
		ring.capacity = capacity
		ring.index = 0
	}
}

// store clones event ownership into the ring. The ring must have been
// configured first; storing into an unconfigured logger is a misuse of the
// API and panics.
func (bs *backtraceStore) store(loggerName, threadID string, stored *storedEvent) {
	ring, ok := bs.rings[loggerName]
	if !ok {
		panic("plume: Logger.InitBacktrace must be called before logging backtrace records for " + loggerName)
	}

	if uint32(len(ring.entries)) < ring.capacity {
		// Still growing toward capacity.
		ring.entries = append(ring.entries, backtraceEntry{threadID: threadID, stored: stored})
		return
	}

	ring.entries[ring.index].stored.release(bs.arena)
	ring.entries[ring.index] = backtraceEntry{threadID: threadID, stored: stored}
	if ring.index < ring.capacity-1 {
		ring.index++
	} else {
		ring.index = 0
	}
}

// process invokes cb for every stored entry in insertion order, oldest
// first, then drains the ring.
func (bs *backtraceStore) process(loggerName string, cb func(threadID string, stored *storedEvent)) {
	ring, ok := bs.rings[loggerName]
	if !ok {
		return
	}

	index := ring.index
	for range ring.entries {
		entry := &ring.entries[index]
		cb(entry.threadID, entry.stored)

		if index < uint32(len(ring.entries))-1 {
			index++
		} else {
			index = 0
		}
	}

	bs.dropEntries(ring)
	ring.index = 0
}

// clear truncates a logger's ring, keeping its capacity.
func (bs *backtraceStore) clear(loggerName string) {
	if ring, ok := bs.rings[loggerName]; ok {
		bs.dropEntries(ring)
		ring.index = 0
	}
}

// releaseAll drains every ring; called on backend shutdown so every arena
// block is returned before the arena goes away.
func (bs *backtraceStore) releaseAll() {
	for _, ring := range bs.rings {
		bs.dropEntries(ring)
		ring.index = 0
	}
}

func (bs *backtraceStore) dropEntries(ring *backtraceRing) {
	for i := range ring.entries {
		ring.entries[i].stored.release(bs.arena)
	}
	ring.entries = ring.entries[:0]
}
