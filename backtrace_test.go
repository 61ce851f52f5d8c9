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

import "testing"

func storeRecord(bs *backtraceStore, arena *Arena, logger string, a, b int64) {
	meta := &MacroMetadata{Format: "{} {}", Level: BacktraceLevel, IsBacktrace: true}
	ev := &logEvent{meta: meta, args: []any{a, b}}
	bs.store(logger, "123", ev.cloneInto(arena))
}

func collect(bs *backtraceStore, logger string) [][2]int64 {
	var out [][2]int64
	bs.process(logger, func(_ string, stored *storedEvent) {
		args, _ := decodeRecord(stored.block.Bytes()[:stored.dataLen])
		out = append(out, [2]int64{args[0].(int64), args[1].(int64)})
	})
	return out
}

func TestBacktraceRingWrap(t *testing.T) {
	arena := NewArena()
	bs := newBacktraceStore(arena)

	bs.setCapacity("L1", 5)
	for i := int64(0); i < 12; i++ {
		storeRecord(bs, arena, "L1", i, i*10)
	}

	got := collect(bs, "L1")
	want := [][2]int64{{7, 70}, {8, 80}, {9, 90}, {10, 100}, {11, 110}}
	if len(got) != len(want) {
		t.Fatalf("replayed %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// The ring is drained after processing.
	if again := collect(bs, "L1"); len(again) != 0 {
		t.Fatalf("ring not empty after process: %d records", len(again))
	}
}

func TestBacktraceRingBelowCapacity(t *testing.T) {
	arena := NewArena()
	bs := newBacktraceStore(arena)

	bs.setCapacity("L1", 5)
	for i := int64(0); i < 3; i++ {
		storeRecord(bs, arena, "L1", i, i)
	}

	got := collect(bs, "L1")
	if len(got) != 3 {
		t.Fatalf("replayed %d records, want 3", len(got))
	}
	for i := int64(0); i < 3; i++ {
		if got[i] != [2]int64{i, i} {
			t.Fatalf("record %d out of order: %v", i, got[i])
		}
	}
}

func TestBacktraceReconfigure(t *testing.T) {
	t.Run("different capacity clears", func(t *testing.T) {
		arena := NewArena()
		bs := newBacktraceStore(arena)

		bs.setCapacity("L1", 4)
		for i := int64(0); i < 3; i++ {
			storeRecord(bs, arena, "L1", i, i)
		}
		bs.setCapacity("L1", 6)

		if got := collect(bs, "L1"); len(got) != 0 {
			t.Fatalf("replayed %d records after reconfigure, want 0", len(got))
		}
	})

	t.Run("same capacity preserves", func(t *testing.T) {
		arena := NewArena()
		bs := newBacktraceStore(arena)

		bs.setCapacity("L1", 4)
		for i := int64(0); i < 3; i++ {
			storeRecord(bs, arena, "L1", i, i)
		}
		bs.setCapacity("L1", 4)

		if got := collect(bs, "L1"); len(got) != 3 {
			t.Fatalf("replayed %d records, want 3", len(got))
		}
	})
}

func TestBacktraceStoreWithoutCapacityPanics(t *testing.T) {
	arena := NewArena()
	bs := newBacktraceStore(arena)

	defer func() {
		if recover() == nil {
			t.Fatal("store without setCapacity did not panic")
		}
	}()
	storeRecord(bs, arena, "unconfigured", 1, 2)
}

func TestBacktraceClear(t *testing.T) {
	arena := NewArena()
	bs := newBacktraceStore(arena)

	bs.setCapacity("L1", 4)
	for i := int64(0); i < 4; i++ {
		storeRecord(bs, arena, "L1", i, i)
	}
	bs.clear("L1")

	if got := collect(bs, "L1"); len(got) != 0 {
		t.Fatalf("replayed %d records after clear, want 0", len(got))
	}

	// Capacity survives a clear; storing works without reconfiguring.
	storeRecord(bs, arena, "L1", 9, 9)
	if got := collect(bs, "L1"); len(got) != 1 {
		t.Fatalf("replayed %d records, want 1", len(got))
	}
}

func TestBacktraceProcessUnknownLogger(t *testing.T) {
	bs := newBacktraceStore(NewArena())
	called := false
	bs.process("nope", func(string, *storedEvent) { called = true })
	if called {
		t.Fatal("callback invoked for a logger with no ring")
	}
}

func TestBacktraceArenaBlocksRecycled(t *testing.T) {
	arena := NewArena()
	bs := newBacktraceStore(arena)

	bs.setCapacity("L1", 2)
	for round := 0; round < 20; round++ {
		storeRecord(bs, arena, "L1", int64(round), 0)
	}
	bs.releaseAll()

	// Every block is back on the free list; nothing leaked.
	checkConservation(t, arena)
	checkNoAdjacentFree(t, arena)
	for i := range arena.segments {
		for _, b := range chainBlocks(arena, i) {
			if b.used {
				t.Fatal("arena block still marked used after releaseAll")
			}
		}
	}
}
