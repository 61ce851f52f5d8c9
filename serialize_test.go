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

func TestRecordCodecOwnsItsBytes(t *testing.T) {
	borrowed := []byte("mutable")
	args := []any{"text", int64(-42), uint64(7), 2.5, true, nil, borrowed}

	encoded := encodeRecord(nil, args, []Field{String("k", "v")})

	// Mutating the producer's slice after encoding must not leak through.
	borrowed[0] = 'X'

	decodedArgs, decodedFields := decodeRecord(encoded)
	if len(decodedArgs) != len(args) {
		t.Fatalf("decoded %d args, want %d", len(decodedArgs), len(args))
	}

	if decodedArgs[0].(string) != "text" {
		t.Errorf("string arg: %v", decodedArgs[0])
	}
	if decodedArgs[1].(int64) != -42 {
		t.Errorf("int arg: %v", decodedArgs[1])
	}
	if decodedArgs[2].(uint64) != 7 {
		t.Errorf("uint arg: %v", decodedArgs[2])
	}
	if decodedArgs[3].(float64) != 2.5 {
		t.Errorf("float arg: %v", decodedArgs[3])
	}
	if decodedArgs[4].(bool) != true {
		t.Errorf("bool arg: %v", decodedArgs[4])
	}
	if decodedArgs[5] != nil {
		t.Errorf("nil arg: %v", decodedArgs[5])
	}
	if got := string(decodedArgs[6].([]byte)); got != "mutable" {
		t.Errorf("bytes arg leaked producer mutation: %q", got)
	}

	if len(decodedFields) != 1 || decodedFields[0].Key != "k" || decodedFields[0].value() != "v" {
		t.Errorf("fields: %+v", decodedFields)
	}
}

func TestCloneIntoArenaRoundTrip(t *testing.T) {
	arena := NewArena()
	meta := &MacroMetadata{Format: "{} {}"}
	ev := &logEvent{meta: meta, args: []any{"a", int64(1)}, ts: 99}

	stored := ev.cloneInto(arena)
	if stored.ts != 99 || stored.meta != meta {
		t.Fatal("clone lost metadata or timestamp")
	}

	args, _ := decodeRecord(stored.block.Bytes()[:stored.dataLen])
	if args[0].(string) != "a" || args[1].(int64) != 1 {
		t.Fatalf("clone args: %v", args)
	}

	stored.release(arena)
	checkConservation(t, arena)
}

func TestLevelRoundTrip(t *testing.T) {
	for l := TraceL3Level; l <= NoneLevel; l++ {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		parsed, err := ParseLevel(string(text))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", text, err)
		}
		if parsed != l {
			t.Errorf("round trip %v -> %q -> %v", l, text, parsed)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestLevelOrdering(t *testing.T) {
	order := []Level{
		TraceL3Level, TraceL2Level, TraceL1Level, DebugLevel, InfoLevel,
		WarningLevel, ErrorLevel, CriticalLevel, BacktraceLevel, NoneLevel,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Fatalf("%v is not below %v", order[i-1], order[i])
		}
	}
}

func TestAtomicLevel(t *testing.T) {
	lvl := NewAtomicLevelAt(WarningLevel)
	if !lvl.Enabled(ErrorLevel) || lvl.Enabled(InfoLevel) {
		t.Fatal("Enabled disagrees with the stored threshold")
	}
	lvl.SetLevel(DebugLevel)
	if lvl.Level() != DebugLevel {
		t.Fatalf("level %v after SetLevel", lvl.Level())
	}
}
