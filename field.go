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
	"math"
	"time"
)

type FieldType uint8

const (
	// StringType indicates a string field.
	StringType FieldType = iota
	// IntType indicates an integer field.
	IntType
	// UintType indicates an unsigned integer field.
	UintType
	// FloatType indicates a float64 field.
	FloatType
	// BoolType indicates a boolean field.
	BoolType
	// ErrorType indicates an error field.
	ErrorType
	// TimeType indicates a time.Time field.
	TimeType
	// DurationType indicates a time.Duration field.
	DurationType
	// BytesType indicates a byte slice field, copied at capture.
	BytesType
	// AnyType indicates an arbitrary value rendered through formatAny.
	AnyType
)

// Field is a strongly typed key-value pair attached to a structured record.
//
// The constructors promote at capture: anything that references
// producer-owned memory (byte slices, error values) is copied or rendered
// into an owned form on the calling goroutine, so a Field never dangles by
// the time the backend formats it. Scalars pack into the integer slot —
// bools as 0/1, times as UnixNano, floats as their IEEE bits — which keeps
// capture allocation-free. The wire codec stores field values as their
// rendered strings.
type Field struct {
	Key  string
	Str  string
	Any  any
	Int  int64
	Type FieldType
}

func String(key, val string) Field { return Field{Key: key, Type: StringType, Str: val} }

func Int(key string, val int) Field { return Field{Key: key, Type: IntType, Int: int64(val)} }

func Int64(key string, val int64) Field { return Field{Key: key, Type: IntType, Int: val} }

func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: UintType, Int: int64(val)}
}

func Float64(key string, val float64) Field {
	return Field{Key: key, Type: FloatType, Int: int64(math.Float64bits(val))}
}

func Bool(key string, val bool) Field {
	var i int64
	if val {
		i = 1
	}
	return Field{Key: key, Type: BoolType, Int: i}
}

func Time(key string, val time.Time) Field {
	return Field{Key: key, Type: TimeType, Int: val.UnixNano()}
}

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Int: int64(val)}
}

// Err renders the error on the calling goroutine; the error value itself
// does not travel to the backend.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Type: ErrorType, Str: "<nil>"}
	}
	return Field{Key: "error", Type: ErrorType, Str: err.Error()}
}

// Bytes copies val so the caller may reuse its slice immediately.
func Bytes(key string, val []byte) Field {
	owned := make([]byte, len(val))
	copy(owned, val)
	return Field{Key: key, Type: BytesType, Any: owned}
}

func Any(key string, val any) Field { return Field{Key: key, Type: AnyType, Any: val} }

// value renders the field's value as a string for formatting.
func (f *Field) value() string {
	switch f.Type {
	case StringType, ErrorType:
		return f.Str
	case IntType, UintType, FloatType, BoolType, TimeType, DurationType:
		return formatFieldInt(f)
	case BytesType:
		return string(f.Any.([]byte))
	default:
		return formatAny(f.Any)
	}
}
