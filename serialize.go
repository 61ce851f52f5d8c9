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
	"encoding/binary"
	"math"
	"time"
)

// Wire codec for cloned records. When a record is copied into the arena the
// captured arguments and fields are flattened to this self-describing byte
// form. Everything is stored by value; in particular strings and byte slices
// are copied whole, so a stored record never references producer memory.

type wireTag byte

const (
	wireNil wireTag = iota
	wireBool
	wireInt64
	wireUint64
	wireFloat64
	wireString
	wireBytes
	wireTime
)

// appendValue encodes one captured argument. Values without a dedicated tag
// are rendered to their display string first.
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case nil:
		return append(buf, byte(wireNil))
	case bool:
		b := byte(0)
		if val {
			b = 1
		}
		return append(append(buf, byte(wireBool)), b)
	case int:
		return appendTagged(buf, wireInt64, uint64(int64(val)))
	case int8:
		return appendTagged(buf, wireInt64, uint64(int64(val)))
	case int16:
		return appendTagged(buf, wireInt64, uint64(int64(val)))
	case int32:
		return appendTagged(buf, wireInt64, uint64(int64(val)))
	case int64:
		return appendTagged(buf, wireInt64, uint64(val))
	case uint:
		return appendTagged(buf, wireUint64, uint64(val))
	case uint8:
		return appendTagged(buf, wireUint64, uint64(val))
	case uint16:
		return appendTagged(buf, wireUint64, uint64(val))
	case uint32:
		return appendTagged(buf, wireUint64, uint64(val))
	case uint64:
		return appendTagged(buf, wireUint64, val)
	case float32:
		return appendTagged(buf, wireFloat64, math.Float64bits(float64(val)))
	case float64:
		return appendTagged(buf, wireFloat64, math.Float64bits(val))
	case string:
		return appendBlob(buf, wireString, []byte(val))
	case []byte:
		return appendBlob(buf, wireBytes, val)
	case time.Time:
		return appendTagged(buf, wireTime, uint64(val.UnixNano()))
	default:
		return appendBlob(buf, wireString, []byte(formatAny(v)))
	}
}

func appendTagged(buf []byte, tag wireTag, v uint64) []byte {
	buf = append(buf, byte(tag))
	return binary.AppendUvarint(buf, v)
}

func appendBlob(buf []byte, tag wireTag, v []byte) []byte {
	buf = append(buf, byte(tag))
	buf = binary.AppendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}

// readValue decodes one value and returns the remaining bytes.
func readValue(data []byte) (any, []byte) {
	tag := wireTag(data[0])
	data = data[1:]
	switch tag {
	case wireNil:
		return nil, data
	case wireBool:
		return data[0] == 1, data[1:]
	case wireInt64:
		v, n := binary.Uvarint(data)
		return int64(v), data[n:]
	case wireUint64:
		v, n := binary.Uvarint(data)
		return v, data[n:]
	case wireFloat64:
		v, n := binary.Uvarint(data)
		return math.Float64frombits(v), data[n:]
	case wireString:
		length, n := binary.Uvarint(data)
		data = data[n:]
		return string(data[:length]), data[length:]
	case wireBytes:
		length, n := binary.Uvarint(data)
		data = data[n:]
		owned := make([]byte, length)
		copy(owned, data[:length])
		return owned, data[length:]
	case wireTime:
		v, n := binary.Uvarint(data)
		return time.Unix(0, int64(v)), data[n:]
	default:
		panic("plume: corrupt stored record")
	}
}

// encodeRecord flattens a record's arguments and fields.
func encodeRecord(buf []byte, args []any, fields []Field) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(args)))
	for _, a := range args {
		buf = appendValue(buf, a)
	}
	buf = binary.AppendUvarint(buf, uint64(len(fields)))
	for i := range fields {
		f := &fields[i]
		buf = appendBlob(buf, wireString, []byte(f.Key))
		buf = appendBlob(buf, wireString, []byte(f.value()))
	}
	return buf
}

// decodeRecord reverses encodeRecord. Field values come back as strings;
// the display pipeline needs nothing richer.
func decodeRecord(data []byte) (args []any, fields []Field) {
	count, n := binary.Uvarint(data)
	data = data[n:]
	args = make([]any, 0, count)
	for i := uint64(0); i < count; i++ {
		var v any
		v, data = readValue(data)
		args = append(args, v)
	}

	count, n = binary.Uvarint(data)
	data = data[n:]
	fields = make([]Field, 0, count)
	for i := uint64(0); i < count; i++ {
		var key, val any
		key, data = readValue(data)
		val, data = readValue(data)
		fields = append(fields, String(key.(string), val.(string)))
	}
	return args, fields
}
