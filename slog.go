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
	"context"
	"log/slog"
)

// SlogHandler adapts a Logger to the standard library's slog.Handler
// interface, so code written against slog flows through the asynchronous
// pipeline.
type SlogHandler struct {
	logger *Logger
	attrs  []Field
	group  string
}

// NewSlogHandler wraps logger for use with slog.New.
func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.ShouldLog(slogLevelToPlume(level))
}

// Handle converts the record's attributes into plume Fields and hands the
// result to LogFields, which captures and enqueues like any other structured
// record. Pre-bound attributes are reused as-is when the record itself
// carries none.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := h.attrs
	if n := r.NumAttrs(); n > 0 {
		fields = make([]Field, len(h.attrs), len(h.attrs)+n)
		copy(fields, h.attrs)
		r.Attrs(func(a slog.Attr) bool {
			fields = append(fields, slogAttrToField(a, h.group))
			return true
		})
	}
	h.logger.LogFields(slogLevelToPlume(r.Level), r.Message, fields...)
	return nil
}

// WithAttrs binds attrs to every future record. Fields are converted once,
// here, so Handle only appends.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]Field, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slogAttrToField(a, h.group))
	}
	return &clone
}

// WithGroup qualifies the keys of subsequently added attributes with a
// dotted prefix.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func slogLevelToPlume(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return ErrorLevel
	case l >= slog.LevelWarn:
		return WarningLevel
	case l >= slog.LevelInfo:
		return InfoLevel
	default:
		return DebugLevel
	}
}

func slogAttrToField(a slog.Attr, group string) Field {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return String(key, a.Value.String())
	case slog.KindInt64:
		return Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return Float64(key, a.Value.Float64())
	case slog.KindBool:
		return Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return Duration(key, a.Value.Duration())
	case slog.KindTime:
		return Time(key, a.Value.Time())
	default:
		return Any(key, a.Value.Any())
	}
}
