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
	"sync/atomic"
)

// Handler is one output target: a pattern formatter, a filter chain and a
// sink. The backend thread is the only caller of Write, Flush and
// ApplyFilters; AddFilter and SetLogLevel may be called from anywhere.
type Handler interface {
	// Write sends an already formatted record to the sink.
	Write(formatted []byte, ns int64, level Level)

	// Flush blocks until the sink has persisted all previously written bytes.
	Flush() error

	// Formatter returns the handler's pattern formatter.
	Formatter() *PatternFormatter

	// ApplyFilters runs the filter chain; the record is written only when
	// every filter passes.
	ApplyFilters(threadID string, ns int64, meta *MacroMetadata, formatted []byte) bool

	// AddFilter registers a predicate. Filter names are unique per handler.
	AddFilter(f Filter) error

	// SetLogLevel installs or updates the handler's LogLevelFilter.
	SetLogLevel(level Level)

	// GetLogLevel reports the LogLevelFilter threshold, TraceL3Level when no
	// level was ever set.
	GetLogLevel() Level
}

// baseHandler carries the formatter and the two-layer filter chain shared by
// every concrete handler.
//
// Filters are double buffered: registration appends to the locked owning
// slice and raises newFilter; the backend refreshes its local, lock-free
// view before applying. The hot path costs one atomic load of the flag; the
// mutex is taken only when a refresh actually happens.
type baseHandler struct {
	formatter *PatternFormatter

	localFilters []Filter

	mu            sync.Mutex
	globalFilters []Filter
	newFilter     atomic.Bool
}

func newBaseHandler() *baseHandler {
	formatter, err := NewPatternFormatter(DefaultPattern, DefaultTimestampPattern, TimezoneLocal)
	if err != nil {
		// The default pattern is a constant; failing to parse it is a bug.
		panic(err)
	}
	return &baseHandler{formatter: formatter}
}

func (h *baseHandler) Formatter() *PatternFormatter { return h.formatter }

// SetPattern replaces the handler's formatter.
func (h *baseHandler) SetPattern(pattern, timestampPattern string, tz Timezone) error {
	formatter, err := NewPatternFormatter(pattern, timestampPattern, tz)
	if err != nil {
		return err
	}
	h.formatter = formatter
	return nil
}

func (h *baseHandler) AddFilter(f Filter) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.globalFilters {
		if existing.Name() == f.Name() {
			return ErrDuplicateFilter
		}
	}
	h.globalFilters = append(h.globalFilters, f)
	h.newFilter.Store(true)
	return nil
}

func (h *baseHandler) SetLogLevel(level Level) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.globalFilters {
		if existing.Name() == logLevelFilterName {
			existing.(*LogLevelFilter).SetLogLevel(level)
			return
		}
	}
	h.globalFilters = append(h.globalFilters, NewLogLevelFilter(level))
	h.newFilter.Store(true)
}

func (h *baseHandler) GetLogLevel() Level {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.globalFilters {
		if existing.Name() == logLevelFilterName {
			return existing.(*LogLevelFilter).LogLevel()
		}
	}
	return TraceL3Level
}

func (h *baseHandler) ApplyFilters(threadID string, ns int64, meta *MacroMetadata, formatted []byte) bool {
	if h.newFilter.Load() {
		h.mu.Lock()
		h.localFilters = append(h.localFilters[:0], h.globalFilters...)
		h.newFilter.Store(false)
		h.mu.Unlock()
	}

	for _, f := range h.localFilters {
		if !f.Filter(threadID, ns, meta, formatted) {
			return false
		}
	}
	return true
}
