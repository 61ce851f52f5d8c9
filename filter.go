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

import "sync/atomic"

// Filter is a pure predicate applied by the backend before a handler writes
// a record. Returning false suppresses the record for that handler.
type Filter interface {
	// Name identifies the filter; names are unique per handler.
	Name() string

	// Filter decides whether the record passes. It receives the producing
	// thread id, the resolved timestamp, the call-site metadata and the
	// already formatted bytes.
	Filter(threadID string, ns int64, meta *MacroMetadata, formatted []byte) bool
}

// logLevelFilterName is the distinguished name Handler.SetLogLevel installs
// its filter under.
const logLevelFilterName = "__log_level_filter"

// LogLevelFilter drops records below a dynamically adjustable level.
type LogLevelFilter struct {
	level atomic.Uint32
}

// NewLogLevelFilter returns a filter passing records at or above level.
func NewLogLevelFilter(level Level) *LogLevelFilter {
	f := &LogLevelFilter{}
	f.SetLogLevel(level)
	return f
}

func (f *LogLevelFilter) Name() string { return logLevelFilterName }

func (f *LogLevelFilter) Filter(_ string, _ int64, meta *MacroMetadata, _ []byte) bool {
	return meta.Level >= Level(uint8(f.level.Load()))
}

// SetLogLevel changes the threshold.
func (f *LogLevelFilter) SetLogLevel(level Level) { f.level.Store(uint32(level)) }

// LogLevel reads the current threshold.
func (f *LogLevelFilter) LogLevel() Level { return Level(uint8(f.level.Load())) }

// FilterFunc adapts a plain function into a named Filter.
type FilterFunc struct {
	FilterName string
	Fn         func(threadID string, ns int64, meta *MacroMetadata, formatted []byte) bool
}

func (f FilterFunc) Name() string { return f.FilterName }

func (f FilterFunc) Filter(threadID string, ns int64, meta *MacroMetadata, formatted []byte) bool {
	return f.Fn(threadID, ns, meta, formatted)
}
