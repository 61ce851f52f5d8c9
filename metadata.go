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
	"runtime"
	"strings"
	"sync"
)

// EventKind distinguishes the record families carried through the pipeline.
type EventKind uint8

const (
	// KindLog marks an ordinary log record.
	KindLog EventKind = iota
	// KindFlush marks a flush barrier record.
	KindFlush
)

// MacroMetadata is the immutable descriptor of a single logging call site.
//
// A call site with a fixed level and format has one instance, shared by
// reference between every record that site produces; a site whose level or
// format varies gets a fresh instance for each record that does not match the
// interned one. The backend treats Format as opaque text
// handed to the message formatter.
type MacroMetadata struct {
	Pathname     string
	File         string
	Function     string
	Format       string
	Line         int
	Level        Level
	Kind         EventKind
	IsStructured bool
	IsPrintf     bool
	IsBacktrace  bool
}

// NewMacroMetadata builds a call-site descriptor. File is derived from
// pathname by searching for the last path separator.
func NewMacroMetadata(pathname string, line int, function, format string, level Level) *MacroMetadata {
	return &MacroMetadata{
		Pathname: pathname,
		File:     baseName(pathname),
		Function: function,
		Format:   format,
		Line:     line,
		Level:    level,
		Kind:     KindLog,
	}
}

// baseName returns the short portion of a path, after the last separator.
// Both separators are handled so records from Windows builds stay short.
func baseName(pathname string) string {
	if idx := strings.LastIndexByte(pathname, '/'); idx >= 0 {
		return pathname[idx+1:]
	}
	if idx := strings.LastIndexByte(pathname, '\\'); idx >= 0 {
		return pathname[idx+1:]
	}
	return pathname
}

// callSiteCache interns MacroMetadata per program counter so the hot logging
// path resolves a call site to a shared descriptor without allocating.
var callSiteCache sync.Map // uintptr -> *MacroMetadata

// metadataForCallSite resolves the descriptor for the caller at the given
// skip depth, creating and caching it on first use.
func metadataForCallSite(skip int, format string, level Level, printf, structured, backtrace bool) *MacroMetadata {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return &MacroMetadata{
			Format: format, Level: level, Kind: KindLog,
			IsPrintf: printf, IsStructured: structured, IsBacktrace: backtrace,
		}
	}

	cached, found := callSiteCache.Load(pc)
	if found {
		meta := cached.(*MacroMetadata)
		// A site logging through a dynamic level or a format held in a
		// variable cannot share the interned descriptor.
		if meta.Format == format && meta.Level == level && meta.IsBacktrace == backtrace {
			return meta
		}
	}

	fn := ""
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
		if idx := strings.LastIndexByte(fn, '/'); idx >= 0 {
			fn = fn[idx+1:]
		}
	}

	meta := NewMacroMetadata(file, line, fn, format, level)
	meta.IsPrintf = printf
	meta.IsStructured = structured
	meta.IsBacktrace = backtrace
	if found {
		// The interned descriptor belongs to another level or format; this
		// record gets its own.
		return meta
	}
	actual, _ := callSiteCache.LoadOrStore(pc, meta)
	return actual.(*MacroMetadata)
}
