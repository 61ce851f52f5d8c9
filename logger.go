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
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

// maxLoggerNameLen bounds logger names so the Logger record stays compact;
// every record carries the name through the formatter.
const maxLoggerNameLen = 32

type levelState struct {
	_   cpu.CacheLinePad
	val atomic.Uint32
	_   cpu.CacheLinePad
}

// Logger is a named configuration: a set of handlers plus two thresholds.
// Name and handlers are written once at registration and immutable after;
// the thresholds are atomic, so a Logger is safe for concurrent use by any
// number of producer goroutines.
type Logger struct {
	level levelState

	name                string
	handlers            []Handler
	backtraceFlushLevel AtomicLevel

	sys *LoggingSystem
}

func newLogger(sys *LoggingSystem, name string, handlers []Handler) *Logger {
	l := &Logger{
		name:     name,
		handlers: handlers,
		sys:      sys,
	}
	l.level.val.Store(uint32(TraceL3Level))
	l.backtraceFlushLevel.SetLevel(NoneLevel)
	return l
}

// Name returns the logger's registered name.
func (l *Logger) Name() string { return l.name }

// ShouldLog reports whether a record at level would be enqueued.
func (l *Logger) ShouldLog(level Level) bool {
	return level >= Level(uint8(l.level.val.Load())) && level < NoneLevel
}

// SetLogLevel changes the producer-side threshold; records below it are
// discarded before any capture work happens.
func (l *Logger) SetLogLevel(level Level) { l.level.val.Store(uint32(level)) }

// LogLevel reads the producer-side threshold.
func (l *Logger) LogLevel() Level { return Level(uint8(l.level.val.Load())) }

// log captures a record and enqueues it on the calling goroutine's queue.
func (l *Logger) log(skip int, level Level, printf, structured, backtrace bool,
	format string, args []any, fields []Field) {

	meta := metadataForCallSite(skip+1, format, level, printf, structured, backtrace)
	ev := &logEvent{
		logger: l,
		meta:   meta,
		args:   promoteArgs(args),
		fields: fields,
		ts:     l.sys.clock.capture(),
	}
	l.sys.contexts.current().push(ev, l.sys.cfg.Overflow)
}

// promoteArgs copies borrowed byte slices so the record owns every byte it
// references once enqueued.
func promoteArgs(args []any) []any {
	for i, a := range args {
		if bs, ok := a.([]byte); ok {
			owned := make([]byte, len(bs))
			copy(owned, bs)
			args[i] = owned
		}
	}
	return args
}

// Log writes a record at level. The format uses positional {} placeholders.
func (l *Logger) Log(level Level, format string, args ...any) {
	if !l.ShouldLog(level) {
		return
	}
	l.log(1, level, false, false, false, format, args, nil)
}

// Logf writes a record at level using printf-style verbs.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if !l.ShouldLog(level) {
		return
	}
	l.log(1, level, true, false, false, format, args, nil)
}

// LogFields writes a structured record at level. The format may reference
// fields by {name}.
func (l *Logger) LogFields(level Level, format string, fields ...Field) {
	if !l.ShouldLog(level) {
		return
	}
	l.log(1, level, false, true, false, format, nil, fields)
}

// LogEvery writes at most one record per minInterval from this call site on
// this goroutine. The interval timer is per-site and per-goroutine, so no
// synchronization is involved.
func (l *Logger) LogEvery(minInterval time.Duration, level Level, format string, args ...any) {
	if !l.ShouldLog(level) {
		return
	}

	pc, _, _, _ := runtime.Caller(1)
	tc := l.sys.contexts.current()
	now := time.Now().UnixNano()
	if now < tc.rateLimits[pc] {
		return
	}
	tc.rateLimits[pc] = now + minInterval.Nanoseconds()

	l.log(1, level, false, false, false, format, args, nil)
}

// Backtrace stores a record in the logger's backtrace ring instead of
// writing it. The ring is replayed by FlushBacktrace or automatically when a
// record at or above the configured flush level is written.
func (l *Logger) Backtrace(format string, args ...any) {
	if !l.ShouldLog(BacktraceLevel) {
		return
	}
	l.log(1, BacktraceLevel, false, false, true, format, args, nil)
}

// InitBacktrace installs a ring of capacity records for this logger and
// arms automatic replay at flushLevel. Pass NoneLevel for manual replay
// only. Must be called before the first Backtrace record.
func (l *Logger) InitBacktrace(capacity uint32, flushLevel Level) {
	l.backtraceFlushLevel.SetLevel(flushLevel)
	ev := &backtraceEvent{logger: l, capacity: capacity, ts: l.sys.clock.capture()}
	l.sys.contexts.current().push(ev, l.sys.cfg.Overflow)
}

// FlushBacktrace replays and drains this logger's backtrace ring.
func (l *Logger) FlushBacktrace() {
	ev := &backtraceEvent{logger: l, capacity: backtraceNoCapacity, ts: l.sys.clock.capture()}
	l.sys.contexts.current().push(ev, l.sys.cfg.Overflow)
}

// TraceL3 writes a record at TraceL3Level.
func (l *Logger) TraceL3(format string, args ...any) {
	if !l.ShouldLog(TraceL3Level) {
		return
	}
	l.log(1, TraceL3Level, false, false, false, format, args, nil)
}

// TraceL2 writes a record at TraceL2Level.
func (l *Logger) TraceL2(format string, args ...any) {
	if !l.ShouldLog(TraceL2Level) {
		return
	}
	l.log(1, TraceL2Level, false, false, false, format, args, nil)
}

// TraceL1 writes a record at TraceL1Level.
func (l *Logger) TraceL1(format string, args ...any) {
	if !l.ShouldLog(TraceL1Level) {
		return
	}
	l.log(1, TraceL1Level, false, false, false, format, args, nil)
}

// Debug writes a record at DebugLevel.
func (l *Logger) Debug(format string, args ...any) {
	if !l.ShouldLog(DebugLevel) {
		return
	}
	l.log(1, DebugLevel, false, false, false, format, args, nil)
}

// Info writes a record at InfoLevel.
func (l *Logger) Info(format string, args ...any) {
	if !l.ShouldLog(InfoLevel) {
		return
	}
	l.log(1, InfoLevel, false, false, false, format, args, nil)
}

// Warning writes a record at WarningLevel.
func (l *Logger) Warning(format string, args ...any) {
	if !l.ShouldLog(WarningLevel) {
		return
	}
	l.log(1, WarningLevel, false, false, false, format, args, nil)
}

// Error writes a record at ErrorLevel.
func (l *Logger) Error(format string, args ...any) {
	if !l.ShouldLog(ErrorLevel) {
		return
	}
	l.log(1, ErrorLevel, false, false, false, format, args, nil)
}

// Critical writes a record at CriticalLevel.
func (l *Logger) Critical(format string, args ...any) {
	if !l.ShouldLog(CriticalLevel) {
		return
	}
	l.log(1, CriticalLevel, false, false, false, format, args, nil)
}

// Debugf writes a printf-style record at DebugLevel.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.ShouldLog(DebugLevel) {
		return
	}
	l.log(1, DebugLevel, true, false, false, format, args, nil)
}

// Infof writes a printf-style record at InfoLevel.
func (l *Logger) Infof(format string, args ...any) {
	if !l.ShouldLog(InfoLevel) {
		return
	}
	l.log(1, InfoLevel, true, false, false, format, args, nil)
}

// Warningf writes a printf-style record at WarningLevel.
func (l *Logger) Warningf(format string, args ...any) {
	if !l.ShouldLog(WarningLevel) {
		return
	}
	l.log(1, WarningLevel, true, false, false, format, args, nil)
}

// Errorf writes a printf-style record at ErrorLevel.
func (l *Logger) Errorf(format string, args ...any) {
	if !l.ShouldLog(ErrorLevel) {
		return
	}
	l.log(1, ErrorLevel, true, false, false, format, args, nil)
}

// Criticalf writes a printf-style record at CriticalLevel.
func (l *Logger) Criticalf(format string, args ...any) {
	if !l.ShouldLog(CriticalLevel) {
		return
	}
	l.log(1, CriticalLevel, true, false, false, format, args, nil)
}

// DebugFields writes a structured record at DebugLevel.
func (l *Logger) DebugFields(format string, fields ...Field) {
	if !l.ShouldLog(DebugLevel) {
		return
	}
	l.log(1, DebugLevel, false, true, false, format, nil, fields)
}

// InfoFields writes a structured record at InfoLevel.
func (l *Logger) InfoFields(format string, fields ...Field) {
	if !l.ShouldLog(InfoLevel) {
		return
	}
	l.log(1, InfoLevel, false, true, false, format, nil, fields)
}

// WarningFields writes a structured record at WarningLevel.
func (l *Logger) WarningFields(format string, fields ...Field) {
	if !l.ShouldLog(WarningLevel) {
		return
	}
	l.log(1, WarningLevel, false, true, false, format, nil, fields)
}

// ErrorFields writes a structured record at ErrorLevel.
func (l *Logger) ErrorFields(format string, fields ...Field) {
	if !l.ShouldLog(ErrorLevel) {
		return
	}
	l.log(1, ErrorLevel, false, true, false, format, nil, fields)
}

// CriticalFields writes a structured record at CriticalLevel.
func (l *Logger) CriticalFields(format string, fields ...Field) {
	if !l.ShouldLog(CriticalLevel) {
		return
	}
	l.log(1, CriticalLevel, false, true, false, format, nil, fields)
}

// loggerRegistry owns every named Logger. Registration is write-once;
// lookups dominate.
type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger
}

func newLoggerRegistry(sys *LoggingSystem, rootHandlers []Handler) *loggerRegistry {
	r := &loggerRegistry{loggers: make(map[string]*Logger)}
	r.root = newLogger(sys, "root", rootHandlers)
	r.loggers["root"] = r.root
	return r
}

func (r *loggerRegistry) rootLogger() *Logger { return r.root }

func (r *loggerRegistry) get(name string) (*Logger, bool) {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	return l, ok
}

// create registers a new named logger. Loggers without handlers inherit the
// root logger's.
func (r *loggerRegistry) create(sys *LoggingSystem, name string, handlers []Handler) (*Logger, error) {
	if len(name) > maxLoggerNameLen {
		return nil, errors.Errorf("plume: logger name %q exceeds %d characters", name, maxLoggerNameLen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.loggers[name]; exists {
		return nil, errors.Errorf("plume: logger %q already exists", name)
	}
	if len(handlers) == 0 {
		handlers = r.root.handlers
	}
	l := newLogger(sys, name, handlers)
	r.loggers[name] = l
	return l, nil
}

// activeHandlers returns the distinct handlers across all loggers.
func (r *loggerRegistry) activeHandlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Handler]bool, len(r.loggers))
	handlers := make([]Handler, 0, len(r.loggers))
	for _, l := range r.loggers {
		for _, h := range l.handlers {
			if !seen[h] {
				seen[h] = true
				handlers = append(handlers, h)
			}
		}
	}
	return handlers
}
