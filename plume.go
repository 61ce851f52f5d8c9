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

// Package plume is an asynchronous, low-latency logging library. Producer
// goroutines capture records into per-producer lock-free queues; a single
// backend worker drains them, formats them, runs user filters and writes
// them through handlers. The producer hot path performs no I/O and no
// formatting.
package plume

import (
	"sync"
	"sync/atomic"
)

// LoggingSystem owns the whole pipeline: the clock, the producer context
// registry, the logger registry and the backend worker. Most applications
// use the package-level default system; libraries that want isolation can
// run their own.
type LoggingSystem struct {
	cfg      Config
	clock    *captureClock
	contexts *threadContextRegistry
	registry *loggerRegistry
	backend  *backend

	stopped atomic.Bool
}

// NewLoggingSystem builds a system and starts its backend worker.
func NewLoggingSystem(cfg Config) *LoggingSystem {
	cfg.applyDefaults()

	sys := &LoggingSystem{
		cfg:      cfg,
		clock:    newCaptureClock(cfg.Clock),
		contexts: newThreadContextRegistry(cfg.QueueCapacity),
	}
	sys.registry = newLoggerRegistry(sys, cfg.Handlers)

	converter := cfg.Converter
	if converter == nil {
		converter = sys.clock.converter()
	}
	sys.backend = newBackend(cfg, sys.registry, sys.contexts, converter)
	sys.backend.start()
	return sys
}

// Stop shuts the backend down cooperatively: every queued record across
// every producer is processed and every handler flushed before Stop returns.
func (s *LoggingSystem) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		s.backend.requestStop()
	}
}

// Flush enqueues a barrier and blocks until the backend has processed every
// record this goroutine enqueued before it and flushed every handler.
func (s *LoggingSystem) Flush() {
	ev := &flushEvent{done: make(chan struct{}), ts: s.clock.capture()}
	s.contexts.current().push(ev, s.cfg.Overflow)
	ev.wait()
}

// RootLogger returns the root logger.
func (s *LoggingSystem) RootLogger() *Logger { return s.registry.rootLogger() }

// GetLogger returns a registered logger by name.
func (s *LoggingSystem) GetLogger(name string) (*Logger, bool) {
	return s.registry.get(name)
}

// NewLogger registers a named logger. Without handlers it inherits the root
// logger's.
func (s *LoggingSystem) NewLogger(name string, handlers ...Handler) (*Logger, error) {
	return s.registry.create(s, name, handlers)
}

// SetThreadName labels the calling goroutine in formatted records.
func (s *LoggingSystem) SetThreadName(name string) {
	s.contexts.setCurrentName(name)
}

// DeregisterCurrentProducer detaches the calling goroutine's queue. Call it
// from goroutines that log and then exit, so the backend can release their
// queues once drained.
func (s *LoggingSystem) DeregisterCurrentProducer() {
	s.contexts.deregisterCurrent()
}

// Package-level default system, initialized on first use or explicitly via
// Start.
var (
	_defaultSystem     atomic.Pointer[LoggingSystem]
	_defaultSystemOnce sync.Once
)

// Start initializes the package-level system with cfg. Calling Start after
// the default system exists replaces it; the previous one is stopped.
func Start(cfg Config) *LoggingSystem {
	sys := NewLoggingSystem(cfg)
	if old := _defaultSystem.Swap(sys); old != nil {
		old.Stop()
	}
	return sys
}

// defaultSystem returns the package-level system, creating one with default
// configuration when none exists.
func defaultSystem() *LoggingSystem {
	sys := _defaultSystem.Load()
	if sys == nil {
		_defaultSystemOnce.Do(func() {
			_defaultSystem.CompareAndSwap(nil, NewLoggingSystem(Config{}))
		})
		sys = _defaultSystem.Load()
	}
	return sys
}

// Stop tears the package-level system down, draining every queue.
func Stop() { defaultSystem().Stop() }

// Flush blocks until everything this goroutine logged so far is written and
// every handler flushed.
func Flush() { defaultSystem().Flush() }

// RootLogger returns the default system's root logger.
func RootLogger() *Logger { return defaultSystem().RootLogger() }

// GetLogger returns a logger registered on the default system.
func GetLogger(name string) (*Logger, bool) { return defaultSystem().GetLogger(name) }

// NewLogger registers a named logger on the default system.
func NewLogger(name string, handlers ...Handler) (*Logger, error) {
	return defaultSystem().NewLogger(name, handlers...)
}

// SetThreadName labels the calling goroutine on the default system.
func SetThreadName(name string) { defaultSystem().SetThreadName(name) }
