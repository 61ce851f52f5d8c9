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

import "time"

// OverflowPolicy dictates producer behavior when its queue fills up.
type OverflowPolicy uint8

const (
	// OverflowBlock pauses the producer until the backend frees a slot. No
	// records are lost but producer latency spikes under sustained pressure.
	OverflowBlock OverflowPolicy = iota
	// OverflowDrop discards new records until space is available. Producer
	// latency stays bounded at the cost of completeness. Flush barriers are
	// never dropped.
	OverflowDrop
)

// Config controls the logging system. The zero value is usable; defaults
// fill in at Start.
type Config struct {
	// Handlers are the root logger's output targets. Defaults to a
	// colorized stdout handler.
	Handlers []Handler

	// QueueCapacity is the per-producer queue size in events, rounded up to
	// a power of two. Defaults to 8192.
	QueueCapacity int

	// Overflow dictates behavior when a producer queue fills up.
	Overflow OverflowPolicy

	// Clock selects the capture timestamp source.
	Clock ClockMode

	// Converter overrides the capture-to-wallclock resolution. Defaults to
	// the conversion matching the clock mode.
	Converter TimestampConverter

	// BackendSleep is how long the worker yields when every queue is empty.
	// Defaults to 300 microseconds.
	BackendSleep time.Duration
}

func (c *Config) applyDefaults() {
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 8192
	}
	if c.BackendSleep == 0 {
		c.BackendSleep = 300 * time.Microsecond
	}
	if len(c.Handlers) == 0 {
		c.Handlers = []Handler{StdoutHandler()}
	}
}
