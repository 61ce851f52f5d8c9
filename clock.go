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

// ClockMode selects the timestamp source used on the producer hot path.
type ClockMode uint8

const (
	// ClockWall captures wall-clock nanoseconds since the Unix epoch on every
	// record. Conversion on the backend is the identity.
	ClockWall ClockMode = iota
	// ClockMonotonic captures a monotonic reading on the producer and lets
	// the backend resolve it to wall-clock nanoseconds through the configured
	// TimestampConverter. This keeps the producer free of clock adjustments.
	ClockMonotonic
)

// TimestampConverter resolves a capture stamp to nanoseconds since the Unix
// epoch. It runs on the backend thread only.
type TimestampConverter func(capture uint64) int64

// captureClock produces the raw stamp stored in every event at construction
// on the producer goroutine.
type captureClock struct {
	mode ClockMode
	// origin pair taken at startup, used to convert monotonic readings.
	wallOrigin int64
	monoOrigin time.Time
}

func newCaptureClock(mode ClockMode) *captureClock {
	now := time.Now()
	return &captureClock{
		mode:       mode,
		wallOrigin: now.UnixNano(),
		monoOrigin: now,
	}
}

// capture returns the raw stamp for a new event.
func (c *captureClock) capture() uint64 {
	if c.mode == ClockWall {
		return uint64(time.Now().UnixNano())
	}
	// time.Since reads the monotonic clock; no wall adjustments on this path.
	return uint64(time.Since(c.monoOrigin))
}

// converter returns the default resolution function matching the mode. A
// user-provided TimestampConverter in the Config takes precedence.
func (c *captureClock) converter() TimestampConverter {
	if c.mode == ClockWall {
		return func(capture uint64) int64 { return int64(capture) }
	}
	origin := c.wallOrigin
	return func(capture uint64) int64 { return origin + int64(capture) }
}
