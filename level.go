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
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
)

// Level represents a logging priority.
//
// Higher levels indicate more severe conditions. A Logger discards messages
// with a level lower than its configured minimum.
type Level uint8

const (
	// TraceL3Level is the most verbose trace level.
	TraceL3Level Level = iota
	// TraceL2Level is an intermediate trace level.
	TraceL2Level
	// TraceL1Level is the least verbose trace level.
	TraceL1Level
	// DebugLevel designates fine grained informational events that are most
	// useful to debug an application.
	DebugLevel
	// InfoLevel designates informational messages that highlight the progress
	// of the application at coarse grained level.
	InfoLevel
	// WarningLevel designates potentially harmful situations.
	WarningLevel
	// ErrorLevel designates error events that might still allow the
	// application to continue running.
	ErrorLevel
	// CriticalLevel designates severe error events.
	CriticalLevel
	// BacktraceLevel marks records replayed out of a backtrace ring.
	BacktraceLevel
	// NoneLevel disables logging entirely when used as a threshold.
	NoneLevel
)

// Fixed-width forms so formatted records line up in columns. The long form is
// padded to nine characters, the short id to two.
var _levelStrings = [...]string{
	"TRACE_L3 ", "TRACE_L2 ", "TRACE_L1 ", "DEBUG    ", "INFO     ",
	"WARNING  ", "ERROR    ", "CRITICAL ", "BACKTRACE", "NONE     ",
}

var _levelIDs = [...]string{"T3", "T2", "T1", "D ", "I ", "W ", "E ", "C ", "BT", "N "}

// String returns the padded, fixed-width representation of the level.
func (l Level) String() string {
	if int(l) < len(_levelStrings) {
		return _levelStrings[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ShortID returns the two character id of the level.
func (l Level) ShortID() string {
	if int(l) < len(_levelIDs) {
		return _levelIDs[l]
	}
	return "? "
}

// MarshalText serializes the Level to text.
//
// It returns the trimmed lowercase representation of the level (e.g. "info").
func (l Level) MarshalText() ([]byte, error) {
	return bytes.ToLower(bytes.TrimRight([]byte(l.String()), " ")), nil
}

// UnmarshalText deserializes text into a Level.
//
// It accepts lowercase or uppercase representations (e.g. "info" or "INFO").
// This facilitates configuring log levels via YAML, TOML, or JSON.
func (l *Level) UnmarshalText(text []byte) error {
	if l == nil {
		return errors.New("can't unmarshal a nil *Level")
	}
	if !l.unmarshalText(text) && !l.unmarshalText(bytes.ToLower(text)) {
		return fmt.Errorf("unrecognized level: %q", text)
	}
	return nil
}

func (l *Level) unmarshalText(text []byte) bool {
	switch string(text) {
	case "trace_l3", "TRACE_L3":
		*l = TraceL3Level
	case "trace_l2", "TRACE_L2":
		*l = TraceL2Level
	case "trace_l1", "TRACE_L1":
		*l = TraceL1Level
	case "debug", "DEBUG":
		*l = DebugLevel
	case "info", "INFO", "": // make the zero value of a config field useful
		*l = InfoLevel
	case "warning", "WARNING":
		*l = WarningLevel
	case "error", "ERROR":
		*l = ErrorLevel
	case "critical", "CRITICAL":
		*l = CriticalLevel
	case "backtrace", "BACKTRACE":
		*l = BacktraceLevel
	case "none", "NONE":
		*l = NoneLevel
	default:
		return false
	}
	return true
}

// ParseLevel converts a string into a Level.
//
// It accepts lowercase or uppercase representations. It returns an error if
// the string does not match a known level.
func ParseLevel(text string) (Level, error) {
	var l Level
	err := l.UnmarshalText([]byte(text))
	return l, err
}

// AtomicLevel represents a dynamically adjustable logging level.
//
// It allows safely changing a threshold read by the backend thread while any
// other goroutine updates it.
type AtomicLevel struct {
	l atomic.Uint32
}

// NewAtomicLevelAt initializes an AtomicLevel set to the specified Level.
func NewAtomicLevelAt(l Level) *AtomicLevel {
	a := &AtomicLevel{}
	a.SetLevel(l)
	return a
}

// Enabled determines if the specified level meets or exceeds the current minimum.
func (lvl *AtomicLevel) Enabled(l Level) bool {
	return lvl.Level() <= l
}

// Level retrieves the current minimum logging level.
func (lvl *AtomicLevel) Level() Level {
	return Level(uint8(lvl.l.Load()))
}

// SetLevel updates the minimum logging level safely across all goroutines.
func (lvl *AtomicLevel) SetLevel(l Level) {
	lvl.l.Store(uint32(l))
}

// String returns the string representation of the current minimum level.
func (lvl *AtomicLevel) String() string {
	return lvl.Level().String()
}
