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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Timezone selects the zone timestamps are rendered in.
type Timezone uint8

const (
	// TimezoneLocal renders timestamps in the process local time.
	TimezoneLocal Timezone = iota
	// TimezoneUTC renders timestamps in UTC.
	TimezoneUTC
)

func (tz Timezone) location() *time.Location {
	if tz == TimezoneUTC {
		return time.UTC
	}
	return time.Local
}

// The time-of-day conversions the cache can patch in place. Everything else
// in a pattern is constant within the recalculation window.
type modifierKind uint8

const (
	modHour24 modifierKind = iota
	modMinute
	modSecond
	modHour12
	modHour24Space
	modHour12Space
	modEpoch
)

var _patchModifiers = [...]struct {
	token string
	kind  modifierKind
}{
	{"%H", modHour24}, {"%M", modMinute}, {"%S", modSecond},
	{"%I", modHour12}, {"%k", modHour24Space}, {"%l", modHour12Space},
	{"%s", modEpoch},
}

type cachedIndex struct {
	pos  int
	kind modifierKind
}

// stringFromTime renders a strftime pattern by pre-rendering a template once
// per recalculation window and byte-patching only the time-of-day slots on
// every call. Local time re-renders every hour (cheap DST insurance is not
// the concern; DST shifts land on hour boundaries), UTC only at noon and
// midnight so AM/PM stays correct.
type stringFromTime struct {
	pattern string
	tz      Timezone
	loc     *time.Location

	parts    []string
	template []byte
	indexes  []cachedIndex

	cachedTimestamp int64
	cachedSeconds   int64
	nextRecalc      int64

	// recalcs counts template renders; the monotone-cache property is
	// exactly "this does not move between boundary crossings".
	recalcs int

	fallback []byte
}

// splitPatternOnce finds the earliest patchable modifier in pattern and
// splits around it. Returns the leading text, the modifier, and the rest.
// Both returned parts are empty when no modifier remains.
func splitPatternOnce(pattern string) (before, modifier, rest string) {
	first := -1
	for _, m := range _patchModifiers {
		if idx := strings.Index(pattern, m.token); idx >= 0 && (first < 0 || idx < first) {
			first = idx
			modifier = m.token
		}
	}
	if first < 0 {
		return "", "", pattern
	}
	return pattern[:first], modifier, pattern[first+2:]
}

func (s *stringFromTime) init(pattern string, tz Timezone) error {
	return s.initAt(pattern, tz, time.Now().Unix())
}

// initAt anchors the cache at the given wall timestamp.
func (s *stringFromTime) initAt(pattern string, tz Timezone, now int64) error {
	if strings.Contains(pattern, "%X") {
		return errors.Errorf("plume: %%X is not supported in timestamp pattern %q", pattern)
	}

	// Aliases expand so their inner time-of-day fields become patchable.
	pattern = strings.ReplaceAll(pattern, "%r", "%I:%M:%S %p")
	pattern = strings.ReplaceAll(pattern, "%R", "%H:%M")
	pattern = strings.ReplaceAll(pattern, "%T", "%H:%M:%S")

	s.pattern = pattern
	s.tz = tz
	s.loc = tz.location()
	s.parts = s.parts[:0]

	rest := pattern
	for {
		before, modifier, remainder := splitPatternOnce(rest)
		if modifier == "" {
			if remainder != "" {
				s.parts = append(s.parts, remainder)
			}
			break
		}
		if before != "" {
			s.parts = append(s.parts, before)
		}
		s.parts = append(s.parts, modifier)
		rest = remainder
	}

	anchor := now
	if tz == TimezoneLocal {
		// Hourly recalculation sidesteps DST transitions.
		anchor = nearestHour(now)
		s.nextRecalc = anchor + 3600
	} else {
		s.nextRecalc = nextNoonOrMidnight(now, s.loc)
	}

	s.template = s.template[:0]
	s.indexes = s.indexes[:0]
	s.populateTemplate(anchor)
	return nil
}

// populateTemplate renders every part at ts, recording the byte position of
// each patchable modifier.
func (s *stringFromTime) populateTemplate(ts int64) {
	s.recalcs++
	s.cachedTimestamp = ts
	t := time.Unix(ts, 0).In(s.loc)
	hour, minute, sec := t.Clock()
	s.cachedSeconds = int64(hour*3600 + minute*60 + sec)

	for _, part := range s.parts {
		s.template = appendStrftime(s.template, part, t)

		var kind modifierKind
		patch := false
		width := 2
		switch part {
		case "%H":
			kind, patch = modHour24, true
		case "%M":
			kind, patch = modMinute, true
		case "%S":
			kind, patch = modSecond, true
		case "%I":
			kind, patch = modHour12, true
		case "%k":
			kind, patch = modHour24Space, true
		case "%l":
			kind, patch = modHour12Space, true
		case "%s":
			kind, patch = modEpoch, true
			width = 10
		}
		if patch {
			s.indexes = append(s.indexes, cachedIndex{pos: len(s.template) - width, kind: kind})
		}
	}
}

// formatTimestamp renders ts. The returned slice is valid until the next
// call.
func (s *stringFromTime) formatTimestamp(ts int64) []byte {
	// Timestamps are expected to increase. A reading back in time falls back
	// to a direct render and leaves the cache untouched.
	if ts < s.cachedTimestamp {
		s.fallback = appendStrftime(s.fallback[:0], s.pattern, time.Unix(ts, 0).In(s.loc))
		return s.fallback
	}

	if ts >= s.nextRecalc {
		s.template = s.template[:0]
		s.indexes = s.indexes[:0]
		s.populateTemplate(ts)

		if s.tz == TimezoneLocal {
			s.nextRecalc = ts + 3600
		} else {
			s.nextRecalc = nextNoonOrMidnight(ts+1, s.loc)
		}
	}

	if len(s.indexes) == 0 {
		// No time-of-day fields; the template is the answer.
		return s.template
	}

	if s.cachedTimestamp == ts {
		return s.template
	}

	s.cachedSeconds += ts - s.cachedTimestamp
	s.cachedTimestamp = ts

	secs := s.cachedSeconds
	hours := int(secs / 3600)
	secs %= 3600
	minutes := int(secs / 60)
	seconds := int(secs % 60)

	for _, idx := range s.indexes {
		switch idx.kind {
		case modHour24:
			s.patch2(idx.pos, hours, '0')
		case modMinute:
			s.patch2(idx.pos, minutes, '0')
		case modSecond:
			s.patch2(idx.pos, seconds, '0')
		case modHour12:
			s.patch2(idx.pos, hour12(hours), '0')
		case modHour24Space:
			s.patch2(idx.pos, hours, ' ')
		case modHour12Space:
			s.patch2(idx.pos, hour12(hours), ' ')
		case modEpoch:
			var tmp [20]byte
			digits := strconv.AppendInt(tmp[:0], s.cachedTimestamp, 10)
			copy(s.template[idx.pos:idx.pos+10], digits)
		}
	}
	return s.template
}

// patch2 rewrites the two bytes at pos with v, padded with pad.
func (s *stringFromTime) patch2(pos, v int, pad byte) {
	if v < 10 && pad == ' ' {
		s.template[pos] = ' '
		s.template[pos+1] = byte('0' + v)
		return
	}
	i := uint(v) * 2
	s.template[pos] = _smallsString[i]
	s.template[pos+1] = _smallsString[i+1]
}

func nearestHour(ts int64) int64 { return ts - ts%3600 }

// nextNoonOrMidnight returns the first noon or midnight in loc strictly
// after ts.
func nextNoonOrMidnight(ts int64, loc *time.Location) int64 {
	t := time.Unix(ts, 0).In(loc)
	year, month, day := t.Date()
	if t.Hour() < 12 {
		return time.Date(year, month, day, 12, 0, 0, 0, loc).Unix()
	}
	return time.Date(year, month, day+1, 0, 0, 0, 0, loc).Unix()
}

// Fractional-second specifiers appended between the two pattern halves.
type fracSpec uint8

const (
	fracNone fracSpec = iota
	fracMillis
	fracMicros
	fracNanos
)

var _fracTokens = [...]struct {
	token  string
	spec   fracSpec
	digits int
}{
	{"%Qms", fracMillis, 3},
	{"%Qus", fracMicros, 6},
	{"%Qns", fracNanos, 9},
}

// TimestampFormatter renders nanosecond timestamps under a strftime-like
// pattern extended with the %Qms, %Qus and %Qns fractional specifiers. The
// two pattern halves around the fractional field are cached independently.
type TimestampFormatter struct {
	spec       fracSpec
	fracDigits int
	hasSuffix  bool

	prefix stringFromTime
	suffix stringFromTime

	formatted []byte
}

// NewTimestampFormatter parses pattern and prepares the caches. At most one
// fractional specifier may appear.
func NewTimestampFormatter(pattern string, tz Timezone) (*TimestampFormatter, error) {
	return newTimestampFormatterAt(pattern, tz, time.Now().Unix())
}

func newTimestampFormatterAt(pattern string, tz Timezone, now int64) (*TimestampFormatter, error) {
	f := &TimestampFormatter{}

	begin := -1
	prefixPart := pattern
	suffixPart := ""
	for _, tok := range _fracTokens {
		idx := strings.Index(pattern, tok.token)
		if idx < 0 {
			continue
		}
		if f.spec != fracNone || strings.Contains(pattern[idx+len(tok.token):], tok.token) {
			return nil, errors.New("plume: format specifiers %Qms, %Qus and %Qns are mutually exclusive")
		}
		f.spec = tok.spec
		f.fracDigits = tok.digits
		begin = idx
	}
	if begin >= 0 {
		prefixPart = pattern[:begin]
		suffixPart = pattern[begin+len("%Qms"):]
	}

	if err := f.prefix.initAt(prefixPart, tz, now); err != nil {
		return nil, err
	}
	if suffixPart != "" {
		f.hasSuffix = true
		if err := f.suffix.initAt(suffixPart, tz, now); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FormatTimestamp renders ns-since-epoch. The returned slice is valid until
// the next call.
func (f *TimestampFormatter) FormatTimestamp(ns int64) []byte {
	secs := ns / 1_000_000_000

	f.formatted = append(f.formatted[:0], f.prefix.formatTimestamp(secs)...)

	if f.spec != fracNone {
		remainder := ns - secs*1_000_000_000
		switch f.spec {
		case fracMillis:
			remainder /= 1_000_000
		case fracMicros:
			remainder /= 1_000
		}

		// Pad with zeros first, then right-align the digits over them.
		for i := 0; i < f.fracDigits; i++ {
			f.formatted = append(f.formatted, '0')
		}
		var tmp [12]byte
		digits := strconv.AppendInt(tmp[:0], remainder, 10)
		copy(f.formatted[len(f.formatted)-len(digits):], digits)
	}

	if f.hasSuffix {
		f.formatted = append(f.formatted, f.suffix.formatTimestamp(secs)...)
	}
	return f.formatted
}
