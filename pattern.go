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
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPattern is the record layout handlers start with.
const DefaultPattern = "%(time) [%(thread_id)] %(file_name):%(line_number) %(log_level) %(logger) - %(message)"

// DefaultTimestampPattern is the timestamp layout handlers start with.
const DefaultTimestampPattern = "%H:%M:%S.%Qns"

type patternAttr uint8

const (
	attrLiteral patternAttr = iota
	attrTime
	attrFileName
	attrFullPath
	attrCallerFunction
	attrLogLevel
	attrLogLevelID
	attrLineNumber
	attrLogger
	attrMessage
	attrThreadID
	attrThreadName
	attrProcessID
	attrSourceLocation
	attrShortSourceLocation
	attrCustomTags
	attrStructuredKeys
)

var _patternAttrs = map[string]patternAttr{
	"time":                  attrTime,
	"file_name":             attrFileName,
	"full_path":             attrFullPath,
	"caller_function":       attrCallerFunction,
	"log_level":             attrLogLevel,
	"log_level_id":          attrLogLevelID,
	"line_number":           attrLineNumber,
	"logger":                attrLogger,
	"message":               attrMessage,
	"thread_id":             attrThreadID,
	"thread_name":           attrThreadName,
	"process_id":            attrProcessID,
	"source_location":       attrSourceLocation,
	"short_source_location": attrShortSourceLocation,
	"custom_tags":           attrCustomTags,
	"structured_keys":       attrStructuredKeys,
}

type patternSegment struct {
	literal string
	attr    patternAttr
}

// PatternFormatter expands a %(...) placeholder pattern into the final
// record bytes. Each attribute may appear at most once. Construction parses
// the pattern; Format only walks the segment list.
type PatternFormatter struct {
	segments    []patternSegment
	tsFormatter *TimestampFormatter
	customTags  string
}

// NewPatternFormatter parses pattern and prepares the timestamp formatter
// for the %(time) attribute.
func NewPatternFormatter(pattern, timestampPattern string, tz Timezone) (*PatternFormatter, error) {
	f := &PatternFormatter{}

	seen := make(map[patternAttr]bool)
	rest := pattern
	for {
		start := strings.Index(rest, "%(")
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], ')')
		if end < 0 {
			return nil, errors.Errorf("plume: unterminated attribute in pattern %q", pattern)
		}
		name := rest[start+2 : start+end]
		attr, ok := _patternAttrs[name]
		if !ok {
			return nil, errors.Errorf("plume: unknown attribute %%(%s) in pattern %q", name, pattern)
		}
		if seen[attr] {
			return nil, errors.Errorf("plume: attribute %%(%s) appears more than once in pattern %q", name, pattern)
		}
		seen[attr] = true

		if start > 0 {
			f.segments = append(f.segments, patternSegment{literal: rest[:start]})
		}
		f.segments = append(f.segments, patternSegment{attr: attr})
		rest = rest[start+end+1:]
	}
	if rest != "" {
		f.segments = append(f.segments, patternSegment{literal: rest})
	}

	tsFormatter, err := NewTimestampFormatter(timestampPattern, tz)
	if err != nil {
		return nil, err
	}
	f.tsFormatter = tsFormatter
	return f, nil
}

// SetCustomTags sets the text substituted for %(custom_tags).
func (f *PatternFormatter) SetCustomTags(tags string) { f.customTags = tags }

// Format renders one record into a pooled buffer. The caller releases the
// buffer with putBuffer once the bytes are written.
func (f *PatternFormatter) Format(ns int64, threadID, threadName, processID, loggerName string,
	meta *MacroMetadata, fields []Field, msg string) *buffer {

	b := getBuffer()
	for _, seg := range f.segments {
		if seg.literal != "" {
			b.WriteString(seg.literal)
			continue
		}
		switch seg.attr {
		case attrTime:
			b.B = append(b.B, f.tsFormatter.FormatTimestamp(ns)...)
		case attrFileName:
			b.WriteString(meta.File)
		case attrFullPath:
			b.WriteString(meta.Pathname)
		case attrCallerFunction:
			b.WriteString(meta.Function)
		case attrLogLevel:
			b.WriteString(meta.Level.String())
		case attrLogLevelID:
			b.WriteString(meta.Level.ShortID())
		case attrLineNumber:
			b.B = strconv.AppendInt(b.B, int64(meta.Line), 10)
		case attrLogger:
			b.WriteString(loggerName)
		case attrMessage:
			b.WriteString(msg)
		case attrThreadID:
			b.WriteString(threadID)
		case attrThreadName:
			b.WriteString(threadName)
		case attrProcessID:
			b.WriteString(processID)
		case attrSourceLocation:
			b.WriteString(meta.Pathname)
			b.WriteByte(':')
			b.B = strconv.AppendInt(b.B, int64(meta.Line), 10)
		case attrShortSourceLocation:
			b.WriteString(meta.File)
			b.WriteByte(':')
			b.B = strconv.AppendInt(b.B, int64(meta.Line), 10)
		case attrCustomTags:
			b.WriteString(f.customTags)
		case attrStructuredKeys:
			for i := range fields {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(fields[i].Key)
			}
		}
	}
	b.WriteByte('\n')
	return b
}

// formatMessage expands the call-site template with the captured arguments.
// Printf sites go through the fmt verbs; structured sites substitute
// {name} placeholders from the fields; everything else uses positional {}
// substitution.
func formatMessage(meta *MacroMetadata, args []any, fields []Field) string {
	switch {
	case meta.IsPrintf:
		return fmt.Sprintf(meta.Format, args...)
	case meta.IsStructured:
		return expandNamed(meta.Format, fields)
	default:
		return expandPositional(meta.Format, args)
	}
}

// expandPositional replaces each {} with the next argument. Doubled braces
// escape a literal brace.
func expandPositional(template string, args []any) string {
	if !strings.ContainsRune(template, '{') {
		return template
	}

	var sb strings.Builder
	sb.Grow(len(template) + 16*len(args))
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{' && i+1 < len(template) && template[i+1] == '}':
			if next < len(args) {
				sb.WriteString(formatAny(args[next]))
				next++
			}
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// expandNamed replaces each {name} with the value of the matching field.
func expandNamed(template string, fields []Field) string {
	if !strings.ContainsRune(template, '{') {
		return template
	}

	var sb strings.Builder
	sb.Grow(len(template) + 16*len(fields))
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '{' {
			sb.WriteByte(c)
			continue
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			sb.WriteString(template[i:])
			break
		}
		name := template[i+1 : i+end]
		found := false
		for j := range fields {
			if fields[j].Key == name {
				sb.WriteString(fields[j].value())
				found = true
				break
			}
		}
		if !found {
			sb.WriteString(template[i : i+end+1])
		}
		i += end
	}
	return sb.String()
}
