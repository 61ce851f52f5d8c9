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
	"time"
)

var _smallsString = "00010203040506070809" +
	"10111213141516171819" +
	"20212223242526272829" +
	"30313233343536373839" +
	"40414243444546474849" +
	"50515253545556575859" +
	"60616263646566676869" +
	"70717273747576777879" +
	"80818283848586878889" +
	"90919293949596979899"

var _shortDayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var _longDayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
var _shortMonthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
var _longMonthNames = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

// append2 appends a two digit zero padded value.
func append2(b []byte, v int) []byte {
	i := uint(v) * 2
	return append(b, _smallsString[i], _smallsString[i+1])
}

// append2Space appends a two character value padded with a space.
func append2Space(b []byte, v int) []byte {
	if v < 10 {
		return append(b, ' ', byte('0'+v))
	}
	return append2(b, v)
}

// appendInt appends an integer zero padded to the specified width.
func appendInt(b []byte, v int, width int) []byte {
	u := uint(v)
	if width == 2 && u < 100 {
		return append2(b, v)
	}

	if u == 0 && width <= 1 {
		return append(b, '0')
	}

	// Assemble decimal in reverse order.
	var buf [20]byte
	i := len(buf)
	for u > 0 || width > 0 {
		i--
		q := u / 10
		buf[i] = byte('0' + u - q*10)
		u = q
		width--
	}
	return append(b, buf[i:]...)
}

// hour12 maps a 24h hour onto the 12h dial; midnight and noon render as 12.
func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

// appendStrftime renders layout for t using a strftime-style conversion
// table. This is the reference renderer: the cached formatter pre-renders its
// template through it and falls back to it when time runs backwards.
//
// The supported conversions are the subset the cached formatter understands:
// date and time-of-day fields plus the %r, %R and %T aliases. Unknown
// conversions are emitted verbatim, matching the lenient strftime behavior.
func appendStrftime(b []byte, layout string, t time.Time) []byte {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' || i+1 >= len(layout) {
			b = append(b, c)
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			b = appendInt(b, year, 4)
		case 'y':
			b = append2(b, year%100)
		case 'C':
			b = append2(b, year/100)
		case 'm':
			b = append2(b, int(month))
		case 'd':
			b = append2(b, day)
		case 'e':
			b = append2Space(b, day)
		case 'H':
			b = append2(b, hour)
		case 'I':
			b = append2(b, hour12(hour))
		case 'k':
			b = append2Space(b, hour)
		case 'l':
			b = append2Space(b, hour12(hour))
		case 'M':
			b = append2(b, minute)
		case 'S':
			b = append2(b, sec)
		case 'p':
			if hour < 12 {
				b = append(b, 'A', 'M')
			} else {
				b = append(b, 'P', 'M')
			}
		case 'a':
			b = append(b, _shortDayNames[t.Weekday()]...)
		case 'A':
			b = append(b, _longDayNames[t.Weekday()]...)
		case 'b', 'h':
			b = append(b, _shortMonthNames[month-1]...)
		case 'B':
			b = append(b, _longMonthNames[month-1]...)
		case 'j':
			b = appendInt(b, t.YearDay(), 3)
		case 'u':
			wd := int(t.Weekday())
			if wd == 0 {
				wd = 7
			}
			b = append(b, byte('0'+wd))
		case 'w':
			b = append(b, byte('0'+int(t.Weekday())))
		case 's':
			b = strconv.AppendInt(b, t.Unix(), 10)
		case 'z':
			_, offset := t.Zone()
			if offset < 0 {
				b = append(b, '-')
				offset = -offset
			} else {
				b = append(b, '+')
			}
			b = append2(b, offset/3600)
			b = append2(b, (offset%3600)/60)
		case 'Z':
			name, _ := t.Zone()
			b = append(b, name...)
		case 'D':
			b = appendStrftime(b, "%m/%d/%y", t)
		case 'F':
			b = appendStrftime(b, "%Y-%m-%d", t)
		case 'r':
			b = appendStrftime(b, "%I:%M:%S %p", t)
		case 'R':
			b = appendStrftime(b, "%H:%M", t)
		case 'T':
			b = appendStrftime(b, "%H:%M:%S", t)
		case 'n':
			b = append(b, '\n')
		case 't':
			b = append(b, '\t')
		case '%':
			b = append(b, '%')
		default:
			// Lenient passthrough, like most strftime implementations.
			b = append(b, '%', layout[i])
		}
	}
	return b
}
