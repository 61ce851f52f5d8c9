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
	"testing"
	"time"
)

// reference renders the expanded pattern directly, bypassing every cache.
func reference(pattern string, ts int64, tz Timezone) string {
	s := &stringFromTime{}
	if err := s.initAt(pattern, tz, ts); err != nil {
		panic(err)
	}
	return string(appendStrftime(nil, s.pattern, time.Unix(ts, 0).In(tz.location())))
}

func TestStringFromTimeMatchesReference(t *testing.T) {
	patterns := []string{
		"%H:%M:%S",
		"%Y-%m-%d %H:%M:%S",
		"%I:%M:%S %p",
		"%T",
		"%R",
		"%k|%l",
		"date only %Y-%m-%d",
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			start := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC).Unix()
			s := &stringFromTime{}
			if err := s.initAt(pattern, TimezoneUTC, start); err != nil {
				t.Fatal(err)
			}

			// Walk a few hours forward seven seconds at a time, crossing the
			// noon/midnight boundary along the way.
			for ts := start; ts < start+3*3600; ts += 7 {
				got := string(s.formatTimestamp(ts))
				want := reference(pattern, ts, TimezoneUTC)
				if got != want {
					t.Fatalf("ts %d: got %q, want %q", ts, got, want)
				}
			}
		})
	}
}

func TestStringFromTimeLocalMatchesReference(t *testing.T) {
	start := nearestHour(time.Now().Unix())
	s := &stringFromTime{}
	if err := s.initAt("%H:%M:%S", TimezoneLocal, start); err != nil {
		t.Fatal(err)
	}

	for ts := start; ts < start+7200; ts += 13 {
		got := string(s.formatTimestamp(ts))
		want := reference("%H:%M:%S", ts, TimezoneLocal)
		if got != want {
			t.Fatalf("ts %d: got %q, want %q", ts, got, want)
		}
	}
}

func TestStringFromTimeEpochModifier(t *testing.T) {
	start := int64(1700000000)
	s := &stringFromTime{}
	if err := s.initAt("%s", TimezoneUTC, start); err != nil {
		t.Fatal(err)
	}

	for _, ts := range []int64{start, start + 1, start + 59, start + 3599} {
		got := string(s.formatTimestamp(ts))
		want := reference("%s", ts, TimezoneUTC)
		if got != want {
			t.Fatalf("ts %d: got %q, want %q", ts, got, want)
		}
	}
}

func TestStringFromTimeBackwardsFallback(t *testing.T) {
	start := int64(1710000000)
	s := &stringFromTime{}
	if err := s.initAt("%H:%M:%S", TimezoneUTC, start); err != nil {
		t.Fatal(err)
	}

	forward := string(s.formatTimestamp(start + 100))

	// A timestamp back in time renders correctly through the fallback.
	back := start - 5000
	if got, want := string(s.formatTimestamp(back)), reference("%H:%M:%S", back, TimezoneUTC); got != want {
		t.Fatalf("backwards render: got %q, want %q", got, want)
	}

	// And the cache is intact: the earlier timestamp renders as before.
	if got := string(s.formatTimestamp(start + 100)); got != forward {
		t.Fatalf("cache corrupted by fallback: got %q, want %q", got, forward)
	}
}

func TestStringFromTimeHourBoundaryRecalculation(t *testing.T) {
	t0 := nearestHour(int64(1710000000))
	s := &stringFromTime{}
	if err := s.initAt("%H:%M:%S", TimezoneLocal, t0); err != nil {
		t.Fatal(err)
	}
	base := s.recalcs

	s.formatTimestamp(t0)
	for _, off := range []int64{1, 60, 1800, 3000, 3599} {
		s.formatTimestamp(t0 + off)
	}
	if s.recalcs != base {
		t.Fatalf("template re-rendered %d times inside the hour window", s.recalcs-base)
	}

	s.formatTimestamp(t0 + 3600)
	if s.recalcs != base+1 {
		t.Fatalf("boundary crossing re-rendered %d times, want exactly 1", s.recalcs-base)
	}

	// The rest of the new window stays cached too.
	for _, off := range []int64{3601, 4000, 7199} {
		s.formatTimestamp(t0 + off)
	}
	if s.recalcs != base+1 {
		t.Fatalf("template re-rendered again inside the second window")
	}
}

func TestStringFromTimeRejectsLocaleModifier(t *testing.T) {
	s := &stringFromTime{}
	if err := s.init("%X", TimezoneUTC); err == nil {
		t.Fatal("init accepted %X")
	}
}

func TestTimestampFormatterFractional(t *testing.T) {
	const base = int64(1587161887) // 22:18:07 UTC
	anchor := base - 7

	t.Run("millis", func(t *testing.T) {
		f, err := newTimestampFormatterAt("%H:%M:%S.%Qms", TimezoneUTC, anchor)
		if err != nil {
			t.Fatal(err)
		}
		ns := base*1_000_000_000 + 987_654_321
		if got := string(f.FormatTimestamp(ns)); got != "22:18:07.987" {
			t.Fatalf("got %q, want %q", got, "22:18:07.987")
		}
		if got := string(f.FormatTimestamp(ns + 1_000_000)); got != "22:18:07.988" {
			t.Fatalf("got %q, want %q", got, "22:18:07.988")
		}
	})

	t.Run("micros", func(t *testing.T) {
		f, err := newTimestampFormatterAt("%H:%M:%S.%Qus", TimezoneUTC, anchor)
		if err != nil {
			t.Fatal(err)
		}
		ns := base*1_000_000_000 + 987_654_321
		if got := string(f.FormatTimestamp(ns)); got != "22:18:07.987654" {
			t.Fatalf("got %q, want %q", got, "22:18:07.987654")
		}
	})

	t.Run("nanos", func(t *testing.T) {
		f, err := newTimestampFormatterAt("%H:%M:%S.%Qns", TimezoneUTC, anchor)
		if err != nil {
			t.Fatal(err)
		}
		ns := base*1_000_000_000 + 987_654_321
		if got := string(f.FormatTimestamp(ns)); got != "22:18:07.987654321" {
			t.Fatalf("got %q, want %q", got, "22:18:07.987654321")
		}
	})

	t.Run("left padding", func(t *testing.T) {
		f, err := newTimestampFormatterAt("%H:%M:%S.%Qms", TimezoneUTC, anchor)
		if err != nil {
			t.Fatal(err)
		}
		ns := base*1_000_000_000 + 7_000_000 // 7ms
		if got := string(f.FormatTimestamp(ns)); got != "22:18:07.007" {
			t.Fatalf("got %q, want %q", got, "22:18:07.007")
		}
	})

	t.Run("suffix after fractional", func(t *testing.T) {
		f, err := newTimestampFormatterAt("%H:%M:%S.%Qms [%Y]", TimezoneUTC, anchor)
		if err != nil {
			t.Fatal(err)
		}
		ns := base*1_000_000_000 + 987_654_321
		if got := string(f.FormatTimestamp(ns)); got != "22:18:07.987 [2020]" {
			t.Fatalf("got %q, want %q", got, "22:18:07.987 [2020]")
		}
	})
}

func TestTimestampFormatterBackwardsFallback(t *testing.T) {
	const ns1 = int64(1587161887)*1_000_000_000 + 987_654_321
	const ns0 = int64(1587161000) * 1_000_000_000

	f, err := newTimestampFormatterAt("%H:%M:%S.%Qms", TimezoneUTC, 1587161880)
	if err != nil {
		t.Fatal(err)
	}

	first := string(f.FormatTimestamp(ns1))
	if first != "22:18:07.987" {
		t.Fatalf("got %q, want %q", first, "22:18:07.987")
	}

	// 1587161000 is 22:03:20 UTC.
	if got := string(f.FormatTimestamp(ns0)); got != "22:03:20.000" {
		t.Fatalf("backwards render: got %q, want %q", got, "22:03:20.000")
	}

	// The cache survives the excursion.
	if got := string(f.FormatTimestamp(ns1)); got != first {
		t.Fatalf("cache corrupted: got %q, want %q", got, first)
	}
}

func TestTimestampFormatterRejectsMultipleFractional(t *testing.T) {
	for _, pattern := range []string{
		"%H:%M:%S.%Qms%Qus",
		"%Qns then %Qms",
	} {
		if _, err := NewTimestampFormatter(pattern, TimezoneUTC); err == nil {
			t.Errorf("pattern %q accepted with two fractional specifiers", pattern)
		}
	}
}

func TestNextNoonOrMidnight(t *testing.T) {
	// 2023-11-14 22:13:20 UTC -> next boundary is midnight.
	ts := int64(1700000000)
	next := nextNoonOrMidnight(ts, time.UTC)
	if got := time.Unix(next, 0).UTC(); got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if next <= ts {
		t.Fatal("boundary not after input")
	}

	// Morning input rolls to the same day's noon.
	morning := time.Date(2023, 11, 14, 9, 30, 0, 0, time.UTC).Unix()
	next = nextNoonOrMidnight(morning, time.UTC)
	if got := time.Unix(next, 0).UTC(); got.Hour() != 12 {
		t.Fatalf("expected noon, got %v", got)
	}
}
