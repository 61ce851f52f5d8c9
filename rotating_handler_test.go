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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTimeRotatingFileHandlerValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	t.Run("invalid when", func(t *testing.T) {
		_, err := NewTimeRotatingFileHandler(path, TimeRotatingFileHandlerOptions{When: "W"})
		if err == nil {
			t.Fatal("invalid rotation unit accepted")
		}
	})

	t.Run("invalid at time", func(t *testing.T) {
		for _, at := range []string{"25:00", "12:75", "noon", "12", "12:00:00"} {
			_, err := NewTimeRotatingFileHandler(path, TimeRotatingFileHandlerOptions{When: RotateDaily, AtTime: at})
			if err == nil {
				t.Errorf("at_time %q accepted", at)
			}
		}
	})
}

func TestTimeRotatingFileHandlerRollover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewTimeRotatingFileHandler(path, TimeRotatingFileHandlerOptions{
		When:        RotateMinutes,
		Interval:    1,
		BackupCount: 3,
		UTC:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	// Drive the rotation clock by hand: creation times spaced so every
	// renamed file gets a distinct suffix.
	fake := h.fileCreationTime
	h.nowFn = func() time.Time {
		fake = fake.Add(61 * time.Second)
		return fake
	}

	// Six writes, each one interval past the previous rotation boundary, so
	// writes two through six each trigger exactly one rotation.
	writeAt := h.nextRotation
	h.Write([]byte("w0\n"), writeAt.Add(-time.Second).UnixNano(), InfoLevel)
	for i := 1; i <= 5; i++ {
		h.Write([]byte("w"+string(rune('0'+i))+"\n"), writeAt.UnixNano(), InfoLevel)
		writeAt = h.nextRotation
	}
	if err := h.Flush(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	var rotated []string
	activeSeen := false
	for _, e := range entries {
		if e.Name() == "app.log" {
			activeSeen = true
			continue
		}
		if strings.HasPrefix(e.Name(), "app_") && strings.HasSuffix(e.Name(), ".log") {
			rotated = append(rotated, e.Name())
		}
	}

	if !activeSeen {
		t.Fatal("active file missing after rotations")
	}
	// Five rotations with backup count three leaves exactly three backups.
	if len(rotated) != 3 {
		t.Fatalf("found %d rotated files %v, want 3", len(rotated), rotated)
	}

	// The active file contains only the most recent write.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "w5\n" {
		t.Fatalf("active file holds %q, want %q", data, "w5\n")
	}
}

func TestTimeRotatingFileHandlerNoEarlyRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewTimeRotatingFileHandler(path, TimeRotatingFileHandlerOptions{
		When:        RotateMinutes,
		Interval:    1,
		BackupCount: 2,
		UTC:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	before := h.nextRotation.Add(-time.Second).UnixNano()
	h.Write([]byte("a\n"), before, InfoLevel)
	h.Write([]byte("b\n"), before, InfoLevel)
	h.Flush()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the active file, found %d entries", len(entries))
	}

	data, _ := os.ReadFile(path)
	if string(data) != "a\nb\n" {
		t.Fatalf("active file holds %q", data)
	}
}

func TestInitialRotationAlignment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewTimeRotatingFileHandler(path, TimeRotatingFileHandlerOptions{
		When: RotateMinutes,
		UTC:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	// The first boundary lands on a sharp minute strictly after creation.
	if h.nextRotation.Second() != 0 {
		t.Fatalf("initial rotation %v not minute aligned", h.nextRotation)
	}
	if !h.nextRotation.After(h.fileCreationTime) {
		t.Fatalf("initial rotation %v not after creation %v", h.nextRotation, h.fileCreationTime)
	}
}
