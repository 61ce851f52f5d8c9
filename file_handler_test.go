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
	"testing"
	"time"
)

func TestExtractStemAndExtension(t *testing.T) {
	tests := []struct {
		in   string
		stem string
		ext  string
	}{
		{"app.log", "app", ".log"},
		{"/var/log/app.log", "/var/log/app", ".log"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
		{"trailing.", "trailing.", ""},
		{"/logs/.hiddenfile", "/logs/.hiddenfile", ""},
		{"/tmp/mc.d/logfile", "/tmp/mc.d/logfile", ""},
	}
	for _, tt := range tests {
		stem, ext := extractStemAndExtension(tt.in)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("extractStemAndExtension(%q) = (%q, %q), want (%q, %q)", tt.in, stem, ext, tt.stem, tt.ext)
		}
	}
}

func TestAppendDateToFilename(t *testing.T) {
	at := time.Date(2020, 4, 17, 22, 18, 7, 0, time.UTC)

	if got := appendDateToFilename("app.log", at, false); got != "app_20200417.log" {
		t.Errorf("date suffix: got %q", got)
	}
	if got := appendDateToFilename("app.log", at, true); got != "app_20200417_221807.log" {
		t.Errorf("datetime suffix: got %q", got)
	}
	if got := appendDateToFilename("noext", at, false); got != "noext_20200417" {
		t.Errorf("extensionless: got %q", got)
	}
}

func TestAppendIndexToFilename(t *testing.T) {
	if got := appendIndexToFilename("app.log", 0); got != "app.log" {
		t.Errorf("index 0: got %q", got)
	}
	if got := appendIndexToFilename("app.log", 3); got != "app.3.log" {
		t.Errorf("index 3: got %q", got)
	}
}

func TestFileHandlerCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "app.log")

	h, err := NewFileHandler(path, FileHandlerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	h.Write([]byte("hello\n"), 0, InfoLevel)
	if err := h.Flush(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("file holds %q", data)
	}
}

func TestFileHandlerStartDateNaming(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewFileHandler(path, FileHandlerOptions{Append: FilenameAppendStartDate})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	want := appendDateToFilename(path, time.Now(), false)
	if h.Path() != want {
		t.Fatalf("handler path %q, want %q", h.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("decorated file missing: %v", err)
	}
}

func TestFileHandlerNotifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	var calls []string
	notifier := FileEventNotifier{
		BeforeOpen: func(string) { calls = append(calls, "before_open") },
		AfterOpen:  func(string, *os.File) { calls = append(calls, "after_open") },
		BeforeClose: func(string, *os.File) {
			calls = append(calls, "before_close")
		},
		AfterClose: func(string) { calls = append(calls, "after_close") },
		BeforeWrite: func(msg []byte) []byte {
			calls = append(calls, "before_write")
			return append([]byte("rewritten: "), msg...)
		},
	}

	h, err := NewFileHandler(path, FileHandlerOptions{Notifier: notifier})
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("original\n"), 0, InfoLevel)
	h.Flush()
	h.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "rewritten: original\n" {
		t.Fatalf("file holds %q", data)
	}

	want := []string{"before_open", "after_open", "before_write", "before_close", "after_close"}
	if len(calls) != len(want) {
		t.Fatalf("notifier calls %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("notifier calls %v, want %v", calls, want)
		}
	}
}
