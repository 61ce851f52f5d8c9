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
	"strconv"
	"strings"
	"time"
)

// FileEventNotifier observes the lifecycle of a file sink. Every callback is
// invoked synchronously on the backend thread; nil callbacks are skipped.
// BeforeWrite may rewrite the outgoing record.
type FileEventNotifier struct {
	BeforeOpen  func(path string)
	AfterOpen   func(path string, f *os.File)
	BeforeClose func(path string, f *os.File)
	AfterClose  func(path string)
	BeforeWrite func(msg []byte) []byte
}

// FilenameAppend selects what the file handler appends to the filename stem
// when the file is first opened.
type FilenameAppend uint8

const (
	// FilenameAppendNone leaves the filename untouched.
	FilenameAppendNone FilenameAppend = iota
	// FilenameAppendStartDate inserts _YYYYMMDD before the extension.
	FilenameAppendStartDate
	// FilenameAppendStartDateTime inserts _YYYYMMDD_HHMMSS before the extension.
	FilenameAppendStartDateTime
)

// FileHandlerOptions configures a file sink.
type FileHandlerOptions struct {
	// Mode is the open mode, "a" to append (default) or "w" to truncate.
	Mode string
	// Append decorates the filename stem with the start date or datetime.
	Append FilenameAppend
	// Notifier observes open, close and write events.
	Notifier FileEventNotifier
}

// FileHandler writes formatted records to a file. Directories in the path
// that do not exist are created.
type FileHandler struct {
	*baseHandler

	path     string
	file     *os.File
	notifier FileEventNotifier
}

// NewFileHandler opens (or creates) the target file and returns the handler.
func NewFileHandler(path string, opts FileHandlerOptions) (*FileHandler, error) {
	if opts.Append == FilenameAppendStartDate {
		path = appendDateToFilename(path, time.Now(), false)
	} else if opts.Append == FilenameAppendStartDateTime {
		path = appendDateToFilename(path, time.Now(), true)
	}

	h := &FileHandler{
		baseHandler: newBaseHandler(),
		path:        path,
		notifier:    opts.Notifier,
	}
	if err := h.open(opts.Mode); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the resolved path of the active file.
func (h *FileHandler) Path() string { return h.path }

func (h *FileHandler) open(mode string) error {
	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if mode == "w" {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	if h.notifier.BeforeOpen != nil {
		h.notifier.BeforeOpen(h.path)
	}
	f, err := os.OpenFile(h.path, flags, 0o644)
	if err != nil {
		return err
	}
	h.file = f
	if h.notifier.AfterOpen != nil {
		h.notifier.AfterOpen(h.path, f)
	}
	return nil
}

func (h *FileHandler) close() error {
	if h.file == nil {
		return nil
	}
	if h.notifier.BeforeClose != nil {
		h.notifier.BeforeClose(h.path, h.file)
	}
	err := h.file.Close()
	h.file = nil
	if h.notifier.AfterClose != nil {
		h.notifier.AfterClose(h.path)
	}
	return err
}

func (h *FileHandler) Write(formatted []byte, _ int64, _ Level) {
	if h.notifier.BeforeWrite != nil {
		formatted = h.notifier.BeforeWrite(formatted)
	}
	if _, err := h.file.Write(formatted); err != nil {
		internalError(err)
	}
}

func (h *FileHandler) Flush() error {
	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		internalError(err)
		return err
	}
	return nil
}

// Close flushes and closes the underlying file.
func (h *FileHandler) Close() error {
	return h.close()
}

// extractStemAndExtension splits a filename on its last dot, keeping edge
// cases intact: hidden files, trailing dots and dots inside directories all
// count as extensionless.
func extractStemAndExtension(filename string) (stem, ext string) {
	extIdx := strings.LastIndexByte(filename, '.')
	if extIdx <= 0 || extIdx == len(filename)-1 {
		return filename, ""
	}

	pathIdx := strings.LastIndexByte(filename, os.PathSeparator)
	if pathIdx >= 0 && pathIdx >= extIdx-1 {
		return filename, ""
	}

	return filename[:extIdx], filename[extIdx:]
}

// appendDateToFilename inserts _YYYYMMDD (or _YYYYMMDD_HHMMSS) between the
// stem and the extension.
func appendDateToFilename(filename string, t time.Time, withTime bool) string {
	stem, ext := extractStemAndExtension(filename)

	buf := make([]byte, 0, len(filename)+17)
	buf = append(buf, stem...)
	buf = append(buf, '_')
	buf = appendInt(buf, t.Year(), 4)
	buf = append2(buf, int(t.Month()))
	buf = append2(buf, t.Day())
	if withTime {
		buf = append(buf, '_')
		buf = append2(buf, t.Hour())
		buf = append2(buf, t.Minute())
		buf = append2(buf, t.Second())
	}
	buf = append(buf, ext...)
	return string(buf)
}

// appendIndexToFilename inserts a numeric backup index between the stem and
// the extension; index zero returns the filename unchanged.
func appendIndexToFilename(filename string, index uint32) string {
	if index == 0 {
		return filename
	}
	stem, ext := extractStemAndExtension(filename)
	return stem + "." + strconv.FormatUint(uint64(index), 10) + ext
}
