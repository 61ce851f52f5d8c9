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
	"bufio"
	"io"
	"os"
)

// StreamHandler writes formatted records to an io.Writer through a buffered
// writer owned by the backend thread.
type StreamHandler struct {
	*baseHandler

	out      io.Writer
	bw       *bufio.Writer
	colorize bool
	styles   *Styles
}

// NewStreamHandler returns a handler writing to w.
func NewStreamHandler(w io.Writer) *StreamHandler {
	return &StreamHandler{
		baseHandler: newBaseHandler(),
		out:         w,
		bw:          bufio.NewWriterSize(w, 64*1024),
	}
}

// NewConsoleHandler returns a StreamHandler that renders each record through
// the per-level styles.
func NewConsoleHandler(w io.Writer, styles *Styles) *StreamHandler {
	h := NewStreamHandler(w)
	h.colorize = true
	if styles == nil {
		styles = DefaultStyles()
	}
	h.styles = styles
	return h
}

// StdoutHandler returns a colorized handler on standard output.
func StdoutHandler() *StreamHandler { return NewConsoleHandler(os.Stdout, nil) }

// StderrHandler returns a colorized handler on standard error.
func StderrHandler() *StreamHandler { return NewConsoleHandler(os.Stderr, nil) }

func (h *StreamHandler) Write(formatted []byte, _ int64, level Level) {
	var err error
	if h.colorize {
		// Style the line, not its terminator, so reset codes land before
		// the newline.
		line := formatted
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		if _, err = h.bw.WriteString(h.styles.render(level, line)); err == nil {
			err = h.bw.WriteByte('\n')
		}
	} else {
		_, err = h.bw.Write(formatted)
	}
	if err != nil {
		internalError(err)
	}
}

func (h *StreamHandler) Flush() error {
	if err := h.bw.Flush(); err != nil {
		internalError(err)
		return err
	}
	if h.out == os.Stdout || h.out == os.Stderr {
		// Terminal devices reject fsync; the bufio flush is all there is.
		return nil
	}
	if syncer, ok := h.out.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}
