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

import "errors"

// ErrWouldBlock is returned by the per-producer queue when an enqueue cannot
// proceed because the ring is full. The overflow policy decides what happens
// next; producers never see this error directly.
var ErrWouldBlock = errors.New("plume: operation would block")

// ErrDuplicateFilter is returned by Handler.AddFilter when a filter with the
// same name is already registered on the handler.
var ErrDuplicateFilter = errors.New("plume: filter with the same name already exists")

// IsWouldBlock reports whether err indicates a full or empty queue.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}
