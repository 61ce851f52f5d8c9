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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// RotationWhen selects the unit of the rotation interval.
type RotationWhen string

const (
	// RotateMinutes rotates every interval minutes.
	RotateMinutes RotationWhen = "M"
	// RotateHours rotates every interval hours.
	RotateHours RotationWhen = "H"
	// RotateDaily rotates once a day at the configured wall time.
	RotateDaily RotationWhen = "daily"
)

// TimeRotatingFileHandler writes to a file and rotates it on a wall-clock
// schedule. A rotation closes the active file, renames it with a datetime
// suffix, drops the oldest backup beyond BackupCount and opens a fresh file.
// At most one rotation happens per write; the trigger is the record
// timestamp reaching the next rotation time.
type TimeRotatingFileHandler struct {
	*FileHandler

	when        RotationWhen
	interval    uint32
	backupCount uint32
	utc         bool

	createdFiles     []string
	fileCreationTime time.Time
	nextRotation     time.Time

	// nowFn stands in for time.Now so rotation is testable.
	nowFn func() time.Time
}

// TimeRotatingFileHandlerOptions configures the rotation schedule.
type TimeRotatingFileHandlerOptions struct {
	// Mode is the open mode of the initial file, "a" (default) or "w".
	Mode string
	// When selects the interval unit; defaults to RotateHours.
	When RotationWhen
	// Interval is the number of minutes or hours between rotations for the
	// M and H modes; defaults to 1. Ignored for daily rotation.
	Interval uint32
	// BackupCount bounds how many rotated files are kept.
	BackupCount uint32
	// UTC computes rotation boundaries in UTC instead of local time.
	UTC bool
	// AtTime is the "HH:MM" wall time of the daily rotation; defaults to
	// "00:00". Ignored for the M and H modes.
	AtTime string
	// Notifier observes open, close and write events of the active file.
	Notifier FileEventNotifier
}

// NewTimeRotatingFileHandler opens the initial file and computes the first
// rotation point.
func NewTimeRotatingFileHandler(path string, opts TimeRotatingFileHandlerOptions) (*TimeRotatingFileHandler, error) {
	if opts.When == "" {
		opts.When = RotateHours
	}
	if opts.When != RotateMinutes && opts.When != RotateHours && opts.When != RotateDaily {
		return nil, errors.Errorf("plume: invalid rotation unit %q, valid values are M, H or daily", opts.When)
	}
	if opts.Interval == 0 {
		opts.Interval = 1
	}
	if opts.AtTime == "" {
		opts.AtTime = "00:00"
	}

	atHour, atMinute, err := parseAtTime(opts.AtTime)
	if err != nil {
		return nil, err
	}

	fh, err := NewFileHandler(path, FileHandlerOptions{Mode: opts.Mode, Notifier: opts.Notifier})
	if err != nil {
		return nil, err
	}

	h := &TimeRotatingFileHandler{
		FileHandler: fh,
		when:        opts.When,
		interval:    opts.Interval,
		backupCount: opts.BackupCount,
		utc:         opts.UTC,
		nowFn:       time.Now,
	}
	h.fileCreationTime = h.nowFn()
	h.nextRotation = h.initialRotationTime(h.fileCreationTime, atHour, atMinute)
	return h, nil
}

func parseAtTime(atTime string) (hour, minute int, err error) {
	parts := strings.Split(atTime, ":")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("plume: invalid rotation time %q, expected HH:MM", atTime)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "plume: invalid rotation time %q", atTime)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "plume: invalid rotation time %q", atTime)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("plume: rotation time %q out of range", atTime)
	}
	return hour, minute, nil
}

func (h *TimeRotatingFileHandler) location() *time.Location {
	if h.utc {
		return time.UTC
	}
	return time.Local
}

// initialRotationTime aligns the first rotation on a unit boundary: the next
// sharp minute or hour, or the next occurrence of the daily wall time.
func (h *TimeRotatingFileHandler) initialRotationTime(now time.Time, atHour, atMinute int) time.Time {
	t := now.In(h.location())
	year, month, day := t.Date()

	var rotation time.Time
	switch h.when {
	case RotateMinutes:
		rotation = time.Date(year, month, day, t.Hour(), t.Minute()+1, 0, 0, h.location())
	case RotateHours:
		rotation = time.Date(year, month, day, t.Hour()+1, 0, 0, 0, h.location())
	case RotateDaily:
		rotation = time.Date(year, month, day, atHour, atMinute, 0, 0, h.location())
	}

	if !rotation.After(now) {
		rotation = rotation.Add(24 * time.Hour)
	}
	return rotation
}

// nextRotationTime advances from the previous boundary by one interval.
func (h *TimeRotatingFileHandler) nextRotationTime(from time.Time) time.Time {
	switch h.when {
	case RotateMinutes:
		return from.Add(time.Duration(h.interval) * time.Minute)
	case RotateHours:
		return from.Add(time.Duration(h.interval) * time.Hour)
	default:
		return from.Add(24 * time.Hour)
	}
}

func (h *TimeRotatingFileHandler) Write(formatted []byte, ns int64, level Level) {
	if ns >= h.nextRotation.UnixNano() {
		if err := h.rotate(); err != nil {
			internalError(err)
		}
	}
	h.FileHandler.Write(formatted, ns, level)
}

// rotate performs a single rotation: rename the active file with its
// creation datetime, trim the backup queue and reopen.
func (h *TimeRotatingFileHandler) rotate() error {
	if err := h.close(); err != nil {
		return errors.Wrap(err, "plume: failed to close log file during rotation")
	}

	renamed := appendDateToFilename(h.path, h.fileCreationTime.In(h.location()), true)
	if err := os.Rename(h.path, renamed); err != nil {
		return errors.Wrap(err, "plume: failed to rename log file during rotation")
	}

	h.createdFiles = append(h.createdFiles, renamed)
	if uint32(len(h.createdFiles)) > h.backupCount {
		if err := os.Remove(h.createdFiles[0]); err != nil {
			internalError(err)
		}
		h.createdFiles = h.createdFiles[1:]
	}

	h.fileCreationTime = h.nowFn()
	h.nextRotation = h.nextRotationTime(h.nextRotation)
	return h.open("w")
}
