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

import "github.com/charmbracelet/lipgloss/v2"

// Styles defines the per-level visual appearance of console records.
//
// The console handler renders the whole line through the style matching the
// record's level, so severity is readable at a glance.
type Styles struct {
	Levels map[Level]lipgloss.Style
}

// DefaultStyles initializes the standard color coded appearance.
func DefaultStyles() *Styles {
	return &Styles{
		Levels: map[Level]lipgloss.Style{
			TraceL3Level:  lipgloss.NewStyle().Faint(true),
			TraceL2Level:  lipgloss.NewStyle().Faint(true),
			TraceL1Level:  lipgloss.NewStyle().Faint(true),
			DebugLevel:    lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
			InfoLevel:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
			WarningLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("192")),
			ErrorLevel:    lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
			CriticalLevel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("134")),
			BacktraceLevel: lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")),
		},
	}
}

// render applies the level style to one formatted line. Lines for unknown
// levels pass through unchanged.
func (s *Styles) render(level Level, line []byte) string {
	style, ok := s.Levels[level]
	if !ok {
		return string(line)
	}
	return style.Render(string(line))
}
