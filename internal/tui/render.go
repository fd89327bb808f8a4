// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// markKind records how a position behind the cursor was reached.
type markKind int

const (
	markNone markKind = iota
	markCorrect
	markIncorrect
	markSkipped
)

const (
	enterGlyph = '⏎'
	tabWidth   = 4
)

type styledCell struct {
	s     string
	width int
}

// buildCells styles every position of the reference text according to
// the typing marks and cursor. Newlines terminate cells with an empty
// width so the wrapper can break lines exactly where the content does.
func buildCells(content []rune, marks map[int]markKind, cursor int) [][]styledCell {
	lines := [][]styledCell{}
	line := []styledCell{}
	for i, r := range content {
		style := pendingStyle
		switch marks[i] {
		case markCorrect:
			style = correctStyle
		case markIncorrect:
			style = incorrectStyle
		case markSkipped:
			style = skippedStyle
		}
		if i == cursor {
			style = cursorStyle
		}
		switch r {
		case '\n':
			line = append(line, styledCell{s: style.Render(string(enterGlyph)), width: 1})
			lines = append(lines, line)
			line = []styledCell{}
		case '\t':
			pad := strings.Repeat(" ", tabWidth)
			line = append(line, styledCell{s: style.Render(pad), width: tabWidth})
		default:
			line = append(line, styledCell{
				s:     style.Render(string(r)),
				width: runewidth.RuneWidth(r),
			})
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// wrapCells hard-wraps each content line to the given display width.
// The second return maps each display line back to its content line.
func wrapCells(lines [][]styledCell, width int) ([]string, []int) {
	out := []string{}
	origin := []int{}
	for idx, line := range lines {
		if width <= 0 {
			var b strings.Builder
			for _, c := range line {
				b.WriteString(c.s)
			}
			out = append(out, b.String())
			origin = append(origin, idx)
			continue
		}
		var b strings.Builder
		lineWidth := 0
		for _, c := range line {
			if lineWidth+c.width > width && lineWidth > 0 {
				out = append(out, b.String())
				origin = append(origin, idx)
				b.Reset()
				lineWidth = 0
			}
			b.WriteString(c.s)
			lineWidth += c.width
		}
		out = append(out, b.String())
		origin = append(origin, idx)
	}
	return out, origin
}

// displayLineFor finds the first display line rendered from the given
// content line.
func displayLineFor(origin []int, contentLine int) int {
	for i, o := range origin {
		if o == contentLine {
			return i
		}
	}
	return 0
}

// lineForPosition returns the index of the content line holding pos.
func lineForPosition(content []rune, pos int) int {
	line := 0
	for i := 0; i < pos && i < len(content); i++ {
		if content[i] == '\n' {
			line++
		}
	}
	return line
}

// visibleWindow selects the slice of lines to display so the line
// holding the cursor stays roughly centered.
func visibleWindow(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := cursorLine - height/2
	if start < 0 {
		start = 0
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}
