// Package engine implements the typing-session state machine.
package engine

import "time"

// noMistake marks the absence of an unresolved mistake.
const noMistake = -1

// State is the mutable record of one typing session. It is owned
// exclusively by a single Engine and mutated only through its operations.
type State struct {
	content []rune

	cursor     int
	correct    int
	incorrect  int
	maxCorrect int
	mistakeAt  int

	skipped map[int]struct{}

	startTime     time.Time
	lastKeystroke time.Time
	elapsed       time.Duration

	paused   bool
	finished bool
}

func newState(content []rune) *State {
	return &State{
		content:    content,
		maxCorrect: noMistake,
		mistakeAt:  noMistake,
		skipped:    map[int]struct{}{},
		paused:     true,
	}
}

// Content returns the reference text.
func (s *State) Content() []rune {
	return s.content
}

// Len returns the length of the reference text in runes.
func (s *State) Len() int {
	return len(s.content)
}

// Cursor returns the index of the next character to be matched.
func (s *State) Cursor() int {
	return s.cursor
}

// CorrectKeystrokes returns the correct-keystroke counter.
func (s *State) CorrectKeystrokes() int {
	return s.correct
}

// IncorrectKeystrokes returns the incorrect-keystroke counter.
func (s *State) IncorrectKeystrokes() int {
	return s.incorrect
}

// TotalKeystrokes returns the sum of correct and incorrect keystrokes.
func (s *State) TotalKeystrokes() int {
	return s.correct + s.incorrect
}

// MaxCorrectPosition returns the highest index ever reached by a scored
// correct keystroke, or -1 before the first one.
func (s *State) MaxCorrectPosition() int {
	return s.maxCorrect
}

// MistakeAt returns the index of the unresolved mistake and whether one
// is marked.
func (s *State) MistakeAt() (int, bool) {
	if s.mistakeAt == noMistake {
		return 0, false
	}
	return s.mistakeAt, true
}

// IsSkipped reports whether the position was advanced over by auto-indent.
func (s *State) IsSkipped(pos int) bool {
	_, ok := s.skipped[pos]
	return ok
}

// SkippedCount returns the number of auto-skipped positions.
func (s *State) SkippedCount() int {
	return len(s.skipped)
}

// Elapsed returns accumulated active typing time, excluding paused spans.
func (s *State) Elapsed() time.Duration {
	return s.elapsed
}

// IsPaused reports whether the session is paused.
func (s *State) IsPaused() bool {
	return s.paused
}

// IsFinished reports whether the session was completed.
func (s *State) IsFinished() bool {
	return s.finished
}

// IsComplete reports whether the cursor has reached the end of the text.
func (s *State) IsComplete() bool {
	return s.cursor >= len(s.content)
}

// Accuracy returns correct/total, or 1.0 before any keystroke.
func (s *State) Accuracy() float64 {
	total := s.TotalKeystrokes()
	if total == 0 {
		return 1.0
	}
	return float64(s.correct) / float64(total)
}

// WPM returns words per minute over manually typed characters. Positions
// advanced by auto-indent grant no speed credit.
func (s *State) WPM() float64 {
	if s.elapsed <= 0 {
		return 0
	}
	minutes := s.elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	manual := s.cursor - len(s.skipped)
	return (float64(manual) / 5.0) / minutes
}

// skippedRunBehind returns the length of the contiguous skipped run
// ending immediately before the cursor.
func (s *State) skippedRunBehind() int {
	run := 0
	for pos := s.cursor - 1; pos >= 0; pos-- {
		if _, ok := s.skipped[pos]; !ok {
			break
		}
		run++
	}
	return run
}
