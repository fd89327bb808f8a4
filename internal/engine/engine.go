package engine

import (
	"fmt"
	"time"
	"unicode"

	"github.com/verte-zerg/codetype/internal/model"
)

// Result describes the outcome of one keystroke. Expected is zero when
// the keystroke was not evaluated against the reference text (finished
// session, out-of-range cursor, or an active strict-mode mistake lock).
type Result struct {
	Correct  bool
	Expected rune
	Skipped  int
}

// Engine drives a single typing session over a fixed reference text.
// It has no internal scheduler; callers poll CheckAutoPause on their
// own cadence.
type Engine struct {
	state *State

	pauseDelay    time.Duration
	allowContinue bool
	autoIndent    bool

	now func() time.Time
}

// New constructs an engine for the given reference text. Empty content
// is rejected.
func New(content string, opts model.Options) (*Engine, error) {
	if content == "" {
		return nil, fmt.Errorf("engine content must not be empty")
	}
	pauseDelay := opts.PauseDelay
	if pauseDelay <= 0 {
		pauseDelay = model.DefaultOptions().PauseDelay
	}
	return &Engine{
		state:         newState([]rune(content)),
		pauseDelay:    pauseDelay,
		allowContinue: opts.AllowContinueMistakes,
		autoIndent:    opts.AutoIndent,
		now:           time.Now,
	}, nil
}

// State returns the session state owned by this engine.
func (e *Engine) State() *State {
	return e.state
}

// SetAutoIndent toggles automatic indentation skipping at runtime.
func (e *Engine) SetAutoIndent(enabled bool) {
	e.autoIndent = enabled
}

// Start begins or resumes the session. Idempotent when already running;
// always refreshes the inactivity anchor.
func (e *Engine) Start() {
	s := e.state
	if s.finished {
		return
	}
	now := e.now()
	if s.paused {
		s.paused = false
		if s.startTime.IsZero() {
			s.startTime = now
		} else {
			// Re-anchor so elapsed excludes the paused span.
			s.startTime = now.Add(-s.elapsed)
		}
	}
	s.lastKeystroke = now
}

// Pause stops the clock. Idempotent when already paused.
func (e *Engine) Pause() {
	if !e.state.paused {
		e.updateElapsed()
		e.state.paused = true
	}
}

// CheckAutoPause pauses the session when more than the configured delay
// has passed since the last keystroke. Returns true when it paused.
func (e *Engine) CheckAutoPause() bool {
	s := e.state
	if s.paused || s.lastKeystroke.IsZero() {
		return false
	}
	if e.now().Sub(s.lastKeystroke) > e.pauseDelay {
		e.Pause()
		return true
	}
	return false
}

func (e *Engine) updateElapsed() {
	s := e.state
	if !s.paused && !s.startTime.IsZero() {
		s.elapsed = e.now().Sub(s.startTime)
	}
}

// ProcessKeystroke validates one typed character against the reference
// text and advances the session.
func (e *Engine) ProcessKeystroke(typed rune) Result {
	s := e.state
	if s.finished {
		return Result{}
	}
	if s.paused {
		e.Start()
	}
	s.lastKeystroke = e.now()

	if s.cursor >= len(s.content) {
		return Result{}
	}

	// Strict mode freezes the cursor at an unresolved mistake. Further
	// keystrokes count as incorrect but are never evaluated.
	if !e.allowContinue && s.mistakeAt != noMistake {
		s.incorrect++
		e.updateElapsed()
		return Result{}
	}

	expected := s.content[s.cursor]
	if typed == expected {
		res := Result{Correct: true, Expected: expected}
		pos := s.cursor
		if pos > s.maxCorrect {
			// Only forward progress past the high-water mark is scored.
			s.correct++
			s.maxCorrect = pos
		}
		s.cursor++
		if s.mistakeAt != noMistake && s.cursor > s.mistakeAt {
			s.mistakeAt = noMistake
		}
		if e.autoIndent && expected == '\n' && s.mistakeAt == noMistake {
			res.Skipped = e.skipIndent()
		}
		if s.cursor >= len(s.content) {
			e.finish()
		}
		e.updateElapsed()
		return res
	}

	s.incorrect++
	if e.allowContinue {
		// The wrong character is accepted into the stream. The marker
		// stays pinned to the first error of the run.
		if s.mistakeAt == noMistake {
			s.mistakeAt = s.cursor
		}
		s.cursor++
		if s.cursor >= len(s.content) {
			e.finish()
		}
	} else {
		s.mistakeAt = s.cursor
	}
	e.updateElapsed()
	return Result{Correct: false, Expected: expected}
}

// skipIndent advances over the horizontal whitespace run following a
// typed newline and records the traversed positions.
func (e *Engine) skipIndent() int {
	s := e.state
	count := 0
	for s.cursor < len(s.content) {
		ch := s.content[s.cursor]
		if ch != ' ' && ch != '\t' {
			break
		}
		s.skipped[s.cursor] = struct{}{}
		s.cursor++
		count++
	}
	return count
}

func (e *Engine) finish() {
	e.updateElapsed()
	e.state.finished = true
	e.state.paused = true
}

// ProcessBackspace moves the cursor back one step. A strict-mode lock
// at the cursor is cleared without movement, and an auto-indent run is
// removed as one atomic unit.
func (e *Engine) ProcessBackspace() {
	s := e.state
	if s.finished {
		return
	}
	s.lastKeystroke = e.now()

	if s.mistakeAt == s.cursor {
		s.mistakeAt = noMistake
		return
	}
	if run := s.skippedRunBehind(); run > 0 {
		for i := 0; i < run; i++ {
			s.cursor--
			delete(s.skipped, s.cursor)
		}
	} else if s.cursor > 0 {
		s.cursor--
	} else {
		return
	}
	if s.mistakeAt != noMistake && s.cursor <= s.mistakeAt {
		s.mistakeAt = noMistake
	}
}

// ProcessCtrlBackspace deletes the word to the left of the cursor.
func (e *Engine) ProcessCtrlBackspace() {
	s := e.state
	if s.finished || s.cursor == 0 {
		return
	}
	pos := s.cursor - 1
	for pos > 0 && unicode.IsSpace(s.content[pos]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(s.content[pos]) {
		pos--
	}
	if pos > 0 || unicode.IsSpace(s.content[0]) {
		pos++
	}
	for i := pos; i < s.cursor; i++ {
		delete(s.skipped, i)
	}
	s.cursor = pos
	if s.mistakeAt != noMistake && s.cursor <= s.mistakeAt {
		s.mistakeAt = noMistake
	}
	s.lastKeystroke = e.now()
}

// Reset returns the session to the beginning of the text.
func (e *Engine) Reset() {
	s := e.state
	s.cursor = 0
	s.correct = 0
	s.incorrect = 0
	s.maxCorrect = noMistake
	s.mistakeAt = noMistake
	s.skipped = map[int]struct{}{}
	s.startTime = time.Time{}
	s.lastKeystroke = time.Time{}
	s.elapsed = 0
	s.paused = true
	s.finished = false
}

// LoadProgress rehydrates a previously saved partial session. The
// session resumes paused, without a mistake lock, and with the clock
// anchored so a subsequent Start continues from the saved elapsed time.
func (e *Engine) LoadProgress(cursorPos, correct, incorrect int, elapsed time.Duration) {
	s := e.state
	if cursorPos < 0 {
		cursorPos = 0
	}
	if cursorPos > len(s.content) {
		cursorPos = len(s.content)
	}
	s.cursor = cursorPos
	s.correct = correct
	s.incorrect = incorrect
	s.elapsed = elapsed
	s.paused = true
	s.finished = false
	s.mistakeAt = noMistake
	s.skipped = map[int]struct{}{}
	s.startTime = e.now().Add(-elapsed)
}

// Len returns the reference-text length in runes.
func (e *Engine) Len() int {
	return e.state.Len()
}

// Progress snapshots the persistence fields for the external store.
func (e *Engine) Progress() model.Progress {
	s := e.state
	return model.Progress{
		CursorPosition:      s.cursor,
		TotalCharacters:     len(s.content),
		CorrectKeystrokes:   s.correct,
		IncorrectKeystrokes: s.incorrect,
		Seconds:             s.elapsed.Seconds(),
		IsPaused:            s.paused,
	}
}

// FinalStats projects the session into a display summary. Read-only.
func (e *Engine) FinalStats() model.Summary {
	s := e.state
	acc := s.Accuracy()
	text, color := statusFor(acc)
	return model.Summary{
		WPM:         s.WPM(),
		Accuracy:    acc,
		Seconds:     s.elapsed.Seconds(),
		Total:       s.TotalKeystrokes(),
		Correct:     s.correct,
		Incorrect:   s.incorrect,
		StatusText:  text,
		StatusColor: color,
	}
}

func statusFor(accuracy float64) (text, color string) {
	switch {
	case accuracy >= 0.95:
		return "Excellent", "#52C41A"
	case accuracy >= 0.85:
		return "Good", "#C89A3A"
	default:
		return "Needs practice", "#FF4D4F"
	}
}
