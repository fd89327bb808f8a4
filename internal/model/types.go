// Package model defines shared data structures.
package model

import "time"

// Options defines practice settings pushed into the engine.
type Options struct {
	PauseDelay            time.Duration
	AllowContinueMistakes bool
	AutoIndent            bool
}

// DefaultOptions returns the stock practice settings.
func DefaultOptions() Options {
	return Options{
		PauseDelay:            7 * time.Second,
		AllowContinueMistakes: false,
		AutoIndent:            true,
	}
}

// Summary captures a finished typing session for history recording.
type Summary struct {
	WPM         float64
	Accuracy    float64
	Seconds     float64
	Total       int
	Correct     int
	Incorrect   int
	StatusText  string
	StatusColor string
}

// Progress is the resumable-session record exchanged with the store.
type Progress struct {
	CursorPosition      int
	TotalCharacters     int
	CorrectKeystrokes   int
	IncorrectKeystrokes int
	Seconds             float64
	IsPaused            bool
}

// FileStats tracks per-file bests across sessions.
type FileStats struct {
	FilePath       string
	BestWPM        float64
	LastWPM        float64
	BestAccuracy   float64
	LastAccuracy   float64
	TimesPracticed int
	LastPracticed  time.Time
	Completed      bool
}

// HistoryEntry is one recorded session in the history table.
type HistoryEntry struct {
	ID         int64
	FilePath   string
	Language   string
	WPM        float64
	Accuracy   float64
	Total      int
	Correct    int
	Incorrect  int
	Seconds    float64
	Completed  bool
	RecordedAt time.Time
}

// HistoryFilter selects history rows. Nil fields are ignored.
type HistoryFilter struct {
	Language    string
	MinWPM      *float64
	MaxWPM      *float64
	MinDuration *float64
	MaxDuration *float64
}

// EventKind tags a normalized input event.
type EventKind int

// Input event variants.
const (
	EventChar EventKind = iota
	EventBackspace
	EventWordBackspace
)

// InputEvent is a normalized, timestamped keystroke suitable for
// recording and replay. Offset is measured from session start.
type InputEvent struct {
	Kind   EventKind
	Rune   rune
	Offset time.Duration
}
