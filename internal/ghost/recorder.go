package ghost

import (
	"time"

	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/model"
)

// Recorder collects normalized input events during a session. The first
// recorded event anchors the session start.
type Recorder struct {
	start  time.Time
	events []model.InputEvent

	now func() time.Time
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) record(kind model.EventKind, ch rune) {
	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	r.events = append(r.events, model.InputEvent{
		Kind:   kind,
		Rune:   ch,
		Offset: now.Sub(r.start),
	})
}

// RecordChar records a typed character.
func (r *Recorder) RecordChar(ch rune) {
	r.record(model.EventChar, ch)
}

// RecordBackspace records a backspace.
func (r *Recorder) RecordBackspace() {
	r.record(model.EventBackspace, 0)
}

// RecordWordBackspace records a word-backspace.
func (r *Recorder) RecordWordBackspace() {
	r.record(model.EventWordBackspace, 0)
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []model.InputEvent {
	return r.events
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.start = time.Time{}
	r.events = nil
}

// Replay re-drives an engine with recorded events. Timing offsets are
// ignored; the engine sees the same call sequence the live session made.
func Replay(e *engine.Engine, events []model.InputEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case model.EventBackspace:
			e.ProcessBackspace()
		case model.EventWordBackspace:
			e.ProcessCtrlBackspace()
		default:
			e.ProcessKeystroke(ev.Rune)
		}
	}
}
