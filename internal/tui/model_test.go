package tui

import (
	"testing"

	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/model"
)

func newTestModel(t *testing.T, content string, opts model.Options) *Model {
	t.Helper()
	eng, err := engine.New(content, opts)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return NewModel("/src/demo.py", "Python", eng, nil, nil)
}

func TestKeystrokeMarksPositions(t *testing.T) {
	m := newTestModel(t, "hi", model.DefaultOptions())

	m.keystroke('h')
	if m.marks[0] != markCorrect {
		t.Fatalf("expected correct mark at 0, got %v", m.marks[0])
	}

	m.keystroke('x')
	if m.marks[1] != markIncorrect {
		t.Fatalf("expected incorrect mark at the locked position, got %v", m.marks[1])
	}

	m.backspace()
	if _, ok := m.marks[1]; ok {
		t.Fatalf("expected mark cleared by backspace")
	}

	m.keystroke('i')
	if !m.done {
		t.Fatalf("expected session finished")
	}
	if m.summary.Correct != 2 || m.summary.Incorrect != 1 {
		t.Fatalf("unexpected summary: %+v", m.summary)
	}
}

func TestKeystrokeMarksSkippedRun(t *testing.T) {
	m := newTestModel(t, "a:\n  bc", model.DefaultOptions())

	m.keystroke('a')
	m.keystroke(':')
	m.keystroke('\n')
	if m.marks[2] != markCorrect {
		t.Fatalf("expected correct mark for the newline, got %v", m.marks[2])
	}
	if m.marks[3] != markSkipped || m.marks[4] != markSkipped {
		t.Fatalf("expected skipped marks for the indent run, got %v %v", m.marks[3], m.marks[4])
	}

	m.backspace()
	if len(m.marks) != 3 {
		t.Fatalf("expected skipped marks cleared with the run, got %v", m.marks)
	}
}

func TestSkippedMarksFollowEngineState(t *testing.T) {
	m := newTestModel(t, "if x:\n\ty\n", model.DefaultOptions())
	for _, r := range "if x:\n" {
		m.keystroke(r)
	}

	s := m.eng.State()
	for i := 0; i < s.Cursor(); i++ {
		if s.IsSkipped(i) != (m.marks[i] == markSkipped) {
			t.Fatalf("mark at %d disagrees with engine skip state: skipped=%v mark=%v",
				i, s.IsSkipped(i), m.marks[i])
		}
	}
	if s.SkippedCount() == 0 {
		t.Fatalf("expected the tab to be auto-skipped")
	}
}

func TestResumedSessionMarksTypedPrefix(t *testing.T) {
	eng, err := engine.New("hello", model.DefaultOptions())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	eng.LoadProgress(3, 3, 0, 0)
	m := NewModel("/src/demo.py", "Python", eng, nil, nil)
	for i := 0; i < 3; i++ {
		if m.marks[i] != markCorrect {
			t.Fatalf("expected typed prefix marked at %d", i)
		}
	}
	if _, ok := m.marks[3]; ok {
		t.Fatalf("expected no mark at the cursor")
	}
}

func TestWordBackspaceClearsMarks(t *testing.T) {
	m := newTestModel(t, "one two three", model.DefaultOptions())
	for _, r := range "one two " {
		m.keystroke(r)
	}
	m.wordBackspace()
	if m.eng.State().Cursor() != 4 {
		t.Fatalf("expected cursor at start of deleted word, got %d", m.eng.State().Cursor())
	}
	for i := 4; i < 8; i++ {
		if _, ok := m.marks[i]; ok {
			t.Fatalf("expected mark %d cleared", i)
		}
	}
	for i := 0; i < 4; i++ {
		if m.marks[i] != markCorrect {
			t.Fatalf("expected mark %d kept", i)
		}
	}
}
