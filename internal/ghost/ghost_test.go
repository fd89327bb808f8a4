package ghost

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/model"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.py")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	src := writeSource(t, "print('hi')\n")

	g := Ghost{
		Date:     time.Unix(1000, 0).UTC(),
		WPM:      42.5,
		Accuracy: 0.96,
		Events: EncodeEvents([]model.InputEvent{
			{Kind: model.EventChar, Rune: 'p', Offset: 0},
			{Kind: model.EventBackspace, Offset: 120 * time.Millisecond},
			{Kind: model.EventChar, Rune: 'p', Offset: 250 * time.Millisecond},
		}),
	}
	if err := m.Save(src, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := m.Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatalf("expected stored ghost")
	}
	if got.WPM != 42.5 || got.Accuracy != 0.96 {
		t.Fatalf("unexpected ghost: %+v", got)
	}
	if got.Checksum == "" {
		t.Fatalf("expected checksum recorded")
	}
	events := DecodeEvents(got.Events)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Kind != model.EventBackspace {
		t.Fatalf("expected backspace event, got %+v", events[1])
	}
	if events[2].Rune != 'p' || events[2].Offset != 250*time.Millisecond {
		t.Fatalf("unexpected event: %+v", events[2])
	}
}

func TestLoadMissing(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	src := writeSource(t, "x\n")
	got, err := m.Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing ghost, got %+v", got)
	}
}

func TestShouldSaveOnlyBest(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	src := writeSource(t, "x\n")

	if !m.ShouldSave(src, 30) {
		t.Fatalf("first completion must always save")
	}
	if err := m.Save(src, Ghost{WPM: 30}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if m.ShouldSave(src, 25) {
		t.Fatalf("slower session must not replace the best")
	}
	if !m.ShouldSave(src, 35) {
		t.Fatalf("faster session must replace the best")
	}
}

func TestGhostInvalidatedByFileEdit(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	src := writeSource(t, "original\n")
	if err := m.Save(src, Ghost{WPM: 50}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := os.WriteFile(src, []byte("edited\n"), 0o644); err != nil {
		t.Fatalf("edit source: %v", err)
	}
	got, err := m.Load(src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("edited file must not match the old ghost")
	}
}

func TestRecorderAndReplay(t *testing.T) {
	rec := NewRecorder()
	clk := time.Unix(1000, 0)
	rec.now = func() time.Time { return clk }

	rec.RecordChar('h')
	clk = clk.Add(100 * time.Millisecond)
	rec.RecordChar('x')
	clk = clk.Add(100 * time.Millisecond)
	rec.RecordBackspace()
	rec.RecordChar('i')

	events := rec.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].Offset != 100*time.Millisecond {
		t.Fatalf("expected 100ms offset, got %v", events[1].Offset)
	}

	e, err := engine.New("hi", model.DefaultOptions())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	Replay(e, events)
	s := e.State()
	if !s.IsFinished() {
		t.Fatalf("expected replayed session to finish")
	}
	if s.CorrectKeystrokes() != 2 || s.IncorrectKeystrokes() != 1 {
		t.Fatalf("unexpected replay counters: correct=%d incorrect=%d",
			s.CorrectKeystrokes(), s.IncorrectKeystrokes())
	}
}
