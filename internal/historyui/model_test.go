package historyui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}
	})
	return st
}

func recordSession(t *testing.T, st *store.Store, path string, wpm float64, at time.Time) int64 {
	t.Helper()
	id, err := st.RecordHistory(context.Background(), path, "go", model.Summary{
		WPM:      wpm,
		Accuracy: 0.95,
		Seconds:  60,
		Total:    100,
		Correct:  95,
	}, true, at)
	if err != nil {
		t.Fatalf("failed to record history: %v", err)
	}
	return id
}

func TestModelListsSessions(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recordSession(t, st, "/src/main.go", 40, base)
	recordSession(t, st, "/src/util.go", 55, base.Add(time.Hour))

	m := NewModel(st, model.HistoryFilter{})
	if len(m.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(m.entries))
	}
	// Newest first.
	if m.entries[0].FilePath != "/src/util.go" {
		t.Fatalf("first entry = %q, want /src/util.go", m.entries[0].FilePath)
	}
	if got := len(m.table.Rows()); got != 2 {
		t.Fatalf("table rows = %d, want 2", got)
	}
	if m.agg.BestWPM != 55 {
		t.Fatalf("BestWPM = %v, want 55", m.agg.BestWPM)
	}
}

func TestModelDeleteSelected(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recordSession(t, st, "/src/a.go", 40, base)
	recordSession(t, st, "/src/b.go", 50, base.Add(time.Minute))

	m := NewModel(st, model.HistoryFilter{})
	m.table.SetCursor(0)
	m.deleteSelected()

	if len(m.entries) != 1 {
		t.Fatalf("entries = %d after delete, want 1", len(m.entries))
	}
	if m.entries[0].FilePath != "/src/a.go" {
		t.Fatalf("remaining entry = %q, want /src/a.go", m.entries[0].FilePath)
	}
}

func TestModelQuitKeys(t *testing.T) {
	st := newTestStore(t)
	m := NewModel(st, model.HistoryFilter{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command for q")
	}
}

func TestShortenPath(t *testing.T) {
	if got := shortenPath("/short.go", 32); got != "/short.go" {
		t.Fatalf("shortenPath = %q", got)
	}
	long := "/very/long/path/to/some/deeply/nested/source/file.go"
	got := shortenPath(long, 20)
	if len([]rune(got)) > 20 {
		t.Fatalf("shortened path %q longer than 20", got)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{45, "45s"},
		{60, "1m00s"},
		{125, "2m05s"},
	}
	for _, tc := range cases {
		if got := formatSeconds(tc.in); got != tc.want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
