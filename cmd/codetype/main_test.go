package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

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

func recordSession(t *testing.T, st *store.Store, path, lang string, wpm float64, at time.Time) {
	t.Helper()
	_, err := st.RecordHistory(context.Background(), path, lang, model.Summary{
		WPM:       wpm,
		Accuracy:  0.9,
		Seconds:   60,
		Total:     300,
		Correct:   270,
		Incorrect: 30,
	}, true, at)
	if err != nil {
		t.Fatalf("failed to record history: %v", err)
	}
}

func TestPrintPlainHistory(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	recordSession(t, st, "/src/a.go", "go", 40, base)
	recordSession(t, st, "/src/b.go", "go", 50, base.Add(time.Hour))

	err := st.SaveProgress(context.Background(), "/src/wip.py", model.Progress{
		CursorPosition:    20,
		TotalCharacters:   100,
		CorrectKeystrokes: 20,
		Seconds:           15,
		IsPaused:          true,
	}, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("failed to save progress: %v", err)
	}

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := printPlainHistory(cmd, st, model.HistoryFilter{}); err != nil {
		t.Fatalf("printPlainHistory: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "2 sessions") {
		t.Fatalf("missing aggregate line in:\n%s", got)
	}
	if !strings.Contains(got, "WPM trend") {
		t.Fatalf("missing trend line in:\n%s", got)
	}
	if !strings.Contains(got, "CPM") {
		t.Fatalf("missing CPM column in:\n%s", got)
	}
	// 270 correct over 60s is 270 CPM.
	if !strings.Contains(got, "270") {
		t.Fatalf("missing CPM value in:\n%s", got)
	}
	if !strings.Contains(got, "In progress (1):") || !strings.Contains(got, "/src/wip.py") {
		t.Fatalf("missing in-progress section in:\n%s", got)
	}
}

func TestPrintPlainHistoryEmpty(t *testing.T) {
	st := newTestStore(t)

	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := printPlainHistory(cmd, st, model.HistoryFilter{}); err != nil {
		t.Fatalf("printPlainHistory: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions recorded yet.") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestValidateHistoryLang(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	recordSession(t, st, "/src/a.go", "go", 40, base)
	recordSession(t, st, "/src/b.py", "python", 45, base.Add(time.Minute))

	ctx := context.Background()
	if err := validateHistoryLang(ctx, st, "go"); err != nil {
		t.Fatalf("expected recorded language to validate: %v", err)
	}
	err := validateHistoryLang(ctx, st, "rust")
	if err == nil {
		t.Fatalf("expected error for unrecorded language")
	}
	if !strings.Contains(err.Error(), "go, python") {
		t.Fatalf("expected recorded languages in error, got: %v", err)
	}
}

func TestNormalizeContent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb\n"},
		{"a\n\n\n", "a\n"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeContent(tc.in); got != tc.want {
			t.Fatalf("normalizeContent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
