package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLanguage(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"main.go", "Go"},
		{"src/app.PY", "Python"},
		{"index.html", "HTML"},
		{"weird.xyz", "Unknown"},
		{"noext", "Unknown"},
	}
	for _, tc := range cases {
		if got := Language(tc.path); got != tc.want {
			t.Fatalf("Language(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestScanGroupsByLanguage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"))
	writeFile(t, filepath.Join(dir, "sub", "util.py"))
	writeFile(t, filepath.Join(dir, "sub", "other.py"))
	writeFile(t, filepath.Join(dir, "notes.xyz"))

	got := Scan([]string{dir})
	if len(got["Go"]) != 1 {
		t.Fatalf("expected 1 Go file, got %v", got["Go"])
	}
	if len(got["Python"]) != 2 {
		t.Fatalf("expected 2 Python files, got %v", got["Python"])
	}
	if _, ok := got["Unknown"]; ok {
		t.Fatalf("unrecognized extensions must be skipped")
	}
}

func TestScanSkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".git", "hooks.py"))
	writeFile(t, filepath.Join(dir, "node_modules", "mod.js"))
	writeFile(t, filepath.Join(dir, "src", "ok.js"))

	got := Scan([]string{dir})
	if len(got["JavaScript"]) != 1 {
		t.Fatalf("expected ignored dirs skipped, got %v", got["JavaScript"])
	}
	if len(got["Python"]) != 0 {
		t.Fatalf("expected .git contents skipped, got %v", got["Python"])
	}
}

func TestScanMissingFolder(t *testing.T) {
	got := Scan([]string{filepath.Join(t.TempDir(), "missing")})
	if len(got) != 0 {
		t.Fatalf("expected empty result for missing folder, got %v", got)
	}
}
