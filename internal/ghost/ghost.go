// Package ghost stores and replays best-session keystroke recordings.
package ghost

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/codetype/internal/model"
)

// wire kinds for recorded events.
const (
	kindChar          = "c"
	kindBackspace     = "b"
	kindWordBackspace = "w"
)

// Event is the compact on-disk form of one recorded keystroke.
type Event struct {
	T int64  `json:"t"` // milliseconds from session start
	K string `json:"k"` // event kind
	R string `json:"r,omitempty"`
}

// Ghost is the stored best session for one source file.
type Ghost struct {
	File     string    `json:"file"`
	Hash     string    `json:"hash"`
	Date     time.Time `json:"date"`
	WPM      float64   `json:"wpm"`
	Accuracy float64   `json:"acc"`
	Events   []Event   `json:"keys"`
	Checksum string    `json:"checksum,omitempty"`
}

// Manager keeps at most one ghost per source file, named by a hash of
// the file's content so edits invalidate stale recordings.
type Manager struct {
	dir string
}

// NewManager creates the ghosts directory if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ghost directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

func fileHash(filePath string) string {
	data, err := os.ReadFile(filePath)
	if err != nil {
		// Fall back to hashing the path so lookups stay stable.
		sum := sha256.Sum256([]byte(filePath))
		return hex.EncodeToString(sum[:])[:16]
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

func (m *Manager) ghostPath(filePath string) string {
	return filepath.Join(m.dir, fileHash(filePath)+".json.gz")
}

func checksum(g Ghost) (string, error) {
	g.Checksum = ""
	data, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:8], nil
}

// ShouldSave reports whether a session at the given WPM beats the
// stored ghost. Unreadable ghosts are treated as beatable.
func (m *Manager) ShouldSave(filePath string, wpm float64) bool {
	existing, err := m.Load(filePath)
	if err != nil || existing == nil {
		return true
	}
	return wpm > existing.WPM
}

// Save writes a ghost atomically via a temp file and rename.
func (m *Manager) Save(filePath string, g Ghost) error {
	g.File = filePath
	g.Hash = fileHash(filePath)
	sum, err := checksum(g)
	if err != nil {
		return fmt.Errorf("failed to checksum ghost: %w", err)
	}
	g.Checksum = sum

	path := m.ghostPath(filePath)
	tmpFile, err := os.CreateTemp(m.dir, "ghost-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp ghost: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	zw := gzip.NewWriter(tmpFile)
	if err := json.NewEncoder(zw).Encode(g); err != nil {
		return fmt.Errorf("failed to encode ghost: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush ghost: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close ghost: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write ghost: %w", err)
	}
	return nil
}

// Load returns the stored ghost for a file, or nil when none exists.
// A checksum mismatch is reported as an error.
func (m *Manager) Load(filePath string) (*Ghost, error) {
	f, err := os.Open(m.ghostPath(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ghost: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read ghost: %w", err)
	}
	var g Ghost
	if err := json.NewDecoder(zr).Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to decode ghost: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ghost reader: %w", err)
	}

	want := g.Checksum
	got, err := checksum(g)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum ghost: %w", err)
	}
	if want != "" && want != got {
		return nil, fmt.Errorf("ghost checksum mismatch for %s", filePath)
	}
	return &g, nil
}

// EncodeEvents converts normalized input events to the wire form.
func EncodeEvents(events []model.InputEvent) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		wire := Event{T: ev.Offset.Milliseconds()}
		switch ev.Kind {
		case model.EventBackspace:
			wire.K = kindBackspace
		case model.EventWordBackspace:
			wire.K = kindWordBackspace
		default:
			wire.K = kindChar
			wire.R = string(ev.Rune)
		}
		out = append(out, wire)
	}
	return out
}

// DecodeEvents converts wire events back to normalized input events.
func DecodeEvents(events []Event) []model.InputEvent {
	out := make([]model.InputEvent, 0, len(events))
	for _, wire := range events {
		ev := model.InputEvent{Offset: time.Duration(wire.T) * time.Millisecond}
		switch wire.K {
		case kindBackspace:
			ev.Kind = model.EventBackspace
		case kindWordBackspace:
			ev.Kind = model.EventWordBackspace
		default:
			ev.Kind = model.EventChar
			for _, r := range wire.R {
				ev.Rune = r
				break
			}
		}
		out = append(out, ev)
	}
	return out
}
