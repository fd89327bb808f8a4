// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/codetype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for file stats, resumable progress, and
// session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS file_stats (
			file_path TEXT PRIMARY KEY,
			best_wpm REAL NOT NULL DEFAULT 0,
			last_wpm REAL NOT NULL DEFAULT 0,
			best_accuracy REAL NOT NULL DEFAULT 0,
			last_accuracy REAL NOT NULL DEFAULT 0,
			times_practiced INTEGER NOT NULL DEFAULT 0,
			last_practiced TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS session_progress (
			file_path TEXT PRIMARY KEY,
			cursor_position INTEGER NOT NULL DEFAULT 0,
			total_characters INTEGER NOT NULL DEFAULT 0,
			correct_keystrokes INTEGER NOT NULL DEFAULT 0,
			incorrect_keystrokes INTEGER NOT NULL DEFAULT 0,
			session_time REAL NOT NULL DEFAULT 0,
			is_paused INTEGER NOT NULL DEFAULT 1,
			last_updated TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_history (
			id INTEGER PRIMARY KEY,
			file_path TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			total_keystrokes INTEGER NOT NULL DEFAULT 0,
			correct_keystrokes INTEGER NOT NULL DEFAULT 0,
			incorrect_keystrokes INTEGER NOT NULL DEFAULT 0,
			duration REAL NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_history_file_path
			ON session_history(file_path, recorded_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_session_history_language
			ON session_history(language);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetFileStats returns per-file bests, or nil when the file has none.
func (s *Store) GetFileStats(ctx context.Context, filePath string) (*model.FileStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT file_path, best_wpm, last_wpm, best_accuracy, last_accuracy,
			times_practiced, last_practiced, completed
		 FROM file_stats WHERE file_path = ?`, filePath)

	var fs model.FileStats
	var lastPracticed string
	err := row.Scan(&fs.FilePath, &fs.BestWPM, &fs.LastWPM, &fs.BestAccuracy,
		&fs.LastAccuracy, &fs.TimesPracticed, &lastPracticed, &fs.Completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastPracticed != "" {
		parsed, err := time.Parse(time.RFC3339Nano, lastPracticed)
		if err != nil {
			return nil, err
		}
		fs.LastPracticed = parsed
	}
	return &fs, nil
}

// UpdateFileStats folds one finished (or abandoned) session into the
// per-file record. Bests only ever increase; completion is sticky.
func (s *Store) UpdateFileStats(ctx context.Context, filePath string, wpm, accuracy float64, completed bool, now time.Time) error {
	existing, err := s.GetFileStats(ctx, filePath)
	if err != nil {
		return err
	}
	next := model.FileStats{
		FilePath:       filePath,
		BestWPM:        wpm,
		LastWPM:        wpm,
		BestAccuracy:   accuracy,
		LastAccuracy:   accuracy,
		TimesPracticed: 1,
		LastPracticed:  now,
		Completed:      completed,
	}
	if existing != nil {
		if existing.BestWPM > next.BestWPM {
			next.BestWPM = existing.BestWPM
		}
		if existing.BestAccuracy > next.BestAccuracy {
			next.BestAccuracy = existing.BestAccuracy
		}
		next.TimesPracticed = existing.TimesPracticed + 1
		next.Completed = existing.Completed || completed
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO file_stats (file_path, best_wpm, last_wpm, best_accuracy, last_accuracy, times_practiced, last_practiced, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
			best_wpm = excluded.best_wpm,
			last_wpm = excluded.last_wpm,
			best_accuracy = excluded.best_accuracy,
			last_accuracy = excluded.last_accuracy,
			times_practiced = excluded.times_practiced,
			last_practiced = excluded.last_practiced,
			completed = excluded.completed`,
		next.FilePath, next.BestWPM, next.LastWPM, next.BestAccuracy,
		next.LastAccuracy, next.TimesPracticed,
		next.LastPracticed.Format(time.RFC3339Nano), next.Completed)
	return err
}

// SaveProgress stores a resumable partial session for a file.
func (s *Store) SaveProgress(ctx context.Context, filePath string, p model.Progress, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_progress (file_path, cursor_position, total_characters, correct_keystrokes, incorrect_keystrokes, session_time, is_paused, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
			cursor_position = excluded.cursor_position,
			total_characters = excluded.total_characters,
			correct_keystrokes = excluded.correct_keystrokes,
			incorrect_keystrokes = excluded.incorrect_keystrokes,
			session_time = excluded.session_time,
			is_paused = excluded.is_paused,
			last_updated = excluded.last_updated`,
		filePath, p.CursorPosition, p.TotalCharacters, p.CorrectKeystrokes,
		p.IncorrectKeystrokes, p.Seconds, p.IsPaused,
		now.Format(time.RFC3339Nano))
	return err
}

// GetProgress returns saved progress for a file, or nil when none exists.
func (s *Store) GetProgress(ctx context.Context, filePath string) (*model.Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT cursor_position, total_characters, correct_keystrokes, incorrect_keystrokes, session_time, is_paused
		 FROM session_progress WHERE file_path = ?`, filePath)

	var p model.Progress
	err := row.Scan(&p.CursorPosition, &p.TotalCharacters, &p.CorrectKeystrokes,
		&p.IncorrectKeystrokes, &p.Seconds, &p.IsPaused)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClearProgress removes saved progress for a file.
func (s *Store) ClearProgress(ctx context.Context, filePath string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_progress WHERE file_path = ?`, filePath)
	return err
}

// IncompleteSessions lists file paths with a resumable mid-file session.
func (s *Store) IncompleteSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path FROM session_progress
		 WHERE cursor_position > 0 AND cursor_position < total_characters
		 ORDER BY last_updated DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// RecordHistory appends one finished-session row.
func (s *Store) RecordHistory(ctx context.Context, filePath, language string, sum model.Summary, completed bool, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_history (file_path, language, wpm, accuracy, total_keystrokes, correct_keystrokes, incorrect_keystrokes, duration, completed, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		filePath, language, sum.WPM, sum.Accuracy, sum.Total, sum.Correct,
		sum.Incorrect, sum.Seconds, completed, now.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FetchHistory returns history rows matching the filter, newest first.
func (s *Store) FetchHistory(ctx context.Context, filter model.HistoryFilter) ([]model.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Language != "" {
		clauses = append(clauses, "language = ?")
		args = append(args, filter.Language)
	}
	if filter.MinWPM != nil {
		clauses = append(clauses, "wpm >= ?")
		args = append(args, *filter.MinWPM)
	}
	if filter.MaxWPM != nil {
		clauses = append(clauses, "wpm <= ?")
		args = append(args, *filter.MaxWPM)
	}
	if filter.MinDuration != nil {
		clauses = append(clauses, "duration >= ?")
		args = append(args, *filter.MinDuration)
	}
	if filter.MaxDuration != nil {
		clauses = append(clauses, "duration <= ?")
		args = append(args, *filter.MaxDuration)
	}
	query := fmt.Sprintf(`SELECT id, file_path, language, wpm, accuracy, total_keystrokes, correct_keystrokes, incorrect_keystrokes, duration, completed, recorded_at
		FROM session_history
		WHERE %s
		ORDER BY recorded_at DESC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.FilePath, &e.Language, &e.WPM, &e.Accuracy,
			&e.Total, &e.Correct, &e.Incorrect, &e.Seconds, &e.Completed, &recordedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		e.RecordedAt = parsed
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteHistory removes history rows by id.
func (s *Store) DeleteHistory(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`DELETE FROM session_history WHERE id IN (%s)`,
		strings.Join(placeholders, ","))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// HistoryLanguages lists distinct languages present in the history.
func (s *Store) HistoryLanguages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT language FROM session_history
		 WHERE language != '' ORDER BY language`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var langs []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return langs, nil
}
