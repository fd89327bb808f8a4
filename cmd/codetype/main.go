// Package main provides the CLI entrypoint for codetype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/codetype/internal/config"
	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/ghost"
	"github.com/verte-zerg/codetype/internal/historyui"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/scanner"
	"github.com/verte-zerg/codetype/internal/stats"
	"github.com/verte-zerg/codetype/internal/store"
	"github.com/verte-zerg/codetype/internal/tui"
)

const (
	defaultPauseDelay  = 7.0
	defaultPlainWidth  = 80
	historySparkWindow = 30
	historyTrendSmooth = 5
)

var (
	practicePauseDelay    float64
	practiceAllowMistakes bool
	practiceNoAutoIndent  bool
	practiceRestart       bool

	historyLang        string
	historyMinWPM      float64
	historyMaxWPM      float64
	historyMinDuration float64
	historyMaxDuration float64
	historyPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "codetype <file>",
		Short:         "Typing practice on real source files",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().Float64Var(&practicePauseDelay, "pause-delay", defaultPauseDelay, "seconds of inactivity before auto-pause")
	rootCmd.Flags().BoolVar(&practiceAllowMistakes, "allow-mistakes", false, "keep advancing past mistakes instead of locking the cursor")
	rootCmd.Flags().BoolVar(&practiceNoAutoIndent, "no-auto-indent", false, "disable skipping leading indentation after newlines")
	rootCmd.Flags().BoolVar(&practiceRestart, "restart", false, "discard saved progress and start from the beginning")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "pause-delay", &practicePauseDelay, fileCfg.Practice.PauseDelay)
	applyBoolConfig(cmd, "allow-mistakes", &practiceAllowMistakes, fileCfg.Practice.AllowMistakes)
	if fileCfg.Practice.AutoIndent != nil && !cmd.Flags().Changed("no-auto-indent") {
		practiceNoAutoIndent = !*fileCfg.Practice.AutoIndent
	}
	if practicePauseDelay <= 0 {
		return fmt.Errorf("--pause-delay must be > 0")
	}

	filePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	content := normalizeContent(string(data))

	opts := model.Options{
		PauseDelay:            time.Duration(practicePauseDelay * float64(time.Second)),
		AllowContinueMistakes: practiceAllowMistakes,
		AutoIndent:            !practiceNoAutoIndent,
	}
	eng, err := engine.New(content, opts)
	if err != nil {
		return fmt.Errorf("failed to prepare session: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if practiceRestart {
		if err := st.ClearProgress(context.Background(), filePath); err != nil {
			logErrf("failed to clear progress: %v\n", err)
		}
	} else {
		prog, err := st.GetProgress(context.Background(), filePath)
		if err != nil {
			logErrf("failed to load progress: %v\n", err)
		} else if prog != nil && prog.TotalCharacters == eng.Len() {
			eng.LoadProgress(
				prog.CursorPosition,
				prog.CorrectKeystrokes,
				prog.IncorrectKeystrokes,
				time.Duration(prog.Seconds*float64(time.Second)),
			)
		}
	}

	ghosts, err := ghost.NewManager(config.DefaultGhostDir())
	if err != nil {
		return fmt.Errorf("failed to prepare ghost directory: %w", err)
	}

	m := tui.NewModel(filePath, scanner.Language(filePath), eng, st, ghosts)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// normalizeContent strips carriage returns and trailing blank lines so
// the session ends at the last typable character.
func normalizeContent(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")
	if s != "" {
		s += "\n"
	}
	return s
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [folder ...]",
		Short: "List practicable files grouped by language",
		RunE:  runScanCmd,
	}
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	folders := args
	if len(folders) == 0 {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		folders = fileCfg.Scan.Folders
	}
	if len(folders) == 0 {
		return fmt.Errorf("no folders to scan; pass folders as arguments or set scan.folders in the config")
	}

	byLang := scanner.Scan(folders)
	if len(byLang) == 0 {
		logErrln("no supported source files found")
		return nil
	}

	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	out := cmd.OutOrStdout()
	for _, lang := range langs {
		files := byLang[lang]
		sort.Strings(files)
		if _, err := fmt.Fprintf(out, "%s (%d)\n", lang, len(files)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, file := range files {
			if _, err := fmt.Fprintf(out, "  %s\n", file); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyLang, "lang", "", "language filter")
	cmd.Flags().Float64Var(&historyMinWPM, "min-wpm", 0, "minimum WPM")
	cmd.Flags().Float64Var(&historyMaxWPM, "max-wpm", 0, "maximum WPM")
	cmd.Flags().Float64Var(&historyMinDuration, "min-duration", 0, "minimum session length in seconds")
	cmd.Flags().Float64Var(&historyMaxDuration, "max-duration", 0, "maximum session length in seconds")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a plain-text report instead of the TUI")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter := model.HistoryFilter{Language: historyLang}
	if cmd.Flags().Changed("min-wpm") {
		filter.MinWPM = &historyMinWPM
	}
	if cmd.Flags().Changed("max-wpm") {
		filter.MaxWPM = &historyMaxWPM
	}
	if cmd.Flags().Changed("min-duration") {
		filter.MinDuration = &historyMinDuration
	}
	if cmd.Flags().Changed("max-duration") {
		filter.MaxDuration = &historyMaxDuration
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyLang != "" {
		if err := validateHistoryLang(context.Background(), st, historyLang); err != nil {
			return err
		}
	}

	if historyPlain {
		return printPlainHistory(cmd, st, filter)
	}

	m := historyui.NewModel(st, filter)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func validateHistoryLang(ctx context.Context, st *store.Store, lang string) error {
	langs, err := st.HistoryLanguages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	for _, l := range langs {
		if l == lang {
			return nil
		}
	}
	if len(langs) == 0 {
		return fmt.Errorf("no sessions recorded for language %q", lang)
	}
	return fmt.Errorf("no sessions recorded for language %q (recorded: %s)", lang, strings.Join(langs, ", "))
}

func printPlainHistory(cmd *cobra.Command, st *store.Store, filter model.HistoryFilter) error {
	entries, err := st.FetchHistory(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		if _, err := fmt.Fprintln(out, "No sessions recorded yet."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	width := defaultPlainWidth
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}
	pathWidth := width - 56
	if pathWidth < 16 {
		pathWidth = 16
	}

	agg := stats.Summarize(entries)
	if _, err := fmt.Fprintf(out, "%d sessions · avg %.1f WPM · best %.1f WPM · avg %.1f%% accuracy\n",
		agg.Sessions, agg.AvgWPM, agg.BestWPM, agg.AvgAccuracy*100); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if len(entries) >= 2 {
		n := len(entries)
		if n > historySparkWindow {
			n = historySparkWindow
		}
		values := make([]float64, 0, n)
		for i := n - 1; i >= 0; i-- {
			values = append(values, entries[i].WPM)
		}
		trend := stats.MovingAverage(values, historyTrendSmooth)
		if _, err := fmt.Fprintf(out, "WPM trend %s\n", stats.Sparkline(trend)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if _, err := fmt.Fprintf(out, "\n%-16s  %-*s  %-10s  %6s  %6s  %6s\n", "Date", pathWidth, "File", "Lang", "WPM", "CPM", "Acc"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, e := range entries {
		path := e.FilePath
		if len(path) > pathWidth {
			path = "…" + path[len(path)-pathWidth+1:]
		}
		_, cpm, _ := stats.SessionMetrics(e.Correct, e.Incorrect, e.Seconds)
		if _, err := fmt.Fprintf(out, "%-16s  %-*s  %-10s  %6.1f  %6.0f  %5.1f%%\n",
			e.RecordedAt.Format("2006-01-02 15:04"), pathWidth, path, e.Language, e.WPM, cpm, e.Accuracy*100); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	inProgress, err := st.IncompleteSessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list in-progress sessions: %w", err)
	}
	if len(inProgress) > 0 {
		if _, err := fmt.Fprintf(out, "\nIn progress (%d):\n", len(inProgress)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, p := range inProgress {
			if _, err := fmt.Fprintf(out, "  %s\n", p); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# codetype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# pause-delay = %.1f       # Seconds of inactivity before auto-pause
# allow-mistakes = false   # Keep advancing past mistakes
# auto-indent = true       # Skip leading indentation after newlines

[scan]
# folders = ["~/projects"] # Folders scanned by 'codetype scan'
`, defaultPauseDelay)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
