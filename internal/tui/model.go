package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetype/internal/engine"
	"github.com/verte-zerg/codetype/internal/ghost"
	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/store"
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle      = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	filePath string
	language string

	eng    *engine.Engine
	store  *store.Store
	ghosts *ghost.Manager
	rec    *ghost.Recorder

	marks map[int]markKind

	width  int
	height int

	done    bool
	summary model.Summary
	newBest bool
}

// NewModel constructs a typing TUI model. The engine may already carry
// loaded progress; positions behind the cursor are shown as typed.
func NewModel(filePath, language string, eng *engine.Engine, st *store.Store, ghosts *ghost.Manager) *Model {
	m := &Model{
		filePath: filePath,
		language: language,
		eng:      eng,
		store:    st,
		ghosts:   ghosts,
		rec:      ghost.NewRecorder(),
		marks:    map[int]markKind{},
	}
	for i := 0; i < eng.State().Cursor(); i++ {
		m.marks[i] = markCorrect
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.done {
			m.eng.CheckAutoPause()
		}
		return m, tickCmd()
	case tea.KeyMsg:
		if m.done {
			return m.updateSummary(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlC:
			m.saveProgress()
			return m, tea.Quit
		case tea.KeyEsc:
			m.eng.Pause()
			return m, nil
		case tea.KeyBackspace, tea.KeyDelete:
			if msg.Alt {
				m.wordBackspace()
			} else {
				m.backspace()
			}
			return m, nil
		case tea.KeyCtrlW:
			m.wordBackspace()
			return m, nil
		case tea.KeyEnter:
			m.keystroke('\n')
			return m, nil
		case tea.KeyTab:
			m.keystroke('\t')
			return m, nil
		case tea.KeySpace:
			m.keystroke(' ')
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.keystroke(r)
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyEnter, msg.String() == "q":
		return m, tea.Quit
	case msg.String() == "r":
		m.eng.Reset()
		m.rec.Reset()
		m.marks = map[int]markKind{}
		m.done = false
		m.newBest = false
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) keystroke(r rune) {
	s := m.eng.State()
	if s.IsFinished() {
		return
	}
	before := s.Cursor()
	res := m.eng.ProcessKeystroke(r)
	m.rec.RecordChar(r)

	after := s.Cursor()
	if after > before {
		kind := markCorrect
		if !res.Correct {
			kind = markIncorrect
		}
		m.marks[before] = kind
		for i := before + 1; i < after; i++ {
			if s.IsSkipped(i) {
				m.marks[i] = markSkipped
			}
		}
	} else if res.Expected != 0 && !res.Correct {
		// Strict-mode lock: flag the blocking position.
		m.marks[before] = markIncorrect
	}

	if s.IsFinished() {
		m.finishSession()
	}
}

func (m *Model) backspace() {
	s := m.eng.State()
	before := s.Cursor()
	m.eng.ProcessBackspace()
	m.rec.RecordBackspace()
	m.clearMarks(s.Cursor(), before)
}

func (m *Model) wordBackspace() {
	s := m.eng.State()
	before := s.Cursor()
	m.eng.ProcessCtrlBackspace()
	m.rec.RecordWordBackspace()
	m.clearMarks(s.Cursor(), before)
}

func (m *Model) clearMarks(from, to int) {
	for i := from; i <= to; i++ {
		delete(m.marks, i)
	}
}

func (m *Model) saveProgress() {
	if m.done || m.store == nil {
		return
	}
	s := m.eng.State()
	if s.Cursor() == 0 && s.TotalKeystrokes() == 0 {
		return
	}
	m.eng.Pause()
	ctx := context.Background()
	if err := m.store.SaveProgress(ctx, m.filePath, m.eng.Progress(), time.Now()); err != nil {
		logErrf("failed to save progress: %v\n", err)
	}
}

func (m *Model) finishSession() {
	m.summary = m.eng.FinalStats()
	m.done = true
	if m.store == nil {
		return
	}
	ctx := context.Background()
	now := time.Now()
	if _, err := m.store.RecordHistory(ctx, m.filePath, m.language, m.summary, true, now); err != nil {
		logErrf("failed to record history: %v\n", err)
	}
	if err := m.store.UpdateFileStats(ctx, m.filePath, m.summary.WPM, m.summary.Accuracy, true, now); err != nil {
		logErrf("failed to update file stats: %v\n", err)
	}
	if err := m.store.ClearProgress(ctx, m.filePath); err != nil {
		logErrf("failed to clear progress: %v\n", err)
	}
	if m.ghosts != nil && m.ghosts.ShouldSave(m.filePath, m.summary.WPM) {
		m.newBest = true
		g := ghost.Ghost{
			Date:     now,
			WPM:      m.summary.WPM,
			Accuracy: m.summary.Accuracy,
			Events:   ghost.EncodeEvents(m.rec.Events()),
		}
		if err := m.ghosts.Save(m.filePath, g); err != nil {
			logErrf("failed to save ghost: %v\n", err)
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return m.viewSummary()
	}
	s := m.eng.State()
	cells := buildCells(s.Content(), m.marks, s.Cursor())

	contentWidth := 0
	if m.width > 0 {
		contentWidth = int(float64(m.width) * 0.85)
		if contentWidth < 1 {
			contentWidth = 1
		}
	}
	wrapped, origin := wrapCells(cells, contentWidth)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join(wrapped, "\n") + "\n" + footer
	}

	bodyHeight := m.height - 1
	cursorLine := displayLineFor(origin, lineForPosition(s.Content(), s.Cursor()))
	window := visibleWindow(wrapped, cursorLine, bodyHeight)
	content := strings.Join(window, "\n")

	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	s := m.eng.State()
	progress := 0
	if s.Len() > 0 {
		progress = s.Cursor() * 100 / s.Len()
	}
	segments := []string{
		fmt.Sprintf("%.1f WPM", s.WPM()),
		fmt.Sprintf("%.1f%%", s.Accuracy()*100),
		fmt.Sprintf("%d%%", progress),
	}
	if s.IsPaused() {
		segments = append(segments, "paused")
	}
	segments = append(segments, "esc pause · ctrl+c quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) viewSummary() string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.summary.StatusColor)).Bold(true)
	lines := []string{
		titleStyle.Render(m.filePath),
		"",
		fmt.Sprintf("%.1f WPM   %.1f%% accuracy", m.summary.WPM, m.summary.Accuracy*100),
		fmt.Sprintf("%s in %s", formatKeystrokes(m.summary), formatDuration(m.summary.Seconds)),
		"",
		statusStyle.Render(m.summary.StatusText),
	}
	if m.newBest {
		lines = append(lines, cursorStyle.Render("New best!"))
	}
	lines = append(lines, "", footerStyle.Render("r restart · q quit"))
	card := cardStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return card
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func formatKeystrokes(sum model.Summary) string {
	return fmt.Sprintf("%d keystrokes (%d correct, %d incorrect)",
		sum.Total, sum.Correct, sum.Incorrect)
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins > 0 {
		return fmt.Sprintf("%dm %02ds", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
