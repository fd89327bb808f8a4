// Package historyui provides the Bubble Tea session-history browser.
package historyui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codetype/internal/model"
	"github.com/verte-zerg/codetype/internal/stats"
	"github.com/verte-zerg/codetype/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sparkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// sparkWindow bounds the recent-WPM trend length.
const sparkWindow = 40

// Model implements the Bubble Tea history UI.
type Model struct {
	store  *store.Store
	filter model.HistoryFilter

	entries []model.HistoryEntry
	agg     stats.Aggregate
	table   table.Model
	errMsg  string

	width  int
	height int
}

// NewModel constructs a history UI model.
func NewModel(st *store.Store, filter model.HistoryFilter) *Model {
	m := &Model{
		store:  st,
		filter: filter,
	}
	m.initTable()
	m.refresh()
	return m
}

func (m *Model) initTable() {
	columns := []table.Column{
		{Title: "Date", Width: 16},
		{Title: "File", Width: 32},
		{Title: "Lang", Width: 10},
		{Title: "WPM", Width: 7},
		{Title: "Acc", Width: 7},
		{Title: "Time", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#4A4A4A"))
	t.SetStyles(styles)
	m.table = t
}

func (m *Model) refresh() {
	entries, err := m.store.FetchHistory(context.Background(), m.filter)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load history: %v", err)
		return
	}
	m.errMsg = ""
	m.entries = entries
	m.agg = stats.Summarize(entries)

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.RecordedAt.Format("2006-01-02 15:04"),
			shortenPath(e.FilePath, 32),
			e.Language,
			fmt.Sprintf("%.1f", e.WPM),
			fmt.Sprintf("%.1f%%", e.Accuracy*100),
			formatSeconds(e.Seconds),
		})
	}
	m.table.SetRows(rows)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()
		return m, nil
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC, msg.String() == "q":
			return m, tea.Quit
		case msg.String() == "d":
			m.deleteSelected()
			return m, nil
		case msg.String() == "r":
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) resizeTable() {
	if m.height == 0 {
		return
	}
	// Leave room for the summary card, sparkline, and footer.
	height := m.height - 9
	if height < 3 {
		height = 3
	}
	m.table.SetHeight(height)
}

func (m *Model) deleteSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return
	}
	id := m.entries[idx].ID
	if err := m.store.DeleteHistory(context.Background(), []int64{id}); err != nil {
		m.errMsg = fmt.Sprintf("failed to delete session: %v", err)
		return
	}
	m.refresh()
	if idx >= len(m.entries) && idx > 0 {
		m.table.SetCursor(idx - 1)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.renderSummary()}
	if spark := m.renderSparkline(); spark != "" {
		sections = append(sections, spark)
	}
	if m.errMsg != "" {
		sections = append(sections, errorStyle.Render(m.errMsg))
	}
	if len(m.entries) == 0 {
		sections = append(sections, headerStyle.Render("No sessions recorded yet."))
	} else {
		sections = append(sections, m.table.View())
	}
	sections = append(sections, headerStyle.Render("d delete · r refresh · q quit"))
	return strings.Join(sections, "\n")
}

func (m *Model) renderSummary() string {
	cards := []string{
		renderCard("Sessions", fmt.Sprintf("%d", m.agg.Sessions)),
		renderCard("Avg WPM", fmt.Sprintf("%.1f", m.agg.AvgWPM)),
		renderCard("Best WPM", fmt.Sprintf("%.1f", m.agg.BestWPM)),
		renderCard("Avg Acc", fmt.Sprintf("%.1f%%", m.agg.AvgAccuracy*100)),
		renderCard("Total", formatSeconds(m.agg.TotalTime)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderSparkline() string {
	if len(m.entries) < 2 {
		return ""
	}
	// Entries are newest-first; the trend reads oldest to newest.
	n := len(m.entries)
	if n > sparkWindow {
		n = sparkWindow
	}
	values := make([]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		values = append(values, m.entries[i].WPM)
	}
	return headerStyle.Render("WPM trend ") + sparkStyle.Render(stats.Sparkline(values))
}

func renderCard(title, value string) string {
	content := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(content)
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	base := filepath.Base(path)
	if len(base) >= maxLen {
		return base[:maxLen]
	}
	return "…" + path[len(path)-maxLen+1:]
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	mins := total / 60
	secs := total % 60
	if mins > 0 {
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
