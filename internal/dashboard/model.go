// Package dashboard is the live terminal view of the trade statistics.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// Model is the Bubble Tea model of the statistics dashboard.
type Model struct {
	source   string
	currency string

	snapshot *types.MetricsSnapshot
	updates  int
	err      error

	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int
}

// NewModel creates a dashboard for the named source. An empty currency falls
// back to types.DefaultCurrency.
func NewModel(source, currency string) Model {
	if currency == "" {
		currency = types.DefaultCurrency
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		source:   source,
		currency: currency,
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Dismiss):
			m.err = nil
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		return m, nil

	case MetricsMsg:
		snapshot := msg.Snapshot
		m.snapshot = &snapshot
		m.updates++
		m.err = nil

		return m, nil

	case SourceErrorMsg:
		m.err = msg.Err

		return m, nil

	case spinner.TickMsg:
		// The spinner only runs until the first snapshot arrives
		if m.snapshot != nil {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Argo PnL - %s", m.source)))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if m.snapshot == nil {
		s.WriteString(m.spinner.View())
		s.WriteString(" Waiting for trades...\n")
	} else {
		s.WriteString(PanelStyle.Render(m.renderStats(m.snapshot.Display(m.currency))))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("Updated %s | %d updates | commission per trade %s %s",
			m.snapshot.ComputedAt.Format("2006-01-02 15:04:05"),
			m.updates,
			m.snapshot.CommissionPerTrade.StringFixed(2),
			m.currency,
		)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

// Snapshot returns the snapshot on screen.
func (m Model) Snapshot() (types.MetricsSnapshot, bool) {
	if m.snapshot == nil {
		return types.MetricsSnapshot{}, false
	}

	return *m.snapshot, true
}

// Err returns the source error on screen.
func (m Model) Err() error {
	return m.err
}

func (m Model) renderStats(d types.MetricsDisplay) string {
	rows := []string{
		row("Total Trades", fmt.Sprintf("%d", d.TotalTrades)),
		row("Winning Trades", d.Winning),
		row("Gross PnL", FormatFigure(d.GrossPnL)),
		row("Net PnL", FormatFigure(d.NetPnL)),
		row("Daily PnL", withSince(FormatFigure(d.DailyPnL), d.DayStart.Format("2006-01-02"))),
		row("Weekly PnL", withSince(FormatFigure(d.WeeklyPnL), d.WeekStart.Format("2006-01-02"))),
		row("Monthly PnL", withSince(FormatFigure(d.MonthlyPnL), d.MonthStart.Format("2006-01"))),
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}

func withSince(value, since string) string {
	return value + HelpStyle.Render("  since "+since)
}
