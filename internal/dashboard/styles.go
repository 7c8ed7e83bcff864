package dashboard

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/argo-pnl/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for source errors.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	LabelStyle = lipgloss.NewStyle().Width(18)

	PositiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	NegativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	NeutralStyle  = lipgloss.NewStyle()

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// SignStyle returns the style for an amount of the given sign.
func SignStyle(sign types.PnLSign) lipgloss.Style {
	switch sign {
	case types.PnLSignPositive:
		return PositiveStyle
	case types.PnLSignNegative:
		return NegativeStyle
	default:
		return NeutralStyle
	}
}

// FormatFigure renders an amount with its currency in its sign colour.
func FormatFigure(figure types.PnLFigure) string {
	return SignStyle(figure.Sign).Render(figure.Text)
}
