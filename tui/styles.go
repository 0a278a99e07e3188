package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

var (
	ColorHeader = lipgloss.Color("39")
	ColorActive = lipgloss.Color("229")
	ColorMuted  = lipgloss.Color("241")
	ColorError  = lipgloss.Color("196")
	ColorNotice = lipgloss.Color("214")

	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	TabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorMuted)
	ActiveTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(ColorActive).Background(lipgloss.Color("57"))
	StatusStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	NoticeStyle = lipgloss.NewStyle().Foreground(ColorNotice).Italic(true)
	HelpStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader).
				BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	TableSelectedStyle = lipgloss.NewStyle().Foreground(ColorActive).Background(lipgloss.Color("57"))

	pageStyle       = lipgloss.NewStyle().Padding(0, 1)
	activePageStyle = pageStyle.Bold(true).Foreground(ColorActive).Background(lipgloss.Color("57"))
	disabledStyle   = pageStyle.Foreground(ColorMuted)
)

// renderButtons draws the pagination control.
func renderButtons(buttons []pager.Button) string {
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		var label string
		switch b.Kind {
		case pager.ButtonPrev:
			label = "‹"
		case pager.ButtonNext:
			label = "›"
		case pager.ButtonEllipsis:
			label = "…"
		default:
			label = strconv.Itoa(b.Page)
		}

		switch {
		case b.Active:
			parts = append(parts, activePageStyle.Render(label))
		case b.Disabled || b.Kind == pager.ButtonEllipsis:
			parts = append(parts, disabledStyle.Render(label))
		default:
			parts = append(parts, pageStyle.Render(label))
		}
	}

	return strings.Join(parts, "")
}
