package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aura-clinic/aura/internal/models"
)

// Theme is the palette of the terminal client, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Border     lipgloss.Color

	StatusScheduled lipgloss.Color
	StatusConfirmed lipgloss.Color
	StatusCompleted lipgloss.Color
	StatusCanceled  lipgloss.Color
}

// StatusColor returns FaintText for statuses the backend may add later.
func (theme Theme) StatusColor(status models.AppointmentStatus) lipgloss.Color {
	if !status.Known() {
		return theme.FaintText
	}
	switch status {
	case models.StatusScheduled:
		return theme.StatusScheduled
	case models.StatusConfirmed:
		return theme.StatusConfirmed
	case models.StatusCompleted:
		return theme.StatusCompleted
	case models.StatusCanceled:
		return theme.StatusCanceled
	}
	return theme.NormalText
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Accent:     lipgloss.Color("99"), // indigo
	Error:      lipgloss.Color("204"),
	Success:    lipgloss.Color("78"),
	Warning:    lipgloss.Color("214"),
	Border:     lipgloss.Color("238"),

	StatusScheduled: lipgloss.Color("75"),
	StatusConfirmed: lipgloss.Color("141"),
	StatusCompleted: lipgloss.Color("78"),
	StatusCanceled:  lipgloss.Color("240"),
}

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	label    lipgloss.Style
	faint    lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	badge    lipgloss.Style
	card     lipgloss.Style
	accent   lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		subtitle: lipgloss.NewStyle().Foreground(theme.FaintText),
		label:    lipgloss.NewStyle().Bold(true).Foreground(theme.NormalText),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		err:      lipgloss.NewStyle().Foreground(theme.Error),
		success:  lipgloss.NewStyle().Foreground(theme.Success),
		warning:  lipgloss.NewStyle().Foreground(theme.Warning),
		badge: lipgloss.NewStyle().Bold(true).Foreground(theme.Error).
			Border(lipgloss.NormalBorder()).BorderForeground(theme.Error).Padding(0, 1),
		card: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).Padding(0, 2),
		accent: lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		help:   lipgloss.NewStyle().Foreground(theme.FaintText).MarginTop(1),
	}
}
