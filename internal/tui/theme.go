package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/baiirun/mspdesk/internal/model"
)

// Theme holds every colour the console draws with.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	HeaderText lipgloss.Color
	HelpText   lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	ErrorText   lipgloss.Color
	SuccessText lipgloss.Color

	ModalBackground lipgloss.Color

	// StatusColors covers the ticket, milestone, invoice and campaign
	// vocabularies. Shared words ("pending") get one colour everywhere.
	StatusColors map[string]lipgloss.Color

	PriorityColors map[model.Priority]lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	HeaderText: lipgloss.Color("255"),
	HelpText:   lipgloss.Color("241"),
	Border:     lipgloss.Color("240"),
	Accent:     lipgloss.Color("205"),

	SelectedBackground: lipgloss.Color("57"),
	SelectedForeground: lipgloss.Color("229"),

	ErrorText:   lipgloss.Color("196"),
	SuccessText: lipgloss.Color("42"),

	ModalBackground: lipgloss.Color("236"),

	StatusColors: map[string]lipgloss.Color{
		// tickets
		"new":      lipgloss.Color("45"),
		"open":     lipgloss.Color("75"),
		"pending":  lipgloss.Color("220"),
		"qa":       lipgloss.Color("141"),
		"resolved": lipgloss.Color("42"),
		// milestones
		"active":    lipgloss.Color("75"),
		"completed": lipgloss.Color("42"),
		// invoices
		"draft": lipgloss.Color("245"),
		"sent":  lipgloss.Color("75"),
		"paid":  lipgloss.Color("42"),
		"void":  lipgloss.Color("196"),
		// campaigns
		"scheduled": lipgloss.Color("220"),
		"sending":   lipgloss.Color("75"),
	},

	PriorityColors: map[model.Priority]lipgloss.Color{
		model.PriorityLow:      lipgloss.Color("245"),
		model.PriorityNormal:   lipgloss.Color("252"),
		model.PriorityHigh:     lipgloss.Color("208"),
		model.PriorityCritical: lipgloss.Color("196"),
	},
}

// StatusColor returns the colour for any status word, falling back to
// FaintText for statuses the theme does not know.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	if c, ok := theme.StatusColors[strings.ToLower(status)]; ok {
		return c
	}
	return theme.FaintText
}

// StatusBadge renders a status as a coloured label.
func (theme Theme) StatusBadge(status string) string {
	label := strings.ToUpper(strings.ReplaceAll(status, "_", " "))
	if label == "" {
		label = "UNKNOWN"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.StatusColor(status)).
		Render("● " + label)
}

func (theme Theme) PriorityColor(p model.Priority) lipgloss.Color {
	if c, ok := theme.PriorityColors[p]; ok {
		return c
	}
	return theme.NormalText
}

func (theme Theme) faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.FaintText)
}

func (theme Theme) help() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.HelpText)
}

func (theme Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderText)
}

func (theme Theme) label() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
}

func (theme Theme) selected() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground)
}

func (theme Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.ErrorText)
}

func (theme Theme) success() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.SuccessText)
}
