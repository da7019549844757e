package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/littlesteps/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Strikethrough(true)

	levelStyles = map[models.MilestoneLevel]lipgloss.Style{
		models.LevelNone:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		models.LevelDidIt:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.LevelLearning: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.LevelMastered: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
)

// LevelBadge renders a level as a fixed-width colored tag.
func LevelBadge(level models.MilestoneLevel) string {
	style, ok := levelStyles[level]
	if !ok {
		style = DimStyle
	}
	return style.Width(10).Render(string(level))
}
