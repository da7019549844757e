package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(16)
)

// Summary is everything the profile tab shows.
type Summary struct {
	Baby         models.BabyProfile
	AgeMonths    int
	NextBirthday time.Time
	Reached      int
	Mastered     int
	Total        int
	SignedInAs   string
}

type Model struct {
	viewport viewport.Model
	summary  Summary
}

func New(summary Summary, width, height int) Model {
	vp := viewport.New(width, height)
	m := Model{viewport: vp, summary: summary}
	m.viewport.SetContent(m.render())
	return m
}

func (m *Model) SetSummary(summary Summary) {
	m.summary = summary
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	s := m.summary
	var b strings.Builder

	b.WriteString(nameStyle.Render(s.Baby.Name))
	b.WriteString("\n\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Born", strings.Replace(s.Baby.BirthDateIso, "T", " ", 1))
	row("Age", fmt.Sprintf("%d months", s.AgeMonths))
	if s.Baby.WeightLbs != nil {
		row("Weight", fmt.Sprintf("%.1f lbs", *s.Baby.WeightLbs))
	}
	if !s.NextBirthday.IsZero() {
		row("Next birthday", s.NextBirthday.Format(constants.DateFormat))
	}
	b.WriteString("\n")
	row("Milestones", fmt.Sprintf("%d reached, %d mastered of %d", s.Reached, s.Mastered, s.Total))
	if s.SignedInAs != "" {
		row("Signed in as", s.SignedInAs)
	} else {
		row("Signed in as", "nobody (read-only)")
	}
	return b.String()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}
