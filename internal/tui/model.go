package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/stores"
	"github.com/julianstephens/littlesteps/internal/tui/components/chorelist"
	"github.com/julianstephens/littlesteps/internal/tui/components/milestonelist"
	"github.com/julianstephens/littlesteps/internal/tui/components/profile"
)

type Tab int

const (
	TabChores Tab = iota
	TabMilestones
	TabBaby
	tabCount
)

var tabTitles = [tabCount]string{"Chores", "Up Next", "Baby"}

func (t Tab) String() string {
	return tabTitles[t]
}

type Model struct {
	app        *stores.App
	tab        Tab
	keys       KeyMap
	help       help.Model
	chores     chorelist.Model
	milestones milestonelist.Model
	profile    profile.Model
	status     string
	quitting   bool
	width      int
	height     int
}

// NewModel builds the dashboard over an already hydrated app.
func NewModel(app *stores.App) Model {
	m := Model{
		app:        app,
		tab:        TabChores,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		chores:     chorelist.New(nil, 0, 0),
		milestones: milestonelist.New(nil, 0, 0),
		profile:    profile.New(profile.Summary{}, 0, 0),
	}
	if !app.Auth.CanEdit() {
		m.status = "Read-only: run `littlesteps login` to make changes."
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Tab reports the active tab.
func (m Model) Tab() Tab {
	return m.tab
}

// Status is the last action result shown under the tabs.
func (m Model) Status() string {
	return m.status
}

// refresh copies the current store values into the components.
func (m *Model) refresh() {
	m.chores.SetChores(m.app.Chores.ChoresToday(m.app.Chores.Today()))

	summary := profile.Summary{
		Baby:       m.app.Milestones.Baby.Get(),
		SignedInAs: m.app.Auth.Current(),
	}
	all := m.app.Milestones.Milestones.Get()
	summary.Total = len(all)
	summary.Reached = len(m.app.Milestones.Archive())
	summary.Mastered = len(m.app.Milestones.Completed())

	upcoming, err := m.app.Milestones.Upcoming(constants.UpcomingLimit)
	if err != nil {
		m.status = "⚠ " + err.Error()
		upcoming = []models.MilestoneItem{}
	}
	m.milestones.SetMilestones(upcoming)

	if age, err := m.app.Milestones.AgeInMonths(); err == nil {
		summary.AgeMonths = age
	}
	if next, err := m.app.Milestones.NextBirthday(); err == nil {
		summary.NextBirthday = next
	}
	m.profile.SetSummary(summary)
}
