package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/littlesteps/internal/chores"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/milestones"
	"github.com/julianstephens/littlesteps/internal/tui/components/chorelist"
	"github.com/julianstephens/littlesteps/internal/tui/components/milestonelist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		// tabs, status and help take four lines
		contentHeight := msg.Height - v - 4
		m.chores.SetSize(msg.Width-h, contentHeight)
		m.milestones.SetSize(msg.Width-h, contentHeight)
		m.profile.SetSize(msg.Width-h, contentHeight)
		m.help.Width = msg.Width - h
		return m, nil

	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case chorelist.ToggleMsg:
		err := m.app.Chores.Toggle(msg.ID)
		m.report(err, func() string {
			c, err := chores.Find(m.app.Chores.Chores.Get(), msg.ID)
			if err != nil {
				return ""
			}
			if chores.IsDoneToday(c, m.app.Chores.Today()) {
				return fmt.Sprintf("✓ %s done", c.Title)
			}
			return fmt.Sprintf("○ %s not done", c.Title)
		})
		return m, nil

	case milestonelist.AdvanceMsg:
		err := m.app.Milestones.Advance(msg.ID)
		m.report(err, func() string { return m.levelStatus(msg.ID) })
		return m, nil

	case milestonelist.UndoMsg:
		err := m.app.Milestones.UndoLevel(msg.ID)
		m.report(err, func() string { return m.levelStatus(msg.ID) })
		return m, nil
	}

	switch m.tab {
	case TabChores:
		m.chores, cmd = m.chores.Update(msg)
	case TabMilestones:
		m.milestones, cmd = m.milestones.Update(msg)
	case TabBaby:
		m.profile, cmd = m.profile.Update(msg)
	}

	return m, cmd
}

func (m Model) filtering() bool {
	switch m.tab {
	case TabChores:
		return m.chores.Filtering()
	case TabMilestones:
		return m.milestones.Filtering()
	}
	return false
}

// report sets the status line from a mutation result and refreshes the views.
func (m *Model) report(err error, success func() string) {
	switch {
	case errors.Is(err, errors.ErrReadOnly):
		m.status = "⚠ Read-only: run `littlesteps login` to make changes."
		return
	case err != nil:
		m.status = "⚠ " + err.Error()
		return
	}
	m.status = success()
	m.refresh()
}

func (m Model) levelStatus(id string) string {
	item, err := milestones.Find(m.app.Milestones.Milestones.Get(), id)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("✓ %s is now %s", item.Title, item.Level)
}
