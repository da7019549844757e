package milestonelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/littlesteps/internal/models"
)

// AdvanceMsg asks for the milestone to move to its next level.
type AdvanceMsg struct {
	ID string
}

// UndoMsg asks for the milestone's last level change to be dropped.
type UndoMsg struct {
	ID string
}

type Item struct {
	Milestone models.MilestoneItem
}

func (i Item) Title() string {
	return fmt.Sprintf("[%s] %s", i.Milestone.Level, i.Milestone.Title)
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %d-%d months", i.Milestone.Category, i.Milestone.AgeStartMonths, i.Milestone.AgeEndMonths)
}

func (i Item) FilterValue() string { return i.Milestone.Title }

type KeyMap struct {
	Advance key.Binding
	Undo    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Advance: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter/a", "advance level"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo level"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []models.MilestoneItem, width, height int) Model {
	l := list.New(toItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Up next"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Advance, keys.Undo}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Advance, keys.Undo}
	}

	return Model{list: l, keys: keys}
}

func toItems(milestones []models.MilestoneItem) []list.Item {
	items := make([]list.Item, len(milestones))
	for i, m := range milestones {
		items[i] = Item{Milestone: m}
	}
	return items
}

func (m *Model) SetMilestones(milestones []models.MilestoneItem) {
	m.list.SetItems(toItems(milestones))
}

func (m Model) Selected() (models.MilestoneItem, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Milestone, ok
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		i, ok := m.list.SelectedItem().(Item)
		switch {
		case key.Matches(msg, m.keys.Advance):
			if ok {
				return m, func() tea.Msg { return AdvanceMsg{ID: i.Milestone.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Undo):
			if ok {
				return m, func() tea.Msg { return UndoMsg{ID: i.Milestone.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Every milestone is mastered."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
