package chorelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/littlesteps/internal/models"
)

// ToggleMsg asks for the chore to be marked done or undone for today.
type ToggleMsg struct {
	ID string
}

type Item struct {
	Chore models.ChoreStatus
}

func (i Item) Title() string {
	if i.Chore.Done {
		return "✓ " + i.Chore.ChoreItem.Title
	}
	return "○ " + i.Chore.ChoreItem.Title
}

func (i Item) Description() string {
	desc := string(i.Chore.Category)
	if i.Chore.EstimatedMinutes != nil {
		desc += fmt.Sprintf(" | %g min", *i.Chore.EstimatedMinutes)
	}
	if i.Chore.CaptainUsername != "" {
		desc += " | captain " + i.Chore.CaptainUsername
	}
	if i.Chore.Done && i.Chore.LastCompletedBy != "" {
		desc += " | done by " + i.Chore.LastCompletedBy
	}
	return desc
}

func (i Item) FilterValue() string { return i.Chore.ChoreItem.Title }

type KeyMap struct {
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x", " "),
			key.WithHelp("enter/x", "toggle done"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []models.ChoreStatus, width, height int) Model {
	l := list.New(toItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "Chores"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle}
	}

	return Model{list: l, keys: keys}
}

func toItems(chores []models.ChoreStatus) []list.Item {
	items := make([]list.Item, len(chores))
	for i, c := range chores {
		items[i] = Item{Chore: c}
	}
	return items
}

// SetChores replaces the items and keeps the cursor where it was.
func (m *Model) SetChores(chores []models.ChoreStatus) {
	m.list.SetItems(toItems(chores))
}

// Selected returns the chore under the cursor.
func (m Model) Selected() (models.ChoreStatus, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Chore, ok
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
		if key.Matches(msg, m.keys.Toggle) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleMsg{ID: i.Chore.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No chores yet.\n  Add one with `littlesteps chore add`."
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
