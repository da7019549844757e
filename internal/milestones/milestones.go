package milestones

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/utils"
)

// ErrNotCustom is returned when deleting a catalogue milestone.
var ErrNotCustom = errors.New("only custom milestones can be deleted")

// Draft holds the editable fields of a milestone.
type Draft struct {
	// ID selects the milestone to edit; empty creates a custom milestone.
	ID             string
	Title          string
	Description    string
	AgeStartMonths int
	AgeEndMonths   int
	Category       models.MilestoneCategory
}

// NewID returns a fresh custom milestone id.
func NewID() string {
	return constants.CustomMilestonePrefix + uuid.New().String()
}

// Advance returns the level reached by one step of the default progression.
func Advance(level models.MilestoneLevel) models.MilestoneLevel {
	return level.Next()
}

func index(items []models.MilestoneItem, id string) int {
	for i, m := range items {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func clone(items []models.MilestoneItem) []models.MilestoneItem {
	out := make([]models.MilestoneItem, len(items))
	for i, m := range items {
		m.LevelHistory = append(make([]models.LevelLogEntry, 0, len(m.LevelHistory)), m.LevelHistory...)
		out[i] = m
	}
	return out
}

// lookup copies items and returns the position of id in the copy.
func lookup(items []models.MilestoneItem, id string) ([]models.MilestoneItem, int, error) {
	i := index(items, id)
	if i < 0 {
		return nil, -1, fmt.Errorf("milestone %q: %w", id, errors.ErrNotFound)
	}
	return clone(items), i, nil
}

// Find returns the milestone with the given id.
func Find(items []models.MilestoneItem, id string) (models.MilestoneItem, error) {
	i := index(items, id)
	if i < 0 {
		return models.MilestoneItem{}, fmt.Errorf("milestone %q: %w", id, errors.ErrNotFound)
	}
	return clone(items[i : i+1])[0], nil
}

// Upsert creates a custom milestone or edits an existing one. Level, history
// and creation time of an existing milestone are kept.
func Upsert(items []models.MilestoneItem, d Draft, actor string, now time.Time) ([]models.MilestoneItem, models.MilestoneItem, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, models.MilestoneItem{}, fmt.Errorf("milestone title cannot be empty")
	}
	if actor == "" {
		actor = constants.DefaultAdminUsername
	}
	category := d.Category
	if category == "" {
		category = models.CategoryCustom
	}

	item := models.MilestoneItem{
		ID:             d.ID,
		Title:          title,
		Description:    strings.TrimSpace(d.Description),
		AgeStartMonths: d.AgeStartMonths,
		AgeEndMonths:   d.AgeEndMonths,
		Category:       category,
		Level:          models.LevelNone,
		LevelHistory:   []models.LevelLogEntry{},
		CreatedAtIso:   utils.FormatISO(now),
		IsCustom:       true,
		CreatedBy:      actor,
	}
	if item.ID == "" {
		item.ID = NewID()
	}

	next := clone(items)
	if i := index(next, item.ID); i >= 0 {
		existing := next[i]
		item.Level = existing.Level
		item.LevelHistory = existing.LevelHistory
		item.CreatedAtIso = existing.CreatedAtIso
		// Catalogue entries stay protected from deletion after an edit
		item.IsCustom = existing.IsCustom
		item.CreatedBy = existing.CreatedBy
		next[i] = item
		return next, item, nil
	}
	return append(next, item), item, nil
}

// SetLevel moves a milestone to level, logging the transition unless it is
// already there.
func SetLevel(items []models.MilestoneItem, id string, level models.MilestoneLevel, now time.Time) ([]models.MilestoneItem, error) {
	if level == models.LevelNone || level.Rank() < 0 {
		return nil, fmt.Errorf("cannot set level %q, use undo to step back", level)
	}
	next, i, err := lookup(items, id)
	if err != nil {
		return nil, err
	}
	if next[i].Level != level {
		next[i].LevelHistory = append(next[i].LevelHistory, models.LevelLogEntry{
			Level:        level,
			TimestampIso: utils.FormatISO(now),
		})
	}
	next[i].Level = level
	return next, nil
}

// AdvanceItem applies one step of the default progression to a milestone.
func AdvanceItem(items []models.MilestoneItem, id string, now time.Time) ([]models.MilestoneItem, error) {
	i := index(items, id)
	if i < 0 {
		return nil, fmt.Errorf("milestone %q: %w", id, errors.ErrNotFound)
	}
	return SetLevel(items, id, Advance(items[i].Level), now)
}

// UndoLevel drops the last logged transition. An empty history is left alone.
func UndoLevel(items []models.MilestoneItem, id string) ([]models.MilestoneItem, error) {
	next, i, err := lookup(items, id)
	if err != nil {
		return nil, err
	}
	m := &next[i]
	if len(m.LevelHistory) == 0 {
		return next, nil
	}
	m.LevelHistory = m.LevelHistory[:len(m.LevelHistory)-1]
	m.Level = m.CurrentLevelFromHistory()
	return next, nil
}

// SetLevelHistory replaces a milestone's log. Entries are sorted by time
// (stable for equal instants) and the level becomes the latest entry's level.
func SetLevelHistory(items []models.MilestoneItem, id string, history []models.LevelLogEntry) ([]models.MilestoneItem, error) {
	type stamped struct {
		entry models.LevelLogEntry
		at    time.Time
	}
	entries := make([]stamped, len(history))
	for i, e := range history {
		if e.Level == models.LevelNone || e.Level.Rank() < 0 {
			return nil, fmt.Errorf("invalid history level %q", e.Level)
		}
		at, err := utils.ParseLocalISO(e.TimestampIso, time.Local)
		if err != nil {
			return nil, err
		}
		entries[i] = stamped{entry: e, at: at}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].at.Before(entries[b].at)
	})

	next, i, err := lookup(items, id)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.LevelLogEntry, len(entries))
	for j, e := range entries {
		sorted[j] = e.entry
	}
	next[i].LevelHistory = sorted
	next[i].Level = next[i].CurrentLevelFromHistory()
	return next, nil
}

// Delete removes a custom milestone.
func Delete(items []models.MilestoneItem, id string) ([]models.MilestoneItem, error) {
	i := index(items, id)
	if i < 0 {
		return nil, fmt.Errorf("milestone %q: %w", id, errors.ErrNotFound)
	}
	if !items[i].IsCustom {
		return nil, fmt.Errorf("milestone %q: %w", id, ErrNotCustom)
	}
	next := clone(items[:i])
	return append(next, clone(items[i+1:])...), nil
}

// Archive lists every milestone that has been reached at any level.
func Archive(items []models.MilestoneItem) []models.MilestoneItem {
	return filter(items, func(m models.MilestoneItem) bool { return m.Level != models.LevelNone })
}

// Completed lists mastered milestones.
func Completed(items []models.MilestoneItem) []models.MilestoneItem {
	return filter(items, func(m models.MilestoneItem) bool { return m.Level == models.LevelMastered })
}

func filter(items []models.MilestoneItem, keep func(models.MilestoneItem) bool) []models.MilestoneItem {
	out := []models.MilestoneItem{}
	for _, m := range clone(items) {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
