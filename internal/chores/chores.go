package chores

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

// Draft holds the editable fields of a chore.
type Draft struct {
	Title            string
	Description      string
	Category         models.ChoreCategory
	EstimatedMinutes *float64
	CaptainUsername  string
}

// Defaults returns the chores a household starts with.
func Defaults() []models.ChoreItem {
	return []models.ChoreItem{
		{ID: "wake-baby", Title: "Wake up baby", Category: models.ChoreBio, SortOrder: 1},
		{ID: "feed-baby", Title: "Feed baby", Category: models.ChoreFood, SortOrder: 2},
		{ID: "sleep-baby", Title: "Put baby to sleep", Category: models.ChoreSleep, SortOrder: 3},
	}
}

// NewID returns a fresh chore id.
func NewID() string {
	return constants.ChorePrefix + uuid.New().String()
}

// IsDoneToday reports whether the chore was completed on the local date today.
func IsDoneToday(c models.ChoreItem, today string) bool {
	return c.LastCompletedDate != "" && c.LastCompletedDate == today
}

// Today lists the chores in sortOrder with their completion state for today.
// Crossing midnight makes every chore pending again without any write.
func Today(items []models.ChoreItem, today string) []models.ChoreStatus {
	out := make([]models.ChoreStatus, len(items))
	for i, c := range items {
		out[i] = models.ChoreStatus{ChoreItem: c, Done: IsDoneToday(c, today)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

func index(items []models.ChoreItem, id string) int {
	for i, c := range items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func lookup(items []models.ChoreItem, id string) ([]models.ChoreItem, int, error) {
	i := index(items, id)
	if i < 0 {
		return nil, -1, fmt.Errorf("chore %q: %w", id, errors.ErrNotFound)
	}
	return append([]models.ChoreItem(nil), items...), i, nil
}

// Find returns the chore with id.
func Find(items []models.ChoreItem, id string) (models.ChoreItem, error) {
	i := index(items, id)
	if i < 0 {
		return models.ChoreItem{}, fmt.Errorf("chore %q: %w", id, errors.ErrNotFound)
	}
	return items[i], nil
}

// Toggle marks a chore done for today, or clears the completion when it is
// already done today.
func Toggle(items []models.ChoreItem, id, today string, now time.Time, actor string) ([]models.ChoreItem, error) {
	next, i, err := lookup(items, id)
	if err != nil {
		return nil, err
	}
	c := &next[i]
	if IsDoneToday(*c, today) {
		c.LastCompletedDate = ""
		c.LastCompletedBy = ""
		c.LastCompletedAtIso = ""
	} else {
		c.LastCompletedDate = today
		c.LastCompletedBy = actor
		c.LastCompletedAtIso = utils.FormatISO(now)
	}
	return next, nil
}

// Add appends a new chore after the current last one.
func Add(items []models.ChoreItem, d Draft, id string) ([]models.ChoreItem, models.ChoreItem, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, models.ChoreItem{}, fmt.Errorf("chore title cannot be empty")
	}
	if id == "" {
		id = NewID()
	}
	sortOrder := 1
	for i, c := range items {
		if i == 0 || c.SortOrder+1 > sortOrder {
			sortOrder = c.SortOrder + 1
		}
	}

	item := applyDraft(models.ChoreItem{ID: id, SortOrder: sortOrder}, d)
	item.Title = title
	next := append(append([]models.ChoreItem(nil), items...), item)
	return next, item, nil
}

// Update replaces the editable fields of a chore. Completion and order are kept.
func Update(items []models.ChoreItem, id string, d Draft) ([]models.ChoreItem, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, fmt.Errorf("chore title cannot be empty")
	}
	next, i, err := lookup(items, id)
	if err != nil {
		return nil, err
	}
	next[i] = applyDraft(next[i], d)
	next[i].Title = title
	return next, nil
}

// Delete removes a chore.
func Delete(items []models.ChoreItem, id string) ([]models.ChoreItem, error) {
	i := index(items, id)
	if i < 0 {
		return nil, fmt.Errorf("chore %q: %w", id, errors.ErrNotFound)
	}
	next := append([]models.ChoreItem(nil), items[:i]...)
	return append(next, items[i+1:]...), nil
}

func applyDraft(c models.ChoreItem, d Draft) models.ChoreItem {
	c.Description = strings.TrimSpace(d.Description)
	c.Category = d.Category
	if c.Category == "" {
		c.Category = models.DefaultChoreCategory
	}
	c.EstimatedMinutes = nil
	if d.EstimatedMinutes != nil {
		minutes := *d.EstimatedMinutes
		c.EstimatedMinutes = &minutes
	}
	c.CaptainUsername = strings.TrimSpace(d.CaptainUsername)
	return c
}
