package models

import "fmt"

type ChoreCategory string

const (
	ChoreFood          ChoreCategory = "food"
	ChoreSleep         ChoreCategory = "sleep"
	ChoreBio           ChoreCategory = "bio"
	ChoreEntertainment ChoreCategory = "entertainment"
	ChoreHealth        ChoreCategory = "health"

	DefaultChoreCategory = ChoreBio
)

func ParseChoreCategory(s string) (ChoreCategory, error) {
	switch c := ChoreCategory(s); c {
	case ChoreFood, ChoreSleep, ChoreBio, ChoreEntertainment, ChoreHealth:
		return c, nil
	}
	return "", fmt.Errorf("invalid chore category %q (expected food|sleep|bio|entertainment|health)", s)
}

type ChoreItem struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	Category           ChoreCategory `json:"category"`
	EstimatedMinutes   *float64      `json:"estimatedMinutes,omitempty"`
	CaptainUsername    string        `json:"captainUsername,omitempty"`
	LastCompletedDate  string        `json:"lastCompletedDate"` // YYYY-MM-DD, empty = not done
	LastCompletedBy    string        `json:"lastCompletedBy,omitempty"`
	LastCompletedAtIso string        `json:"lastCompletedAtIso,omitempty"`
	SortOrder          int           `json:"sortOrder"`
}

// ChoreStatus is a chore paired with its derived completion state for one day
type ChoreStatus struct {
	ChoreItem
	Done bool `json:"done"`
}
