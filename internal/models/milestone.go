package models

import "fmt"

type MilestoneLevel string

const (
	LevelNone     MilestoneLevel = "none"
	LevelDidIt    MilestoneLevel = "didIt"
	LevelLearning MilestoneLevel = "learning"
	LevelMastered MilestoneLevel = "mastered"
)

var levelOrder = []MilestoneLevel{LevelNone, LevelDidIt, LevelLearning, LevelMastered}

// Rank returns the position of the level in the progression, or -1 if unknown.
func (l MilestoneLevel) Rank() int {
	for i, candidate := range levelOrder {
		if candidate == l {
			return i
		}
	}
	return -1
}

// Next returns the level reached by a single advance. Mastered stays mastered.
func (l MilestoneLevel) Next() MilestoneLevel {
	rank := l.Rank()
	if rank < 0 {
		return LevelDidIt
	}
	if rank >= len(levelOrder)-1 {
		return LevelMastered
	}
	return levelOrder[rank+1]
}

// ParseLevel accepts the wire names of the levels.
func ParseLevel(s string) (MilestoneLevel, error) {
	l := MilestoneLevel(s)
	if l.Rank() < 0 {
		return "", fmt.Errorf("invalid level %q (expected none|didIt|learning|mastered)", s)
	}
	return l, nil
}

type MilestoneCategory string

const (
	CategoryMotor     MilestoneCategory = "motor"
	CategoryLanguage  MilestoneCategory = "language"
	CategorySocial    MilestoneCategory = "social"
	CategoryCognitive MilestoneCategory = "cognitive"
	CategoryCustom    MilestoneCategory = "custom"
)

func ParseMilestoneCategory(s string) (MilestoneCategory, error) {
	switch c := MilestoneCategory(s); c {
	case CategoryMotor, CategoryLanguage, CategorySocial, CategoryCognitive, CategoryCustom:
		return c, nil
	}
	return "", fmt.Errorf("invalid milestone category %q", s)
}

// LevelLogEntry records a single transition. Level is never none.
type LevelLogEntry struct {
	Level        MilestoneLevel `json:"level"`
	TimestampIso string         `json:"timestampIso"`
}

type MilestoneItem struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	AgeStartMonths int               `json:"ageStartMonths"`
	AgeEndMonths   int               `json:"ageEndMonths"`
	Category       MilestoneCategory `json:"category"`
	Level          MilestoneLevel    `json:"level"`
	LevelHistory   []LevelLogEntry   `json:"levelHistory"`
	CreatedAtIso   string            `json:"createdAtIso"`
	IsCustom       bool              `json:"isCustom,omitempty"`
	CreatedBy      string            `json:"createdBy,omitempty"`
}

// CurrentLevelFromHistory is the level implied by the log: the last entry, or none.
func (m MilestoneItem) CurrentLevelFromHistory() MilestoneLevel {
	if len(m.LevelHistory) == 0 {
		return LevelNone
	}
	return m.LevelHistory[len(m.LevelHistory)-1].Level
}
