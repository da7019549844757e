// Package validation inspects a household document for problems the write
// check lets through: inconsistent level logs, bad windows, duplicates and
// legacy credentials.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidShape         ConflictType = "invalid_shape"
	ConflictInvalidBaby          ConflictType = "invalid_baby"
	ConflictDuplicateID          ConflictType = "duplicate_id"
	ConflictInvalidWindow        ConflictType = "invalid_window"
	ConflictInvalidCategory      ConflictType = "invalid_category"
	ConflictLevelHistoryMismatch ConflictType = "level_history_mismatch"
	ConflictInvalidHistory       ConflictType = "invalid_history"
	ConflictInvalidDate          ConflictType = "invalid_date"
	ConflictDuplicateUser        ConflictType = "duplicate_user"
	ConflictLegacyPassword       ConflictType = "legacy_password"
	ConflictMissingAdmin         ConflictType = "missing_admin"
)

// Conflict represents one problem found in the document
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // ids or usernames involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Count returns how many conflicts have the given type.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

func (vr *ValidationResult) add(t ConflictType, items []string, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Items:       items,
	})
}

// Validator checks documents. Timestamps without a zone are read in Location.
type Validator struct {
	Location *time.Location
}

// New creates a new Validator
func New(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{Location: loc}
}

// ValidateDocument runs every check against doc. A document that fails the
// shape check is reported and then inspected as far as it decodes.
func (v *Validator) ValidateDocument(doc models.Document) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if err := document.Validate(doc); err != nil {
		result.add(ConflictInvalidShape, nil, "%v", err)
	}

	baby, err := models.DecodeValue[models.BabyProfile](doc[models.KeyBaby])
	if err != nil {
		result.add(ConflictInvalidBaby, nil, "Baby profile does not decode: %v", err)
	} else {
		v.checkBaby(&result, baby)
	}

	v.checkMilestones(&result, models.DecodeList[models.MilestoneItem](doc[models.KeyMilestones]))
	v.checkChores(&result, models.DecodeList[models.ChoreItem](doc[models.KeyChores]))
	v.checkUsers(&result, models.DecodeList[models.UserRecord](doc[models.KeyUsers]))

	return result
}

func (v *Validator) checkBaby(result *ValidationResult, baby models.BabyProfile) {
	if strings.TrimSpace(baby.Name) == "" {
		result.add(ConflictInvalidBaby, nil, "Baby profile has no name")
	}
	if _, err := utils.ParseLocalISO(baby.BirthDateIso, v.Location); err != nil {
		result.add(ConflictInvalidBaby, nil, "Baby profile has invalid birth date: %q", baby.BirthDateIso)
	}
	if baby.WeightLbs != nil && *baby.WeightLbs <= 0 {
		result.add(ConflictInvalidBaby, nil, "Baby profile has non-positive weight: %v", *baby.WeightLbs)
	}
}

func (v *Validator) checkMilestones(result *ValidationResult, items []models.MilestoneItem) {
	duplicates(result, "milestone", items, func(m models.MilestoneItem) string { return m.ID })

	for _, m := range items {
		ids := []string{m.ID}
		if m.AgeStartMonths > m.AgeEndMonths {
			result.add(ConflictInvalidWindow, ids, "Milestone %q has window %d-%d months (start after end)", m.ID, m.AgeStartMonths, m.AgeEndMonths)
		}
		if _, err := models.ParseMilestoneCategory(string(m.Category)); err != nil {
			result.add(ConflictInvalidCategory, ids, "Milestone %q has invalid category %q", m.ID, m.Category)
		}
		if m.Level.Rank() < 0 {
			result.add(ConflictInvalidHistory, ids, "Milestone %q has unknown level %q", m.ID, m.Level)
		}
		if got := m.CurrentLevelFromHistory(); got != m.Level {
			result.add(ConflictLevelHistoryMismatch, ids, "Milestone %q is at %q but its history ends at %q", m.ID, m.Level, got)
		}
		v.checkHistory(result, m)
	}
}

func (v *Validator) checkHistory(result *ValidationResult, m models.MilestoneItem) {
	var prev time.Time
	for i, entry := range m.LevelHistory {
		if entry.Level == models.LevelNone || entry.Level.Rank() < 0 {
			result.add(ConflictInvalidHistory, []string{m.ID}, "Milestone %q history entry %d has level %q", m.ID, i, entry.Level)
		}
		ts, err := utils.ParseLocalISO(entry.TimestampIso, v.Location)
		if err != nil {
			result.add(ConflictInvalidHistory, []string{m.ID}, "Milestone %q history entry %d has invalid timestamp %q", m.ID, i, entry.TimestampIso)
			continue
		}
		if ts.Before(prev) {
			result.add(ConflictInvalidHistory, []string{m.ID}, "Milestone %q history is out of order at entry %d", m.ID, i)
		}
		prev = ts
	}
}

func (v *Validator) checkChores(result *ValidationResult, items []models.ChoreItem) {
	duplicates(result, "chore", items, func(c models.ChoreItem) string { return c.ID })

	for _, c := range items {
		if _, err := models.ParseChoreCategory(string(c.Category)); err != nil {
			result.add(ConflictInvalidCategory, []string{c.ID}, "Chore %q has invalid category %q", c.ID, c.Category)
		}
		if c.LastCompletedDate != "" {
			if _, err := time.Parse(constants.DateFormat, c.LastCompletedDate); err != nil {
				result.add(ConflictInvalidDate, []string{c.ID}, "Chore %q has invalid completion date %q", c.ID, c.LastCompletedDate)
			}
		}
		if c.EstimatedMinutes != nil && *c.EstimatedMinutes < 0 {
			result.add(ConflictInvalidDate, []string{c.ID}, "Chore %q has negative estimate %g", c.ID, *c.EstimatedMinutes)
		}
	}
}

func (v *Validator) checkUsers(result *ValidationResult, users []models.UserRecord) {
	duplicates(result, "username", users, func(u models.UserRecord) string { return strings.ToLower(u.Username) })

	if _, ok := auth.FindUser(users, constants.DefaultAdminUsername); !ok {
		result.add(ConflictMissingAdmin, []string{constants.DefaultAdminUsername}, "Default admin %q is missing", constants.DefaultAdminUsername)
	}
	for _, u := range users {
		if u.IsLegacy() {
			result.add(ConflictLegacyPassword, []string{u.Username}, "User %q has a plaintext password (run `user migrate`)", u.Username)
		}
	}
}

func duplicates[T any](result *ValidationResult, kind string, items []T, key func(T) string) {
	seen := make(map[string]int)
	for _, item := range items {
		if k := key(item); k != "" {
			seen[k]++
		}
	}
	keys := make([]string, 0, len(seen))
	for k, n := range seen {
		if n > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	t := ConflictDuplicateID
	if kind == "username" {
		t = ConflictDuplicateUser
	}
	for _, k := range keys {
		result.add(t, []string{k}, "Duplicate %s %q (%d entries)", kind, k, seen[k])
	}
}
