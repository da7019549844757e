package milestones

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

var (
	t1 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	t3 = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
)

func levels(items []models.MilestoneItem, id string) (models.MilestoneLevel, []models.MilestoneLevel) {
	m := items[index(items, id)]
	var hist []models.MilestoneLevel
	for _, e := range m.LevelHistory {
		hist = append(hist, e.Level)
	}
	return m.Level, hist
}

func sample() []models.MilestoneItem {
	return []models.MilestoneItem{
		{ID: "roll", Title: "Rolls", Level: models.LevelNone, LevelHistory: []models.LevelLogEntry{}},
		{ID: "custom-1", Title: "Custom", IsCustom: true, Level: models.LevelNone, LevelHistory: []models.LevelLogEntry{}},
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		from, want models.MilestoneLevel
	}{
		{models.LevelNone, models.LevelDidIt},
		{models.LevelDidIt, models.LevelLearning},
		{models.LevelLearning, models.LevelMastered},
		{models.LevelMastered, models.LevelMastered},
	}
	for _, tt := range tests {
		if got := Advance(tt.from); got != tt.want {
			t.Errorf("Advance(%s) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestAdvanceItemLogsEachStep(t *testing.T) {
	items := sample()
	var err error
	for _, now := range []time.Time{t1, t2, t3, t3} {
		items, err = AdvanceItem(items, "roll", now)
		if err != nil {
			t.Fatalf("AdvanceItem() error = %v", err)
		}
	}

	level, hist := levels(items, "roll")
	if level != models.LevelMastered {
		t.Errorf("level = %s, want mastered", level)
	}
	// Advancing an already mastered milestone logs nothing
	if len(hist) != 3 {
		t.Errorf("history = %v, want 3 entries", hist)
	}
}

func TestSetLevelKeepsHistoryConsistent(t *testing.T) {
	items, err := SetLevel(sample(), "roll", models.LevelLearning, t1)
	if err != nil {
		t.Fatal(err)
	}
	items, err = SetLevel(items, "roll", models.LevelLearning, t2)
	if err != nil {
		t.Fatal(err)
	}
	m := items[0]
	if len(m.LevelHistory) != 1 {
		t.Fatalf("same-level set appended history: %v", m.LevelHistory)
	}
	if m.Level != m.CurrentLevelFromHistory() {
		t.Errorf("level %s disagrees with history %v", m.Level, m.LevelHistory)
	}
	if m.LevelHistory[0].TimestampIso != "2025-03-01T09:00:00.000Z" {
		t.Errorf("timestamp = %s", m.LevelHistory[0].TimestampIso)
	}

	if _, err := SetLevel(items, "roll", models.LevelNone, t3); err == nil {
		t.Error("SetLevel(none) should fail")
	}
	if _, err := SetLevel(items, "missing", models.LevelDidIt, t3); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("SetLevel(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSetLevelDoesNotMutateInput(t *testing.T) {
	items := sample()
	if _, err := SetLevel(items, "roll", models.LevelDidIt, t1); err != nil {
		t.Fatal(err)
	}
	if items[0].Level != models.LevelNone || len(items[0].LevelHistory) != 0 {
		t.Errorf("input was mutated: %+v", items[0])
	}
}

func TestUndoLevel(t *testing.T) {
	items := sample()
	items[0].Level = models.LevelLearning
	items[0].LevelHistory = []models.LevelLogEntry{
		{Level: models.LevelDidIt, TimestampIso: "2025-03-01T09:00:00.000Z"},
		{Level: models.LevelLearning, TimestampIso: "2025-04-01T09:00:00.000Z"},
	}

	items, err := UndoLevel(items, "roll")
	if err != nil {
		t.Fatal(err)
	}
	level, hist := levels(items, "roll")
	if level != models.LevelDidIt || len(hist) != 1 || hist[0] != models.LevelDidIt {
		t.Errorf("after first undo: level %s history %v", level, hist)
	}

	items, err = UndoLevel(items, "roll")
	if err != nil {
		t.Fatal(err)
	}
	level, hist = levels(items, "roll")
	if level != models.LevelNone || len(hist) != 0 {
		t.Errorf("after second undo: level %s history %v", level, hist)
	}
	if items[0].LevelHistory == nil {
		t.Error("history should be an empty slice, not nil")
	}

	// Nothing left to undo
	items, err = UndoLevel(items, "roll")
	if err != nil || items[0].Level != models.LevelNone {
		t.Errorf("undo on empty history: level %s err %v", items[0].Level, err)
	}
}

func TestSetLevelHistorySortsChronologically(t *testing.T) {
	history := []models.LevelLogEntry{
		{Level: models.LevelMastered, TimestampIso: "2025-05-01T09:00:00"},
		{Level: models.LevelDidIt, TimestampIso: "2025-03-01T09:00:00"},
		{Level: models.LevelLearning, TimestampIso: "2025-06-01T09:00:00"},
	}

	items, err := SetLevelHistory(sample(), "roll", history)
	if err != nil {
		t.Fatal(err)
	}
	level, hist := levels(items, "roll")
	if level != models.LevelLearning {
		t.Errorf("level = %s, want learning (latest timestamp)", level)
	}
	want := []models.MilestoneLevel{models.LevelDidIt, models.LevelMastered, models.LevelLearning}
	for i := range want {
		if hist[i] != want[i] {
			t.Fatalf("history = %v, want %v", hist, want)
		}
	}

	items, err = SetLevelHistory(items, "roll", nil)
	if err != nil {
		t.Fatal(err)
	}
	if level, _ := levels(items, "roll"); level != models.LevelNone {
		t.Errorf("empty history level = %s, want none", level)
	}
}

func TestSetLevelHistoryRejectsBadEntries(t *testing.T) {
	bad := [][]models.LevelLogEntry{
		{{Level: models.LevelNone, TimestampIso: "2025-05-01T09:00:00"}},
		{{Level: models.LevelDidIt, TimestampIso: "yesterday"}},
	}
	for _, history := range bad {
		if _, err := SetLevelHistory(sample(), "roll", history); err == nil {
			t.Errorf("SetLevelHistory(%v) should fail", history)
		}
	}
}

func TestUpsert(t *testing.T) {
	items, created, err := Upsert(sample(), Draft{
		Title:          "  Claps hands ",
		AgeStartMonths: 9,
		AgeEndMonths:   12,
	}, "amy", t1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(created.ID, "custom-") {
		t.Errorf("id = %q, want custom- prefix", created.ID)
	}
	if created.Title != "Claps hands" || !created.IsCustom || created.CreatedBy != "amy" {
		t.Errorf("created = %+v", created)
	}
	if created.Category != models.CategoryCustom || created.Level != models.LevelNone {
		t.Errorf("created defaults = %s/%s", created.Category, created.Level)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}

	items, err = SetLevel(items, created.ID, models.LevelDidIt, t2)
	if err != nil {
		t.Fatal(err)
	}
	items, edited, err := Upsert(items, Draft{ID: created.ID, Title: "Claps", AgeStartMonths: 8, AgeEndMonths: 12}, "", t3)
	if err != nil {
		t.Fatal(err)
	}
	if edited.Level != models.LevelDidIt || len(edited.LevelHistory) != 1 {
		t.Errorf("edit lost progress: %+v", edited)
	}
	if edited.CreatedAtIso != created.CreatedAtIso || edited.CreatedBy != "amy" {
		t.Errorf("edit changed provenance: %+v", edited)
	}
	if len(items) != 3 {
		t.Errorf("edit appended instead of replacing")
	}

	// Editing a catalogue milestone keeps it protected
	items, _, err = Upsert(items, Draft{ID: "roll", Title: "Rolls over"}, "amy", t3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Delete(items, "roll"); !errors.Is(err, ErrNotCustom) {
		t.Errorf("Delete(edited seed) error = %v, want ErrNotCustom", err)
	}

	if _, _, err := Upsert(items, Draft{Title: "   "}, "amy", t3); err == nil {
		t.Error("blank title should be rejected")
	}
}

func TestUpsertDefaultsCreatorToAdmin(t *testing.T) {
	_, created, err := Upsert(nil, Draft{Title: "Waves"}, "", t1)
	if err != nil {
		t.Fatal(err)
	}
	if created.CreatedBy != "eddie" {
		t.Errorf("CreatedBy = %q, want eddie", created.CreatedBy)
	}
}

func TestDelete(t *testing.T) {
	items, err := Delete(sample(), "custom-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "roll" {
		t.Errorf("items = %+v", items)
	}

	if _, err := Delete(sample(), "roll"); !errors.Is(err, ErrNotCustom) {
		t.Errorf("Delete(seed) error = %v, want ErrNotCustom", err)
	}
	if _, err := Delete(sample(), "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestArchiveAndCompleted(t *testing.T) {
	items := []models.MilestoneItem{
		{ID: "a", Level: models.LevelNone},
		{ID: "b", Level: models.LevelDidIt},
		{ID: "c", Level: models.LevelLearning},
		{ID: "d", Level: models.LevelMastered},
	}
	if got := ids(Archive(items)); got != "b,c,d" {
		t.Errorf("Archive = %s", got)
	}
	if got := ids(Completed(items)); got != "d" {
		t.Errorf("Completed = %s", got)
	}
	if Completed(nil) == nil {
		t.Error("Completed(nil) should be an empty slice")
	}
}

func TestSeedsAndMerge(t *testing.T) {
	seeds := Seeds()
	if len(seeds) == 0 {
		t.Fatal("catalogue is empty")
	}
	seen := map[string]bool{}
	for _, s := range seeds {
		if seen[s.ID] {
			t.Errorf("duplicate seed id %q", s.ID)
		}
		seen[s.ID] = true
		if s.IsCustom || s.Level != models.LevelNone || s.LevelHistory == nil {
			t.Errorf("seed %q is not pristine: %+v", s.ID, s)
		}
		if !IsSeed(s.ID) {
			t.Errorf("IsSeed(%q) = false", s.ID)
		}
	}

	// Fresh copies each call
	seeds[0].Title = "changed"
	if Seeds()[0].Title == "changed" {
		t.Error("Seeds() returned shared state")
	}

	existing := []models.MilestoneItem{
		{ID: Seeds()[0].ID, Title: "Server copy", Level: models.LevelMastered},
		{ID: "custom-x", Title: "Custom", IsCustom: true},
	}
	merged := MergeWithSeeds(existing)
	if len(merged) != len(Seeds())+1 {
		t.Fatalf("merged len = %d, want %d", len(merged), len(Seeds())+1)
	}
	if merged[0].Title != "Server copy" || merged[0].Level != models.LevelMastered {
		t.Error("merge overwrote an existing id")
	}
	if merged[1].ID != "custom-x" {
		t.Error("merge reordered existing items")
	}

	again := MergeWithSeeds(merged)
	if len(again) != len(merged) {
		t.Error("merge is not idempotent")
	}
}

func ids(items []models.MilestoneItem) string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return strings.Join(out, ",")
}
