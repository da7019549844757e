package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/milestones"
	"github.com/julianstephens/littlesteps/internal/models"
)

// MilestoneStore owns the baby profile and the milestone list. Both are
// pushed together on every change.
type MilestoneStore struct {
	Baby       *Container[models.BabyProfile]
	Milestones *Container[[]models.MilestoneItem]

	auth   *AuthStore
	syncer *Syncer
	clock  func() time.Time
	client api.Client
	// opaque holds server milestones this client cannot decode
	opaque []any
}

// DefaultBaby returns the bundled baby profile.
func DefaultBaby() models.BabyProfile {
	baby, err := models.DecodeValue[models.BabyProfile](document.DefaultBaby())
	if err != nil {
		return models.BabyProfile{}
	}
	return baby
}

func (s *MilestoneStore) push() {
	s.syncer.Push(s.slices())
}

func (s *MilestoneStore) mutate(fn func([]models.MilestoneItem) ([]models.MilestoneItem, error)) error {
	if !s.auth.CanEdit() {
		return errors.ErrReadOnly
	}
	if _, err := s.Milestones.TryUpdate(fn); err != nil {
		return err
	}
	s.push()
	return nil
}

// SetBaby replaces the whole baby profile.
func (s *MilestoneStore) SetBaby(baby models.BabyProfile) error {
	if !s.auth.CanEdit() {
		return errors.ErrReadOnly
	}
	if baby.Name == "" || baby.BirthDateIso == "" {
		return fmt.Errorf("baby name and birth date are required")
	}
	if _, err := milestones.AgeInMonths(baby.BirthDateIso, s.clock()); err != nil {
		return err
	}
	s.Baby.Set(baby)
	s.push()
	return nil
}

func (s *MilestoneStore) SetBabyWeight(weightLbs float64) error {
	if !s.auth.CanEdit() {
		return errors.ErrReadOnly
	}
	if weightLbs <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	s.Baby.Update(func(b models.BabyProfile) models.BabyProfile {
		b.WeightLbs = &weightLbs
		return b
	})
	s.push()
	return nil
}

// UpsertMilestone creates a custom milestone or edits an existing one.
func (s *MilestoneStore) UpsertMilestone(d milestones.Draft) (models.MilestoneItem, error) {
	var saved models.MilestoneItem
	err := s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		next, item, err := milestones.Upsert(items, d, s.auth.Current(), s.clock())
		saved = item
		return next, err
	})
	return saved, err
}

func (s *MilestoneStore) Advance(id string) error {
	return s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		return milestones.AdvanceItem(items, id, s.clock())
	})
}

func (s *MilestoneStore) SetLevel(id string, level models.MilestoneLevel) error {
	return s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		return milestones.SetLevel(items, id, level, s.clock())
	})
}

func (s *MilestoneStore) UndoLevel(id string) error {
	return s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		return milestones.UndoLevel(items, id)
	})
}

func (s *MilestoneStore) SetLevelHistory(id string, history []models.LevelLogEntry) error {
	return s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		return milestones.SetLevelHistory(items, id, history)
	})
}

func (s *MilestoneStore) DeleteMilestone(id string) error {
	return s.mutate(func(items []models.MilestoneItem) ([]models.MilestoneItem, error) {
		return milestones.Delete(items, id)
	})
}

func (s *MilestoneStore) Archive() []models.MilestoneItem {
	return milestones.Archive(s.Milestones.Get())
}

func (s *MilestoneStore) Completed() []models.MilestoneItem {
	return milestones.Completed(s.Milestones.Get())
}

// AgeInMonths is the baby's age on the store clock.
func (s *MilestoneStore) AgeInMonths() (int, error) {
	return milestones.AgeInMonths(s.Baby.Get().BirthDateIso, s.clock())
}

// Upcoming ranks open milestones for the baby's current age.
func (s *MilestoneStore) Upcoming(limit int) ([]models.MilestoneItem, error) {
	age, err := s.AgeInMonths()
	if err != nil {
		return nil, err
	}
	return milestones.Upcoming(s.Milestones.Get(), age, limit), nil
}

func (s *MilestoneStore) NextBirthday() (time.Time, error) {
	return milestones.NextBirthday(s.Baby.Get().BirthDateIso, s.clock())
}

// Hydrate adopts the server's profile and milestones, adding any catalogue
// milestone the server lacks.
func (s *MilestoneStore) Hydrate(ctx context.Context) error {
	doc, err := s.client.FetchState(ctx)
	if err != nil {
		return err
	}
	if pending := s.hydrateFrom(doc); pending != nil {
		s.syncer.Push(pending)
	}
	return nil
}

func (s *MilestoneStore) slices() map[string]any {
	return map[string]any{
		models.KeyBaby:       s.Baby.Get(),
		models.KeyMilestones: withOpaque(s.Milestones.Get(), s.opaque),
	}
}

func (s *MilestoneStore) hydrateFrom(doc models.Document) map[string]any {
	changed := false

	if raw, ok := doc[models.KeyBaby].(map[string]any); ok {
		if baby, err := models.DecodeLenient[models.BabyProfile](raw); err == nil && baby.Name != "" {
			s.Baby.Set(baby)
		} else {
			changed = true
		}
	} else {
		changed = true
	}

	raw, _ := doc[models.KeyMilestones].([]any)
	if len(raw) > 0 {
		server, opaque := splitEntries(raw, func(m models.MilestoneItem) bool { return m.ID != "" })
		s.opaque = opaque
		// A seed the server holds in a form this client cannot read is not missing
		held := opaqueKeys(opaque, "id")
		merged := milestones.MergeWithSeeds(server)
		added := merged[len(server):]
		merged = merged[:len(server):len(server)]
		for _, seed := range added {
			if !held[seed.ID] {
				merged = append(merged, seed)
			}
		}
		s.Milestones.Set(merged)
		changed = changed || len(merged) != len(server)
	} else {
		s.opaque = nil
		changed = true
	}

	// The server converges onto the merged view
	if changed {
		return s.slices()
	}
	return nil
}
