package milestones

import (
	"sort"
	"time"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/utils"
)

// Score ranks a milestone for the upcoming view. Lower scores come first:
// overdue (most overdue first), then in-window, then soonest future, with
// mastered always last.
func Score(m models.MilestoneItem, ageMonths int) int {
	switch {
	case m.Level == models.LevelMastered:
		return 9999
	case ageMonths > m.AgeEndMonths:
		return -100 + (ageMonths - m.AgeEndMonths)
	case ageMonths >= m.AgeStartMonths:
		return -10
	default:
		return m.AgeStartMonths - ageMonths
	}
}

// Upcoming returns at most limit non-mastered milestones ordered by Score.
// Ties keep their input order. A limit <= 0 uses the default of 10.
func Upcoming(items []models.MilestoneItem, ageMonths, limit int) []models.MilestoneItem {
	if limit <= 0 {
		limit = constants.UpcomingLimit
	}
	list := filter(items, func(m models.MilestoneItem) bool { return m.Level != models.LevelMastered })
	sort.SliceStable(list, func(i, j int) bool {
		return Score(list[i], ageMonths) < Score(list[j], ageMonths)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// AgeInMonths is the number of full calendar months from birth to now. The
// birth timestamp carries no zone and is read in now's location.
func AgeInMonths(birthDateIso string, now time.Time) (int, error) {
	birth, err := utils.ParseLocalISO(birthDateIso, now.Location())
	if err != nil {
		return 0, err
	}
	return utils.MonthsBetween(birth, now), nil
}

// NextBirthday returns the first anniversary of the birth strictly after now.
func NextBirthday(birthDateIso string, now time.Time) (time.Time, error) {
	birth, err := utils.ParseLocalISO(birthDateIso, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	for years := 0; ; years++ {
		next := utils.AddMonths(birth, 12*years)
		if next.After(now) {
			return next, nil
		}
	}
}
