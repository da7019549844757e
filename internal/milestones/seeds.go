package milestones

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/julianstephens/littlesteps/internal/models"
)

//go:embed seeds.json
var seedData []byte

var loadSeeds = sync.OnceValue(func() []models.MilestoneItem {
	var items []models.MilestoneItem
	if err := json.Unmarshal(seedData, &items); err != nil {
		panic("milestones: bundled seed catalogue is invalid: " + err.Error())
	}
	return items
})

// Seeds returns a fresh copy of the fixed milestone catalogue.
func Seeds() []models.MilestoneItem {
	return clone(loadSeeds())
}

// IsSeed reports whether id belongs to the fixed catalogue.
func IsSeed(id string) bool {
	return index(loadSeeds(), id) >= 0
}

// MergeWithSeeds appends every catalogue milestone whose id is missing from
// existing. Existing items are never replaced.
func MergeWithSeeds(existing []models.MilestoneItem) []models.MilestoneItem {
	merged := clone(existing)
	seen := make(map[string]bool, len(merged))
	for _, m := range merged {
		seen[m.ID] = true
	}
	for _, seed := range Seeds() {
		if !seen[seed.ID] {
			merged = append(merged, seed)
		}
	}
	return merged
}
