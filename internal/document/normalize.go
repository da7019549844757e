package document

import (
	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/models"
)

// Normalize repairs a loaded document so every required key exists. It never
// mutates doc and applying it twice gives the same result as once.
func Normalize(doc models.Document) models.Document {
	out := doc.Clone()
	if out == nil {
		out = models.Document{}
	}

	out[models.KeyBaby] = normalizeBaby(out[models.KeyBaby])
	out[models.KeyMilestones] = asArray(out[models.KeyMilestones])
	out[models.KeyChores] = normalizeChores(asArray(out[models.KeyChores]))
	out[models.KeyUsers] = normalizeUsers(asArray(out[models.KeyUsers]))

	return out
}

func asArray(v any) []any {
	arr, ok := v.([]any)
	if !ok || arr == nil {
		return []any{}
	}
	return arr
}

// normalizeBaby deep-merges provided fields over the defaults.
func normalizeBaby(v any) map[string]any {
	provided, _ := v.(map[string]any)
	return deepMerge(DefaultBaby(), provided)
}

func deepMerge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		baseChild, baseIsMap := out[k].(map[string]any)
		overChild, overIsMap := v.(map[string]any)
		if baseIsMap && overIsMap {
			out[k] = deepMerge(baseChild, overChild)
			continue
		}
		out[k] = v
	}
	return out
}

func normalizeChores(chores []any) []any {
	out := make([]any, len(chores))
	for i, item := range chores {
		chore, ok := item.(map[string]any)
		if !ok {
			out[i] = item
			continue
		}
		if category, ok := chore["category"].(string); ok && category != "" {
			out[i] = chore
			continue
		}
		fixed := make(map[string]any, len(chore)+1)
		for k, v := range chore {
			fixed[k] = v
		}
		fixed["category"] = string(models.DefaultChoreCategory)
		out[i] = fixed
	}
	return out
}

func normalizeUsers(users []any) []any {
	for _, item := range users {
		if user, ok := item.(map[string]any); ok && user["username"] == constants.DefaultAdminUsername {
			return users
		}
	}
	admin, err := models.ToValue(auth.DefaultAdmin())
	if err != nil {
		return users
	}
	out := make([]any, 0, len(users)+1)
	out = append(out, admin)
	return append(out, users...)
}
