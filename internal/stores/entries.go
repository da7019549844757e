package stores

import "github.com/julianstephens/littlesteps/internal/models"

// splitEntries decodes a list slice from the server. Entries that do not
// decode, or that valid rejects, come back untouched in opaque so pushes can
// write them back.
func splitEntries[T any](v any, valid func(T) bool) (items []T, opaque []any) {
	raw, _ := v.([]any)
	for _, entry := range raw {
		item, err := models.DecodeValue[T](entry)
		if err != nil || !valid(item) {
			opaque = append(opaque, entry)
			continue
		}
		items = append(items, item)
	}
	return items, opaque
}

// withOpaque appends the undecoded entries to a typed list for a push.
func withOpaque[T any](items []T, opaque []any) any {
	if len(opaque) == 0 {
		return items
	}
	out := make([]any, 0, len(items)+len(opaque))
	for _, item := range items {
		out = append(out, item)
	}
	return append(out, opaque...)
}

// opaqueKeys collects the identifying field of undecoded entries.
func opaqueKeys(opaque []any, field string) map[string]bool {
	keys := make(map[string]bool, len(opaque))
	for _, entry := range opaque {
		if obj, ok := entry.(map[string]any); ok {
			if k, ok := obj[field].(string); ok && k != "" {
				keys[k] = true
			}
		}
	}
	return keys
}
