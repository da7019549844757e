package document

// Overlay writes the client's value of a slice over the server's current
// value while keeping the fields the client does not model. Objects are
// merged directly; list entries are matched on entryKey. Server entries the
// client no longer lists are dropped. With no known fields next wins as is.
func Overlay(current, next any, known map[string]bool, entryKey string) any {
	if len(known) == 0 {
		return next
	}
	switch next := next.(type) {
	case map[string]any:
		cur, _ := current.(map[string]any)
		return overlayObject(cur, next, known)
	case []any:
		byKey := map[string]map[string]any{}
		if list, ok := current.([]any); ok {
			for _, entry := range list {
				if obj, ok := entry.(map[string]any); ok {
					if k, ok := obj[entryKey].(string); ok && k != "" {
						byKey[k] = obj
					}
				}
			}
		}
		out := make([]any, len(next))
		for i, entry := range next {
			obj, ok := entry.(map[string]any)
			if !ok {
				out[i] = entry
				continue
			}
			k, _ := obj[entryKey].(string)
			out[i] = overlayObject(byKey[k], obj, known)
		}
		return out
	}
	return next
}

func overlayObject(current, next map[string]any, known map[string]bool) map[string]any {
	out := make(map[string]any, len(current)+len(next))
	for k, v := range current {
		if !known[k] {
			out[k] = v
		}
	}
	for k, v := range next {
		out[k] = v
	}
	return out
}
