package models

import (
	"reflect"
	"strings"
)

var sliceTypes = map[string]reflect.Type{
	KeyBaby:       reflect.TypeOf(BabyProfile{}),
	KeyMilestones: reflect.TypeOf(MilestoneItem{}),
	KeyChores:     reflect.TypeOf(ChoreItem{}),
	KeyUsers:      reflect.TypeOf(UserRecord{}),
}

// KnownFields returns the JSON field names the client models for a slice, or
// nil for keys it does not own.
func KnownFields(key string) map[string]bool {
	t, ok := sliceTypes[key]
	if !ok {
		return nil
	}
	fields := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields[name] = true
		}
	}
	return fields
}

// EntryKey is the field that identifies an entry of a list slice.
func EntryKey(key string) string {
	if key == KeyUsers {
		return "username"
	}
	return "id"
}
