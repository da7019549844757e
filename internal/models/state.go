package models

import (
	"encoding/json"
	"fmt"
)

// Top-level keys of the shared document. Each one is a slice owned by one client store.
const (
	KeyBaby       = "baby"
	KeyMilestones = "milestones"
	KeyChores     = "chores"
	KeyUsers      = "users"
)

// Document is the persisted state as a generic JSON object. Storage works on
// documents so unknown keys survive a round trip.
type Document map[string]any

// ServerState is the typed view of a normalized Document.
type ServerState struct {
	Baby       BabyProfile     `json:"baby"`
	Milestones []MilestoneItem `json:"milestones"`
	Chores     []ChoreItem     `json:"chores"`
	Users      []UserRecord    `json:"users"`
}

// Clone returns a shallow copy; nested values are shared.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Decode converts the document into its typed view.
func (d Document) Decode() (ServerState, error) {
	var st ServerState
	raw, err := json.Marshal(d)
	if err != nil {
		return st, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("failed to decode document: %w", err)
	}
	return st, nil
}

// ToValue converts a typed slice value into its generic JSON form so it can be
// spliced into a Document.
func ToValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDocument parses raw JSON that must be an object.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	return doc, nil
}

// DecodeValue converts a generic JSON value into T.
func DecodeValue[T any](v any) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// DecodeLenient decodes an object into T, leaving out fields whose values
// have the wrong type instead of failing the whole value.
func DecodeLenient[T any](v any) (T, error) {
	out, err := DecodeValue[T](v)
	if err == nil {
		return out, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return out, err
	}
	kept := make(map[string]any, len(obj))
	for k, val := range obj {
		kept[k] = val
		if _, err := DecodeValue[T](kept); err != nil {
			delete(kept, k)
		}
	}
	return DecodeValue[T](kept)
}

// DecodeList converts a generic JSON array into []T, skipping entries that do
// not decode. A non-array yields an empty list.
func DecodeList[T any](v any) []T {
	raw, _ := v.([]any)
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		decoded, err := DecodeValue[T](item)
		if err != nil {
			continue
		}
		out = append(out, decoded)
	}
	return out
}

// Users decodes the users slice, skipping entries without a username.
func (d Document) Users() []UserRecord {
	var users []UserRecord
	for _, u := range DecodeList[UserRecord](d[KeyUsers]) {
		if u.Username != "" {
			users = append(users, u)
		}
	}
	return users
}
