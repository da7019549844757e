package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/littlesteps/internal/document"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

// Open picks a backend from the location: *.json is a JSON file,
// postgres:// URLs are PostgreSQL, anything else is a SQLite database.
func Open(location string, opts Options) Provider {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return NewPostgresStore(location, opts)
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return NewJSONStore(location, opts)
	default:
		return NewSQLiteStore(location, opts)
	}
}

// seedDocument builds the normalized default used when nothing usable is persisted.
func seedDocument(defaultPath string) (models.Document, error) {
	doc, err := document.LoadDefault(defaultPath)
	if err != nil {
		return nil, err
	}
	return document.Normalize(doc), nil
}

// decodePersisted reports false when the payload is not a JSON object.
func decodePersisted(data []byte) (models.Document, bool) {
	doc, err := models.ParseDocument(data)
	if err != nil {
		return nil, false
	}
	return doc, true
}

func encodeDocument(doc models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize state: %w", err)
	}
	return data, nil
}

func validateForSave(doc models.Document) error {
	if err := document.Validate(doc); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrStorageUnavailable, op, err)
}
