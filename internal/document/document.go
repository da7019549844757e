// Package document owns the shape of the shared state document: the bundled
// default, normalization on read, the shape check on write, and slice splicing.
package document

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/julianstephens/littlesteps/internal/models"
)

//go:embed default-state.json
var defaultState []byte

// Default returns a fresh copy of the bundled default document.
func Default() models.Document {
	doc, err := models.ParseDocument(defaultState)
	if err != nil {
		panic(fmt.Sprintf("bundled default state is invalid: %v", err))
	}
	return doc
}

// LoadDefault reads a default document from path, or the bundled one when path is empty.
func LoadDefault(path string) (models.Document, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read default state: %w", err)
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default state %s: %w", path, err)
	}
	return doc, nil
}

// DefaultBaby returns the bundled baby profile as a generic object.
func DefaultBaby() map[string]any {
	baby, _ := Default()[models.KeyBaby].(map[string]any)
	if baby == nil {
		return map[string]any{}
	}
	return baby
}

// Splice copies base and overwrites only the given top-level keys.
func Splice(base models.Document, slices map[string]any) models.Document {
	out := base.Clone()
	if out == nil {
		out = models.Document{}
	}
	for key, value := range slices {
		out[key] = value
	}
	return out
}
