package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

//go:embed state.schema.json
var stateSchema []byte

const stateSchemaURL = "mem://littlesteps/state.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(stateSchemaURL, bytes.NewReader(stateSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile(stateSchemaURL)
})

// ValidationError describes the first shape problem found in a document.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid document: %s", e.Message)
	}
	return fmt.Sprintf("invalid document at %s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrInvalidDocument
}

// Validate performs the minimal write-side shape check: an object with a
// milestones array and a baby object. Deeper fields are not inspected.
func Validate(doc models.Document) error {
	if doc == nil {
		return &ValidationError{Message: "document must be a JSON object"}
	}
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile state schema: %w", err)
	}
	if err := schema.Validate(map[string]any(doc)); err != nil {
		return mapSchemaError(err)
	}
	return nil
}

func mapSchemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &ValidationError{Path: leaf.InstanceLocation, Message: leaf.Message}
}
