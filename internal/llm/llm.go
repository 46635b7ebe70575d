// Package llm is the boundary to the language model: a schema-constrained
// call that yields a parsed document and a free-form call that yields text.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

var (
	ErrEmptyResponse   = errors.New("llm returned an empty response")
	ErrSchemaViolation = errors.New("llm response does not match schema")
)

// Prompt is the message pair sent to the model.
type Prompt struct {
	System string
	User   string
}

// Schema is the output contract for a structured call.
type Schema struct {
	Name        string
	Description string
	Definition  jsonschema.Definition
}

type Client interface {
	// Structured asks for output conforming to schema and decodes it into out.
	// It fails closed: anything that cannot be decoded into the schema is an error.
	Structured(ctx context.Context, prompt Prompt, schema Schema, out any) error
	// Complete asks for free-form text.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// decodeStructured parses a structured reply, checks the top-level required
// keys of the schema and decodes into out.
func decodeStructured(text string, schema Schema, out any) error {
	text = strings.TrimSpace(text)
	if !json.Valid([]byte(text)) {
		text = strings.TrimSpace(StripFences(text))
	}
	if text == "" {
		return ErrEmptyResponse
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	for _, key := range schema.Definition.Required {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			return fmt.Errorf("%w: missing required field %q", ErrSchemaViolation, key)
		}
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}
