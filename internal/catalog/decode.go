package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// questionsSchema describes a question file: a JSON array of questions.
const questionsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "category_id", "difficulty"],
    "properties": {
      "id":              {"type": "string", "minLength": 1},
      "category_id":     {"type": "string", "minLength": 1},
      "difficulty":      {"type": "integer", "minimum": 1, "maximum": 5},
      "tags":            {"type": "array", "items": {"type": "string"}},
      "question_text":   {"type": "string"},
      "answer_template": {},
      "explanation":     {"type": "string"}
    }
  }
}`

const questionsSchemaURL = "schema://questions.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(questionsSchema)))
	if err != nil {
		return nil, fmt.Errorf("parse questions schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(questionsSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(questionsSchemaURL)
})

// Decode reads a question file. The document is checked against the
// question schema before it is decoded, and every question is validated.
// Duplicate IDs are rejected.
func Decode(r io.Reader) ([]Question, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %v: %w", err, ErrInvalidInput)
	}
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, fmt.Errorf("schema validation failed: %v: %w", verr, ErrInvalidInput)
		}
		return nil, err
	}

	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %v: %w", err, ErrInvalidInput)
	}
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q: %w", q.ID, ErrInvalidInput)
		}
		seen[q.ID] = true
	}
	return qs, nil
}
