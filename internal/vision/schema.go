package vision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema constrains the envelope of a vision extraction response.
// The nested data tree is validated loosely; the merge step only reads known
// paths anyway, so unknown keys are harmless.
var responseSchema = map[string]any{
	"type":     "object",
	"required": []any{"data"},
	"properties": map[string]any{
		"data": map[string]any{"type": "object"},
		"confidence_scores": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"type":    "number",
				"minimum": 0.0,
				"maximum": 100.0,
			},
		},
		"analysis": map[string]any{"type": "string"},
	},
}

var compiledSchema = mustCompile(responseSchema)

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("vision: marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("vision: add schema: %v", err))
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		panic(fmt.Sprintf("vision: compile schema: %v", err))
	}
	return schema
}

// ValidateResponse checks a decoded extraction response against the envelope
// schema.
func ValidateResponse(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
