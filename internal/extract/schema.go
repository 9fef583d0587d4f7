package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the minimum the extraction service must return.
var responseSchema = map[string]any{
	"type":     "object",
	"required": []any{"invoiceId"},
	"properties": map[string]any{
		"invoiceId": map[string]any{"type": "string", "minLength": 1},
	},
}

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// mustResponseSchema compiles responseSchema; the literal is fixed so failure is a programming error.
func mustResponseSchema() *jsonschema.Schema {
	s, err := compileSchema("extract_response.json", responseSchema)
	if err != nil {
		panic(err)
	}
	return s
}

// decodeResponse normalizes raw, validates it and returns the invoice id.
func decodeResponse(schema *jsonschema.Schema, raw []byte) (string, error) {
	normalized, err := normalizeResponse(raw)
	if err != nil {
		return "", err
	}
	var v any
	if err := json.Unmarshal(normalized, &v); err != nil {
		return "", fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return "", fmt.Errorf("json does not match schema: %w", err)
	}
	id, _ := v.(map[string]any)["invoiceId"].(string)
	return id, nil
}
