package schemas

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/chaos-engine/internal/humanize"
)

const personSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "age"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)

	tests := []struct {
		name      string
		document  string
		wantField string
	}{
		{name: "valid", document: `{"name": "Ada", "age": 36}`},
		{name: "missing field", document: `{"name": "Ada"}`, wantField: "(root)"},
		{name: "wrong type", document: `{"name": "Ada", "age": "old"}`, wantField: "age"},
		{name: "below minimum", document: `{"name": "Ada", "age": -1}`, wantField: "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docPath := writeFile(t, dir, tt.name+".json", tt.document)
			err := ValidateJSON(schemaPath, docPath)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T: %v", err, err)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.wantField, ve.Errors[0].Field)
			assert.Contains(t, ve.Error(), "validation failed")
		})
	}
}

func TestValidateJSON_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	docPath := writeFile(t, dir, "doc.json", `{}`)

	err := ValidateJSON(filepath.Join(dir, "nope.schema.json"), docPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON file not found")
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	docPath := writeFile(t, dir, "bad.json", "{ invalid json }")

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(ValidateJSON(schemaPath, docPath), &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "Ada", "age": 1}`))

	var ve *ValidationError
	assert.True(t, errors.As(ValidateJSONString(personSchema, `{"age": 1}`), &ve))

	var loadErr *SchemaLoadError
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "(string schema)", loadErr.Path)
}

func TestResolveSchemaPath(t *testing.T) {
	assert.NotEmpty(t, ResolveSchemaPath(filepath.Join("schemas", HumanizeResult)), "repo root is two levels up")
	assert.Empty(t, ResolveSchemaPath("does/not/exist.json"))
}

func TestValidateDocument_HumanizeResult(t *testing.T) {
	engine, err := humanize.NewSeeded(42)
	require.NoError(t, err)
	opts := humanize.DefaultOptions()
	opts.InterPassDelay = 0

	result, err := engine.Transform(context.Background(), "<p>We leverage robust tools. They do not fail often, which is crucial.</p>", opts)
	require.NoError(t, err)
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NoError(t, ValidateDocument(HumanizeResult, data))

	err = ValidateDocument(HumanizeResult, []byte(`{"text": "x", "passes_applied": 4}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.GreaterOrEqual(t, len(ve.Errors), 2)
}

func TestValidateDocument_RiskReport(t *testing.T) {
	data, err := json.Marshal(humanize.AnalyzeRisk("In conclusion, we leverage robust tools."))
	require.NoError(t, err)
	assert.NoError(t, ValidateDocument(RiskReport, data))

	tampered := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &tampered))
	tampered["risk_level"] = "EXTREME"
	data, err = json.Marshal(tampered)
	require.NoError(t, err)

	var ve *ValidationError
	require.True(t, errors.As(ValidateDocument(RiskReport, data), &ve))
	assert.Equal(t, "risk_level", ve.Errors[0].Field)
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(ValidateDocument("nope.schema.json", []byte(`{}`)), &loadErr))
}
