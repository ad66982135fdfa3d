package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]Property{
			"name":  {Type: "string", MinLength: IntPtr(2), MaxLength: IntPtr(10)},
			"kind":  {Type: "string", Enum: []string{"apiKey", "oauth2"}},
			"code":  {Type: "string", Pattern: strPtr(`^[A-Z]{2}$`)},
			"limit": {Type: "integer", Minimum: FloatPtr(1), Maximum: FloatPtr(100)},
			"ratio": {Type: "number"},
			"flag":  {Type: "boolean"},
			"tags":  {Type: "array", MinItems: IntPtr(1), Items: &Property{Type: "string"}},
			"owner": {
				Type:       "object",
				Required:   []string{"id"},
				Properties: map[string]Property{"id": {Type: "integer"}},
			},
		},
		AdditionalProperties: false,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		field     string
		code      string
	}{
		{
			name: "valid input",
			input: map[string]interface{}{
				"name": "countries", "kind": "oauth2", "code": "CH", "limit": float64(50),
				"ratio": 0.5, "flag": true, "tags": []interface{}{"a"},
				"owner": map[string]interface{}{"id": float64(7)},
			},
			wantValid: true,
		},
		{
			name:  "missing required field",
			input: map[string]interface{}{},
			field: "name",
			code:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:  "wrong type",
			input: map[string]interface{}{"name": float64(3)},
			field: "name",
			code:  "INVALID_TYPE",
		},
		{
			name:  "too short",
			input: map[string]interface{}{"name": "a"},
			field: "name",
			code:  "MIN_LENGTH_VIOLATION",
		},
		{
			name:  "too long",
			input: map[string]interface{}{"name": "abcdefghijk"},
			field: "name",
			code:  "MAX_LENGTH_VIOLATION",
		},
		{
			name:  "not in enum",
			input: map[string]interface{}{"name": "ok", "kind": "basic"},
			field: "kind",
			code:  "INVALID_ENUM_VALUE",
		},
		{
			name:  "pattern mismatch",
			input: map[string]interface{}{"name": "ok", "code": "che"},
			field: "code",
			code:  "PATTERN_MISMATCH",
		},
		{
			name:  "fractional integer",
			input: map[string]interface{}{"name": "ok", "limit": 2.5},
			field: "limit",
			code:  "INVALID_TYPE",
		},
		{
			name:  "below minimum",
			input: map[string]interface{}{"name": "ok", "limit": float64(0)},
			field: "limit",
			code:  "MINIMUM_VIOLATION",
		},
		{
			name:  "above maximum",
			input: map[string]interface{}{"name": "ok", "limit": float64(101)},
			field: "limit",
			code:  "MAXIMUM_VIOLATION",
		},
		{
			name:  "empty array",
			input: map[string]interface{}{"name": "ok", "tags": []interface{}{}},
			field: "tags",
			code:  "MIN_ITEMS_VIOLATION",
		},
		{
			name:  "bad array item",
			input: map[string]interface{}{"name": "ok", "tags": []interface{}{"a", true}},
			field: "tags[1]",
			code:  "INVALID_TYPE",
		},
		{
			name:  "nested required field",
			input: map[string]interface{}{"name": "ok", "owner": map[string]interface{}{}},
			field: "owner.id",
			code:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:  "extra field",
			input: map[string]interface{}{"name": "ok", "unexpected": 1},
			field: "unexpected",
			code:  "EXTRA_FIELD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			if tt.wantValid {
				assert.True(t, result.Valid, "errors: %v", result.GetErrorMessages())
				return
			}

			assert.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field), "errors: %v", result.GetErrorMessages())
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.code, result.Errors[0].Code)
		})
	}
}

func TestValidateInput_AdditionalPropertiesAllowed(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = true

	result := ValidateInput(map[string]interface{}{"name": "ok", "processVar": "x"}, schema)
	assert.True(t, result.Valid)
}

func TestValidateInput_StableErrorOrder(t *testing.T) {
	input := map[string]interface{}{"name": "ok", "kind": "basic", "flag": "yes", "limit": float64(0)}

	first := ValidateInput(input, testSchema()).GetErrorMessages()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ValidateInput(input, testSchema()).GetErrorMessages())
	}
	assert.Len(t, first, 3)
}

func TestValidateDocument(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "array",
		"minItems": 1,
		"items": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"id"},
		},
	}

	result, err := ValidateDocument(schema, []interface{}{map[string]interface{}{"id": 1}})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	result, err = ValidateDocument(schema, []interface{}{map[string]interface{}{}, "x"})
	require.NoError(t, err)
	assert.False(t, result.Valid)

	codes := []string{}
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "REQUIRED")
	assert.Contains(t, codes, "INVALID_TYPE")

	result, err = ValidateDocument(schema, []interface{}{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestGetSchemaFromJSON(t *testing.T) {
	schema, err := GetSchemaFromJSON(`{
		"type": "object",
		"required": ["operation"],
		"properties": {"operation": {"type": "string", "minLength": 1}}
	}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"operation"}, schema.Required)
	require.NotNil(t, schema.Properties["operation"].MinLength)
	assert.Equal(t, 1, *schema.Properties["operation"].MinLength)

	_, err = GetSchemaFromJSON(`{not json`)
	assert.Error(t, err)
}

func TestGetErrorsForField(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"name":  "ok",
		"tags":  []interface{}{1, 2},
		"owner": map[string]interface{}{"id": "x"},
	}, testSchema())

	assert.Len(t, result.GetErrorsForField("tags"), 2)
	assert.Len(t, result.GetErrorsForField("owner"), 1)
	assert.Empty(t, result.GetErrorsForField("name"))
}
