package nodeworker

import (
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/validation"
)

// InputVariables are the only variables fetched from the broker.
var InputVariables = []string{
	"resource",
	"operation",
	"authentication",
	"parameters",
	"records",
	infomaniak.KeyReturnAll,
	infomaniak.KeyLimit,
	infomaniak.KeyReturnFullResponse,
	"correlationId",
}

// GetInputSchema checks job variable types only. Unknown resources and
// operations are reported by the registry lookup.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"resource", "operation"},
		Properties: map[string]validation.Property{
			"resource": {
				Type:        "string",
				Description: "Resource group of the operation",
				MinLength:   validation.IntPtr(1),
			},
			"operation": {
				Type:        "string",
				Description: "Operation key within the resource",
				MinLength:   validation.IntPtr(1),
			},
			"authentication": {
				Type:        "string",
				Description: "Credential kind used for the request",
				Enum:        []string{infomaniak.AuthAPIKey, infomaniak.AuthOAuth2},
			},
			"parameters": {
				Type:        "object",
				Description: "Parameter bag of a single record",
			},
			"records": {
				Type:        "array",
				Description: "Parameter bags, one per record",
				MinItems:    validation.IntPtr(1),
			},
			infomaniak.KeyReturnAll: {
				Type:        "boolean",
				Description: "Fetch every page of a paginated listing",
			},
			infomaniak.KeyLimit: {
				Type:        "integer",
				Description: "Page size of a single-page listing",
				Minimum:     validation.FloatPtr(1),
			},
			infomaniak.KeyReturnFullResponse: {
				Type:        "boolean",
				Description: "Emit the whole response object instead of its data",
			},
			"correlationId": {
				Type:        "string",
				Description: "Identifier propagated to the request log",
			},
		},
		// the broker may send other process variables
		AdditionalProperties: true,
	}
}

// GetRecordsSchema is checked with gojsonschema: every record is an object
// whose per-record options, if present, are well typed.
func GetRecordsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "array",
		"minItems": 1,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				infomaniak.KeyReturnAll:          map[string]interface{}{"type": "boolean"},
				infomaniak.KeyLimit:              map[string]interface{}{"type": "integer", "minimum": 1},
				infomaniak.KeyReturnFullResponse: map[string]interface{}{"type": "boolean"},
				infomaniak.KeyAuthentication: map[string]interface{}{
					"type": "string",
					"enum": []interface{}{infomaniak.AuthAPIKey, infomaniak.AuthOAuth2},
				},
			},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"items", "itemCount", "recordCount", "node", "resource", "operation"},
		Properties: map[string]validation.Property{
			"items": {
				Type:        "array",
				Description: "Flattened output records of every input record",
			},
			"itemCount": {
				Type:        "integer",
				Description: "Number of output records",
			},
			"recordCount": {
				Type:        "integer",
				Description: "Number of input records executed",
			},
			"node": {
				Type:        "string",
				Description: "Node that executed the operation",
			},
			"resource": {
				Type:        "string",
				Description: "Resource of the operation",
			},
			"operation": {
				Type:        "string",
				Description: "Operation key",
			},
		},
		AdditionalProperties: false,
	}
}
