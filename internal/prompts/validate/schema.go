package validate

// ResponseSchema is the JSON schema for a validation verdict.
var ResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "template_validation",
		"strict": false,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"is_valid":      map[string]any{"type": "boolean"},
				"quality_score": map[string]any{"type": []string{"number", "string"}},
				"issues": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"suggestions": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"missed_variables": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []string{"is_valid"},
		},
	},
}
