package analyze

// VariableTypes lists the variable type tags the model is asked to use.
var VariableTypes = []string{"text", "number", "currency", "date", "email", "phone", "address", "percentage", "boolean"}

// ImprovementTypes lists the improvement type tags the model is asked to use.
var ImprovementTypes = []string{"grammar", "spelling", "clarity", "professional_tone", "conciseness", "remove_nonsense", "typo_fix"}

// ResponseSchema is the JSON schema for the analysis response. Every field is
// optional; absent fields take defaults when the result is decoded. Scores
// may arrive as numeric strings.
var ResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "template_analysis",
		"strict": false,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template_type": map[string]any{
					"type":        "string",
					"description": "quotation, invoice, contract, letter, proposal or other",
				},
				"document_category": map[string]any{
					"type":        "string",
					"description": "Brief description of document purpose",
				},
				"confidence_score": map[string]any{
					"type": []string{"number", "string"},
				},
				"placeholder_format": map[string]any{
					"type": "string",
				},
				"summary": map[string]any{
					"type": "string",
				},
				"variables": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":                  map[string]any{"type": "string"},
							"original_text":         map[string]any{"type": "string"},
							"suggested_placeholder": map[string]any{"type": "string"},
							"description":           map[string]any{"type": "string"},
							"type":                  map[string]any{"type": "string"},
							"context":               map[string]any{"type": "string"},
							"confidence":            map[string]any{"type": []string{"number", "string"}},
						},
					},
				},
				"text_improvements": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"location":         map[string]any{"type": "string"},
							"original_text":    map[string]any{"type": "string"},
							"improved_text":    map[string]any{"type": "string"},
							"improvement_type": map[string]any{"type": "string"},
						},
					},
				},
				"suggestions": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	},
}
