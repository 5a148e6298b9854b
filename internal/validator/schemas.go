package validator

// stringMap is an object whose values are all strings.
var stringMap = map[string]any{
	"type":                 "object",
	"additionalProperties": map[string]any{"type": "string"},
}

// writerDataSchema describes the report_data payload of a report request.
var writerDataSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"title":   "Writer data",
	"type":    "object",
	"required": []string{
		"writer_placeholders",
		"writer_variables",
		"writer_images",
		"writer_tables",
	},
	"properties": map[string]any{
		"writer_placeholders": map[string]any{"type": "array", "items": stringMap},
		"writer_variables":    map[string]any{"type": "array", "items": stringMap},
		"writer_images":       stringMap,
		"writer_tables": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"table_name", "content"},
				"properties": map[string]any{
					"table_name": map[string]any{"type": "string", "minLength": 1},
					"content":    map[string]any{"type": "array", "items": stringMap},
					"footer":     stringMap,
				},
			},
		},
	},
}

// issueRequestSchema describes the body of a report request.
var issueRequestSchema = map[string]any{
	"$schema":  "https://json-schema.org/draft/2020-12/schema",
	"title":    "Report request",
	"type":     "object",
	"required": []string{"report_output_format", "report_data"},
	"properties": map[string]any{
		"report_output_format": map[string]any{
			"type": "string",
			"enum": []string{"PDF", "OPENOFFICE", "PDF+OPENOFFICE"},
		},
		"report_data":  map[string]any{"type": "object"},
		"notify_email": map[string]any{"type": "string", "format": "email"},
	},
}
