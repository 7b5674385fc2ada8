package ticketdetails

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const detailsSchema = `{
	"type": "object",
	"properties": {
		"short_description": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1},
		"impact": {"type": "string", "enum": ["1", "2", "3"]},
		"urgency": {"type": "string", "enum": ["1", "2", "3"]}
	},
	"required": ["short_description", "description", "impact", "urgency"]
}`

var schemaLoader = gojsonschema.NewStringLoader(detailsSchema)

// validateDetails checks an extracted field set against the draft schema.
func validateDetails(jsonDocument string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(jsonDocument))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		messages := ""
		for _, desc := range result.Errors() {
			if messages != "" {
				messages += "; "
			}
			messages += desc.String()
		}
		return fmt.Errorf("invalid ticket details: %s", messages)
	}

	return nil
}
