package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// compileSchema prepares a parameter schema for validation. A nil schema
// accepts any argument object.
func compileSchema(params map[string]any) (*gojsonschema.Schema, error) {
	if len(params) == 0 {
		return nil, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(params))
	if err != nil {
		return nil, fmt.Errorf("invalid parameter schema: %w", err)
	}
	return schema, nil
}

// validateArguments checks args against schema.
func validateArguments(schema *gojsonschema.Schema, args map[string]any) error {
	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}
