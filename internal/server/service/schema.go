package service

import (
	"time"

	"github.com/xeipuuv/gojsonschema"

	"fundingintake/internal/shared/models"
)

// applicationSchema builds the JSON schema of a submittable application from
// the field registry. Expiration years depend on now.
func applicationSchema(now time.Time) map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(models.Fields)+1)
	for _, f := range models.Fields {
		p := map[string]any{
			"type":      "string",
			"minLength": 1,
			"pattern":   `\S`,
		}
		if f.MaxLength > 0 {
			p["maxLength"] = f.MaxLength
		}
		if f.Enumerated() {
			p["enum"] = f.Domain(now)
		}
		props[f.Name] = p
		required = append(required, f.Name)
	}
	props[models.ConsentField] = map[string]any{
		"type": "boolean",
		"enum": []any{true},
	}
	required = append(required, models.ConsentField)

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// validateDocument checks a decoded request body against the application
// schema and returns one message per problem.
func validateDocument(doc any, now time.Time) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(applicationSchema(now)),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.Field() + ": " + desc.Description()
	}
	return problems, nil
}
