package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const productSchema = `{
	"type": "object",
	"required": ["id", "name", "price"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0},
		"category": {"type": "string"},
		"imageUrls": {
			"type": "array",
			"items": {"type": "string", "format": "uri"}
		},
		"tags": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"additionalProperties": false
}`

// ProductValidator validates catalog entries submitted through the admin
// bulk import endpoint before they touch the database.
type ProductValidator struct {
	schema *gojsonschema.Schema
}

func NewProductValidator() (*ProductValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(productSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile product schema: %w", err)
	}
	return &ProductValidator{schema: schema}, nil
}

// Validate checks one JSON document against the product schema and returns a
// single aggregated error when it does not conform.
func (v *ProductValidator) Validate(document []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid product: %s", strings.Join(problems, "; "))
}
