// Package schemas embeds the JSON Schemas used for validation.
package schemas

import _ "embed"

// TemplateSchemaJSON is the schema every inspection template must satisfy.
//
//go:embed template.schema.json
var TemplateSchemaJSON string
