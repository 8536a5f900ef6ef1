// Package validation checks candidate templates against the embedded template
// schema and turns every violation into a scored [models.ValidationError].
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxValueLen caps the stringified offending value attached to an error.
const maxValueLen = 100

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// templateSchema is the compiled JSON Schema for inspection templates.
var templateSchema = mustCompileSchema(schemas.TemplateSchemaJSON, "template.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateDocument validates a decoded JSON document. The metadata key is
// ignored. Every violation is reported; nothing is returned as an error.
func ValidateDocument(raw any) models.SchemaValidationResult {
	obj, isObject := raw.(map[string]any)
	if isObject {
		raw = document.StripMetadata(obj)
	}

	errs := validateAgainstSchema(templateSchema, raw)
	if len(errs) == 0 {
		return models.SchemaValidationResult{IsValid: true, Errors: []models.ValidationError{}, ComplianceScore: 1}
	}

	compliance := 0.0
	if isObject {
		total := max(countFields(raw), 1)
		compliance = max(0, 1-float64(len(errs))/float64(total))
	}

	return models.SchemaValidationResult{
		Errors:          errs,
		ErrorCount:      len(errs),
		ComplianceScore: compliance,
	}
}

// ValidateBytes decodes data and validates it. Invalid JSON is reported as a
// single error at path "json" with zero compliance.
func ValidateBytes(data []byte) models.SchemaValidationResult {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fileLevel("json", fmt.Sprintf("Invalid JSON: %v", err))
	}
	return ValidateDocument(raw)
}

// ValidateFile reads and validates the document at path. A missing or
// unreadable file is reported at path "file" with zero compliance.
func ValidateFile(path string) models.SchemaValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileLevel("file", fmt.Sprintf("File not found: %s", path))
		}
		return fileLevel("file", fmt.Sprintf("Unreadable file: %v", err))
	}
	return ValidateBytes(data)
}

func fileLevel(path, msg string) models.SchemaValidationResult {
	return models.SchemaValidationResult{
		Errors:     []models.ValidationError{{Path: path, Message: msg}},
		ErrorCount: 1,
	}
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []models.ValidationError {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []models.ValidationError{{Path: "root", Message: fmt.Sprintf("schema: %v", err)}}
	}

	var errs []models.ValidationError
	collectSchemaErrors(ve, instance, &errs)
	slices.SortStableFunc(errs, func(a, b models.ValidationError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return errs
}

// collectSchemaErrors flattens the leaf causes of ve. Missing and unexpected
// properties are reported once per property, at the property's own path.
func collectSchemaErrors(ve *jsonschema.ValidationError, instance any, errs *[]models.ValidationError) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collectSchemaErrors(c, instance, errs)
		}
		return
	}

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			appendSchemaError(errs, instance, append(slices.Clone(ve.InstanceLocation), name), &kind.Required{Missing: []string{name}})
		}
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			appendSchemaError(errs, instance, append(slices.Clone(ve.InstanceLocation), name), &kind.AdditionalProperties{Properties: []string{name}})
		}
	default:
		appendSchemaError(errs, instance, ve.InstanceLocation, ve.ErrorKind)
	}
}

func appendSchemaError(errs *[]models.ValidationError, instance any, loc []string, k jsonschema.ErrorKind) {
	path := "root"
	if len(loc) > 0 {
		path = strings.Join(loc, ".")
	}
	*errs = append(*errs, models.ValidationError{
		Path:    path,
		Message: k.LocalizedString(defaultPrinter),
		Value:   describe(valueAt(instance, loc)),
	})
}

// valueAt resolves a JSON pointer given as tokens.
func valueAt(v any, loc []string) any {
	for _, tok := range loc {
		switch node := v.(type) {
		case map[string]any:
			v = node[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			v = node[i]
		default:
			return nil
		}
	}
	return v
}

// describe renders an offending value for humans. Objects and arrays are JSON
// with an ellipsis when cut; scalars are cut silently.
func describe(v any) *string {
	if v == nil {
		return nil
	}

	var s string
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			s = "<unable to serialize>"
			break
		}
		s = string(data)
		if r := []rune(s); len(r) > maxValueLen {
			s = string(r[:maxValueLen]) + "..."
		}
	default:
		s = fmt.Sprint(v)
		if r := []rune(s); len(r) > maxValueLen {
			s = string(r[:maxValueLen])
		}
	}
	return &s
}

// countFields counts fields in every version of a raw document.
func countFields(raw any) int {
	obj, _ := raw.(map[string]any)
	versions, _ := obj["versions"].([]any)

	n := 0
	for _, v := range versions {
		vm, _ := v.(map[string]any)
		n += countSectionFields(vm["structure"])
	}
	return n
}

func countSectionFields(s any) int {
	sm, ok := s.(map[string]any)
	if !ok {
		return 0
	}
	fields, _ := sm["fields"].([]any)
	n := len(fields)
	children, _ := sm["sections"].([]any)
	for _, c := range children {
		n += countSectionFields(c)
	}
	return n
}

// FormatErrors renders at most limit errors as a numbered block, for inclusion
// in a judge prompt.
func FormatErrors(result models.SchemaValidationResult, limit int) string {
	if result.IsValid {
		return "No schema validation errors found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d schema validation errors:", result.ErrorCount)
	for i, e := range result.Errors {
		if i >= limit {
			break
		}
		fmt.Fprintf(&sb, "\n  %d. Path: %s\n     Error: %s", i+1, e.Path, e.Message)
		if e.Value != nil && *e.Value != "" {
			fmt.Fprintf(&sb, "\n     Value: %s", *e.Value)
		}
	}
	if result.ErrorCount > limit {
		fmt.Fprintf(&sb, "\n  ... and %d more errors", result.ErrorCount-limit)
	}
	return sb.String()
}
