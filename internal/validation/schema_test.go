package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/schemas"
	"github.com/stretchr/testify/require"
)

const validTemplateJSON = `{
  "_metadata": {"provider": "openai", "model_id": "gpt-4o"},
  "id": 1,
  "name": "Move-in",
  "description": null,
  "versions": [{
    "version_id": 1,
    "structure": {
      "name": "root",
      "sections": [{
        "name": "Kitchen",
        "display_type": "SECTION_DISPLAY_TYPE_FIELD_SET",
        "fields": [
          {"id": 1, "name": "Sink", "rating_type": "RATING_TYPE_RADIO", "options": ["Pass", "Fail"]},
          {"id": 2, "name": "Stove", "rating_type": "RATING_TYPE_CHECKBOX", "mandatory": true},
          {"id": 3, "name": "Floor", "rating_type": "RATING_TYPE_SELECT",
           "work_order_category": "MAINTENANCE_CATEGORY_CLEANING"},
          {"id": 4, "name": "Walls", "rating_type": "RATING_TYPE_SELECT"}
        ]
      }]
    }
  }]
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidateDocument_Valid(t *testing.T) {
	res := ValidateDocument(decode(t, validTemplateJSON))
	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.Equal(t, 0, res.ErrorCount)
	require.Equal(t, 1.0, res.ComplianceScore)
}

func TestValidateDocument_CollectsEveryViolation(t *testing.T) {
	doc := decode(t, validTemplateJSON).(map[string]any)
	fields := doc["versions"].([]any)[0].(map[string]any)["structure"].(map[string]any)["sections"].([]any)[0].(map[string]any)["fields"].([]any)
	fields[0].(map[string]any)["rating_type"] = "RATING_TYPE_SLIDER"
	delete(fields[1].(map[string]any), "name")

	res := ValidateDocument(doc)
	require.False(t, res.IsValid)
	require.Equal(t, 2, res.ErrorCount)
	require.Len(t, res.Errors, 2)

	paths := []string{res.Errors[0].Path, res.Errors[1].Path}
	require.Contains(t, paths, "versions.0.structure.sections.0.fields.0.rating_type")
	require.Contains(t, paths, "versions.0.structure.sections.0.fields.1.name")

	for _, e := range res.Errors {
		if e.Path == "versions.0.structure.sections.0.fields.0.rating_type" {
			require.NotNil(t, e.Value)
			require.Equal(t, "RATING_TYPE_SLIDER", *e.Value)
		}
		require.NotEmpty(t, e.Message)
	}

	// two errors over four fields
	require.InDelta(t, 0.5, res.ComplianceScore, 1e-9)
}

func TestValidateDocument_ExtraKeysForbidden(t *testing.T) {
	doc := decode(t, `{"id": 1, "name": "x", "owner": "someone", "versions": []}`)
	res := ValidateDocument(doc)
	require.False(t, res.IsValid)
	require.Equal(t, 1, res.ErrorCount)
	require.Equal(t, "owner", res.Errors[0].Path)
	require.Contains(t, res.Errors[0].Message, "owner")
	require.Equal(t, "someone", *res.Errors[0].Value)
	// no fields, so the denominator is 1
	require.Equal(t, 0.0, res.ComplianceScore)
}

func TestValidateDocument_OneErrorPerProperty(t *testing.T) {
	tests := []struct {
		name       string
		field      map[string]any
		wantPaths  []string
		compliance float64
	}{
		{
			name:  "missing required",
			field: map[string]any{"mandatory": true},
			wantPaths: []string{
				"versions.0.structure.sections.0.fields.0.id",
				"versions.0.structure.sections.0.fields.0.name",
				"versions.0.structure.sections.0.fields.0.rating_type",
			},
			compliance: 0.25,
		},
		{
			name:  "unexpected keys",
			field: map[string]any{"id": 1.0, "name": "Sink", "rating_type": "RATING_TYPE_RADIO", "foo": 1.0, "bar": "x"},
			wantPaths: []string{
				"versions.0.structure.sections.0.fields.0.bar",
				"versions.0.structure.sections.0.fields.0.foo",
			},
			compliance: 0.5,
		},
		{
			name:  "missing and unexpected together",
			field: map[string]any{"mandatory": true, "foo": 1.0, "bar": "x"},
			wantPaths: []string{
				"versions.0.structure.sections.0.fields.0.bar",
				"versions.0.structure.sections.0.fields.0.foo",
				"versions.0.structure.sections.0.fields.0.id",
				"versions.0.structure.sections.0.fields.0.name",
				"versions.0.structure.sections.0.fields.0.rating_type",
			},
			compliance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, validTemplateJSON).(map[string]any)
			fields := doc["versions"].([]any)[0].(map[string]any)["structure"].(map[string]any)["sections"].([]any)[0].(map[string]any)["fields"].([]any)
			fields[0] = tt.field

			res := ValidateDocument(doc)
			require.Equal(t, len(tt.wantPaths), res.ErrorCount)

			var paths []string
			for _, e := range res.Errors {
				paths = append(paths, e.Path)
				name := e.Path[strings.LastIndex(e.Path, ".")+1:]
				require.Contains(t, e.Message, name)
			}
			require.ElementsMatch(t, tt.wantPaths, paths)
			require.InDelta(t, tt.compliance, res.ComplianceScore, 1e-9)
		})
	}
}

func TestValidateDocument_ComplianceFloorsAtZero(t *testing.T) {
	doc := decode(t, `{"id": "one", "name": 2, "versions": [{"version_id": 1, "structure": {"name": "root",
		"fields": [{"id": 1, "name": "a", "rating_type": "bad"}]}}]}`)
	res := ValidateDocument(doc)
	require.Equal(t, 3, res.ErrorCount)
	require.Equal(t, 0.0, res.ComplianceScore)
}

func TestValidateDocument_NotAnObject(t *testing.T) {
	res := ValidateDocument([]any{1.0, 2.0})
	require.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	require.Equal(t, 0.0, res.ComplianceScore)
}

func TestValidateDocument_LongValuesAreCapped(t *testing.T) {
	long := strings.Repeat("x", 150)
	doc := decode(t, `{"id": 1, "name": "x", "versions": [{"version_id": 1, "structure": {"name": "root",
		"fields": [{"id": 1, "name": "a", "rating_type": "`+long+`"}]}}]}`)
	res := ValidateDocument(doc)
	require.Equal(t, 1, res.ErrorCount)
	require.NotNil(t, res.Errors[0].Value)
	require.Len(t, *res.Errors[0].Value, maxValueLen)

	obj := map[string]any{"options": []any{long}}
	v := describe(obj)
	require.NotNil(t, v)
	require.True(t, strings.HasSuffix(*v, "..."))
	require.Len(t, *v, maxValueLen+3)
}

func TestValidateBytes_InvalidJSON(t *testing.T) {
	res := ValidateBytes([]byte(`{"id": `))
	require.False(t, res.IsValid)
	require.Equal(t, 1, res.ErrorCount)
	require.Equal(t, "json", res.Errors[0].Path)
	require.True(t, strings.HasPrefix(res.Errors[0].Message, "Invalid JSON: "))
	require.Equal(t, 0.0, res.ComplianceScore)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidate.json")
	require.NoError(t, os.WriteFile(path, []byte(validTemplateJSON), 0644))

	res := ValidateFile(path)
	require.True(t, res.IsValid)

	missing := ValidateFile(filepath.Join(dir, "nope.json"))
	require.False(t, missing.IsValid)
	require.Equal(t, "file", missing.Errors[0].Path)
	require.Contains(t, missing.Errors[0].Message, "File not found")
	require.Equal(t, 0.0, missing.ComplianceScore)
}

func TestFormatErrors(t *testing.T) {
	require.Equal(t, "No schema validation errors found.", FormatErrors(models.SchemaValidationResult{IsValid: true}, 20))

	val := "RATING_TYPE_SLIDER"
	res := models.SchemaValidationResult{ErrorCount: 25}
	for range 25 {
		res.Errors = append(res.Errors, models.ValidationError{Path: "a.b", Message: "bad", Value: &val})
	}

	out := FormatErrors(res, 20)
	require.True(t, strings.HasPrefix(out, "Found 25 schema validation errors:"))
	require.Contains(t, out, "  20. Path: a.b")
	require.NotContains(t, out, "21. Path")
	require.Contains(t, out, "Value: RATING_TYPE_SLIDER")
	require.True(t, strings.HasSuffix(out, "... and 5 more errors"))
}

// The schema's enums must stay in step with the Go enums.
func TestTemplateSchema_EnumsMatchModels(t *testing.T) {
	var schema struct {
		Defs map[string]struct {
			Properties map[string]struct {
				Enum []string `json:"enum"`
			} `json:"properties"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal([]byte(schemas.TemplateSchemaJSON), &schema))

	field := schema.Defs["field"].Properties
	require.ElementsMatch(t, models.EnumValues(models.RatingTypes), field["rating_type"].Enum)
	require.ElementsMatch(t, models.EnumValues(models.MaintenanceCategories), field["work_order_category"].Enum)
	require.ElementsMatch(t, models.EnumValues(models.WorkOrderSubCategories), field["work_order_sub_category"].Enum)
	require.ElementsMatch(t, models.EnumValues(models.DisplayTypes), schema.Defs["section"].Properties["display_type"].Enum)
}
