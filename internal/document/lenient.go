package document

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spboyer/fidelity/internal/models"
)

// decodeLenient builds a template from a candidate's object graph node by node.
// Non-object nodes are skipped. Fields that fail the typed decode are kept with
// whatever properties did decode, so they can still be matched; both cases are
// described in dropped.
func decodeLenient(body map[string]any, dropped *[]string) *models.Template {
	tmpl := &models.Template{
		ID:   intValue(body["id"]),
		Name: stringValue(body["name"]),
	}

	versions, _ := body["versions"].([]any)
	for i, v := range versions {
		vm, ok := v.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("versions.%d: not an object", i))
			continue
		}
		tv := models.TemplateVersion{VersionID: intValue(vm["version_id"])}
		if sm, ok := vm["structure"].(map[string]any); ok {
			tv.Structure = decodeSection(sm, fmt.Sprintf("versions.%d.structure", i), dropped)
		}
		tmpl.Versions = append(tmpl.Versions, tv)
	}
	return tmpl
}

func decodeSection(m map[string]any, path string, dropped *[]string) models.Section {
	s := models.Section{
		Name:        stringValue(m["name"]),
		DisplayType: models.DisplayTypeUnspecified,
	}

	if dt, ok := m["display_type"].(string); ok {
		if slices.Contains(models.DisplayTypes, models.DisplayType(dt)) {
			s.DisplayType = models.DisplayType(dt)
		}
	}

	children, _ := m["sections"].([]any)
	for i, c := range children {
		cm, ok := c.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("%s.sections.%d: not an object", path, i))
			continue
		}
		s.Sections = append(s.Sections, decodeSection(cm, fmt.Sprintf("%s.sections.%d", path, i), dropped))
	}

	fields, _ := m["fields"].([]any)
	for i, f := range fields {
		fm, ok := f.(map[string]any)
		if !ok {
			*dropped = append(*dropped, fmt.Sprintf("%s.fields.%d: not an object", path, i))
			continue
		}
		field, err := decodeField(fm)
		if err != nil {
			*dropped = append(*dropped, fmt.Sprintf("%s.fields.%d: decoded partially: %v", path, i, err))
		}
		s.Fields = append(s.Fields, field)
	}
	return s
}

// decodeField decodes a field strictly and, when that fails, property by
// property. An enum that is not a legal value is kept verbatim so it never
// compares equal to a reference value; a missing one is left blank.
func decodeField(m map[string]any) (models.Field, error) {
	var field models.Field
	data, err := json.Marshal(m)
	if err == nil {
		if err = json.Unmarshal(data, &field); err == nil {
			return field, nil
		}
	}

	field = models.Field{
		ID:                                    intValue(m["id"]),
		Name:                                  stringValue(m["name"]),
		Mandatory:                             boolValue(m["mandatory"]),
		RatingType:                            models.RatingType(stringValue(m["rating_type"])),
		Options:                               stringsValue(m["options"]),
		NotesEnabled:                          boolValue(m["notes_enabled"]),
		NotesRequiredForAllOptions:            boolValue(m["notes_required_for_all_options"]),
		NotesRequiredForSelectedOptions:       stringsValue(m["notes_required_for_selected_options"]),
		AttachmentsEnabled:                    boolValue(m["attachments_enabled"]),
		AttachmentsRequiredForAllOptions:      boolValue(m["attachments_required_for_all_options"]),
		AttachmentsRequiredForSelectedOptions: stringsValue(m["attachments_required_for_selected_options"]),
		CanCreateWorkOrder:                    boolValue(m["can_create_work_order"]),
		WorkOrderCategory:                     models.CategoryUnspecified,
		WorkOrderSubCategory:                  models.SubCategoryUnspecified,
	}
	if d, ok := m["description"].(string); ok {
		field.Description = &d
	}
	if c, ok := m["work_order_category"].(string); ok {
		field.WorkOrderCategory = models.MaintenanceCategory(c)
	}
	if c, ok := m["work_order_sub_category"].(string); ok {
		field.WorkOrderSubCategory = models.WorkOrderSubCategory(c)
	}
	return field, err
}

func intValue(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

// stringsValue keeps the string elements of a list.
func stringsValue(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
