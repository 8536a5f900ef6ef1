package document

import (
	"strings"
)

// enumPrefixes maps every enum-valued property to the prefix its values carry.
var enumPrefixes = map[string]string{
	"rating_type":             "RATING_TYPE_",
	"display_type":            "SECTION_DISPLAY_TYPE_",
	"work_order_category":     "MAINTENANCE_CATEGORY_",
	"work_order_sub_category": "WORK_ORDER_SUB_CATEGORY_",
}

// Sanitize returns a copy of a decoded JSON graph with enum spellings repaired:
// values are upper-cased, hyphens and spaces become underscores, and the enum
// prefix is added when a model emitted the bare name ("radio", "field-set").
// Values that are still unknown after repair are left for the parser to reject.
// The input is not modified.
func Sanitize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if prefix, ok := enumPrefixes[k]; ok {
				if s, isString := child.(string); isString {
					out[k] = fixEnum(s, prefix)
					continue
				}
			}
			out[k] = Sanitize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Sanitize(child)
		}
		return out
	default:
		return val
	}
}

func fixEnum(s, prefix string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = strings.ToUpper(s)
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	if !strings.HasPrefix(s, prefix) {
		s = prefix + s
	}
	return s
}
