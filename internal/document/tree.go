package document

import (
	"github.com/spboyer/fidelity/internal/models"
)

// Grouping is a section that directly owns fields, lifted out of the tree.
type Grouping struct {
	Name        string
	DisplayType models.DisplayType
	Fields      []models.Field
}

// Flatten walks root in pre-order and returns every section that owns at least
// one field. Sections without fields contribute nothing but are still descended
// into, so a candidate that puts fields on a parent and its children yields both.
func Flatten(root *models.Section) []Grouping {
	if root == nil {
		return nil
	}
	var out []Grouping
	flatten(root, &out)
	return out
}

func flatten(s *models.Section, out *[]Grouping) {
	if len(s.Fields) > 0 {
		*out = append(*out, Grouping{
			Name:        s.Name,
			DisplayType: s.DisplayType,
			Fields:      s.Fields,
		})
	}
	for i := range s.Sections {
		flatten(&s.Sections[i], out)
	}
}

// CountFields returns the number of fields anywhere under root.
func CountFields(root *models.Section) int {
	if root == nil {
		return 0
	}
	n := len(root.Fields)
	for i := range root.Sections {
		n += CountFields(&root.Sections[i])
	}
	return n
}

// CountSections returns the number of section nodes under root, root included.
func CountSections(root *models.Section) int {
	if root == nil {
		return 0
	}
	n := 1
	for i := range root.Sections {
		n += CountSections(&root.Sections[i])
	}
	return n
}

// CondensedField is the part of a field the semantic judge sees.
type CondensedField struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type CondensedSection struct {
	Name   string           `json:"name"`
	Fields []CondensedField `json:"fields"`
}

// Condense projects groupings to names and options only, which keeps the judge
// prompt small.
func Condense(groupings []Grouping) []CondensedSection {
	out := make([]CondensedSection, 0, len(groupings))
	for _, g := range groupings {
		cs := CondensedSection{Name: g.Name, Fields: make([]CondensedField, 0, len(g.Fields))}
		for _, f := range g.Fields {
			opts := f.Options
			if opts == nil {
				opts = []string{}
			}
			cs.Fields = append(cs.Fields, CondensedField{ID: f.ID, Name: f.Name, Options: opts})
		}
		out = append(out, cs)
	}
	return out
}

// Merge combines partial section trees produced from consecutive chunks of the
// same source document. Child sections with the same non-empty name are merged
// recursively, unseen children are appended, and fields are appended without
// de-duplication. The first part supplies the name and display type. Field IDs
// are renumbered from 1. Inputs are not modified.
func Merge(parts ...models.Section) models.Section {
	if len(parts) == 0 {
		return models.Section{}
	}

	merged := clone(parts[0])
	for _, p := range parts[1:] {
		merged = mergeInto(merged, p)
	}

	out, _ := RenumberFields(merged, 1)
	return out
}

func mergeInto(base, incoming models.Section) models.Section {
	byName := make(map[string]int, len(base.Sections))
	for i, s := range base.Sections {
		if s.Name != "" {
			byName[s.Name] = i
		}
	}

	for _, inc := range incoming.Sections {
		if idx, ok := byName[inc.Name]; ok && inc.Name != "" {
			base.Sections[idx] = mergeInto(base.Sections[idx], inc)
			continue
		}
		base.Sections = append(base.Sections, clone(inc))
		if inc.Name != "" {
			byName[inc.Name] = len(base.Sections) - 1
		}
	}

	for _, f := range incoming.Fields {
		base.Fields = append(base.Fields, cloneField(f))
	}
	return base
}

// RenumberFields returns a copy of root whose field IDs run sequentially from
// start in pre-order (a section's own fields before its children's), along with
// the next unused ID.
func RenumberFields(root models.Section, start int) (models.Section, int) {
	out := clone(root)
	next := renumber(&out, start)
	return out, next
}

func renumber(s *models.Section, next int) int {
	for i := range s.Fields {
		s.Fields[i].ID = next
		next++
	}
	for i := range s.Sections {
		next = renumber(&s.Sections[i], next)
	}
	return next
}

func clone(s models.Section) models.Section {
	out := s
	if s.Fields != nil {
		out.Fields = make([]models.Field, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = cloneField(f)
		}
	}
	if s.Sections != nil {
		out.Sections = make([]models.Section, len(s.Sections))
		for i, c := range s.Sections {
			out.Sections[i] = clone(c)
		}
	}
	return out
}

func cloneField(f models.Field) models.Field {
	out := f
	if f.Description != nil {
		d := *f.Description
		out.Description = &d
	}
	out.Options = cloneStrings(f.Options)
	out.NotesRequiredForSelectedOptions = cloneStrings(f.NotesRequiredForSelectedOptions)
	out.AttachmentsRequiredForSelectedOptions = cloneStrings(f.AttachmentsRequiredForSelectedOptions)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
