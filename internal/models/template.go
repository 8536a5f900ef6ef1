package models

import (
	"encoding/json"
	"errors"
)

// MetadataKey is the top-level key extraction tools use to attach provenance to a
// template. It is not part of the template schema.
const MetadataKey = "_metadata"

// Template is an inspection template, either hand-verified (the reference) or
// produced by an extraction model (the candidate).
type Template struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	PropertyIDs []int             `json:"property_ids,omitempty"`
	Versions    []TemplateVersion `json:"versions"`
	CreatedAt   *string           `json:"created_at,omitempty"`
	UpdatedAt   *string           `json:"updated_at,omitempty"`
}

// Root returns the structure of the first version, or nil when there are no
// versions. Only the first version is compared.
func (t *Template) Root() *Section {
	if t == nil || len(t.Versions) == 0 {
		return nil
	}
	return &t.Versions[0].Structure
}

type TemplateVersion struct {
	VersionID int     `json:"version_id"`
	Structure Section `json:"structure"`
}

// Section is a grouping node. A section that owns fields should have no child
// sections, but candidates break that rule and must still be readable.
type Section struct {
	Name        string      `json:"name"`
	DisplayType DisplayType `json:"display_type"`
	Sections    []Section   `json:"sections,omitempty"`
	Fields      []Field     `json:"fields,omitempty"`
}

func (s *Section) UnmarshalJSON(data []byte) error {
	type plain Section
	aux := struct {
		*plain
		Name *string `json:"name"`
	}{plain: (*plain)(s)}
	s.DisplayType = DisplayTypeUnspecified

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Name == nil {
		return errors.New("section is missing required property 'name'")
	}
	s.Name = *aux.Name
	return nil
}

// Field is a single inspection item.
type Field struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Mandatory   bool    `json:"mandatory"`

	RatingType RatingType `json:"rating_type"`
	Options    []string   `json:"options,omitempty"`

	NotesEnabled                    bool     `json:"notes_enabled"`
	NotesRequiredForAllOptions      bool     `json:"notes_required_for_all_options"`
	NotesRequiredForSelectedOptions []string `json:"notes_required_for_selected_options,omitempty"`

	AttachmentsEnabled                    bool     `json:"attachments_enabled"`
	AttachmentsRequiredForAllOptions      bool     `json:"attachments_required_for_all_options"`
	AttachmentsRequiredForSelectedOptions []string `json:"attachments_required_for_selected_options,omitempty"`

	CanCreateWorkOrder   bool                 `json:"can_create_work_order"`
	WorkOrderCategory    MaintenanceCategory  `json:"work_order_category"`
	WorkOrderSubCategory WorkOrderSubCategory `json:"work_order_sub_category"`
}

func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	aux := struct {
		*plain
		ID         *int        `json:"id"`
		Name       *string     `json:"name"`
		RatingType *RatingType `json:"rating_type"`
	}{plain: (*plain)(f)}
	f.WorkOrderCategory = CategoryUnspecified
	f.WorkOrderSubCategory = SubCategoryUnspecified

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.ID == nil:
		return errors.New("field is missing required property 'id'")
	case aux.Name == nil:
		return errors.New("field is missing required property 'name'")
	case aux.RatingType == nil:
		return errors.New("field is missing required property 'rating_type'")
	}

	f.ID = *aux.ID
	f.Name = *aux.Name
	f.RatingType = *aux.RatingType
	return nil
}

// Metadata is the provenance block extraction tools write under [MetadataKey].
type Metadata struct {
	Provider          string  `json:"provider,omitempty" mapstructure:"provider"`
	ModelID           string  `json:"model_id,omitempty" mapstructure:"model_id"`
	SupportingModelID string  `json:"supporting_model_id,omitempty" mapstructure:"supporting_model_id"`
	Cost              float64 `json:"cost,omitempty" mapstructure:"cost"`
	InputTokens       int     `json:"input_tokens,omitempty" mapstructure:"input_tokens"`
	OutputTokens      int     `json:"output_tokens,omitempty" mapstructure:"output_tokens"`
}
