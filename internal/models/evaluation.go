package models

// MatchType describes how a reference field was paired with a candidate field.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchMissing MatchType = "missing"
)

// EnrichmentStatus records which path produced the semantic scores of a run.
type EnrichmentStatus string

const (
	// EnrichmentNone means no judge was configured; deterministic scores were used.
	EnrichmentNone EnrichmentStatus = "none"
	// EnrichmentSemantic means the judge answered and its scores were applied.
	EnrichmentSemantic EnrichmentStatus = "semantic"
	// EnrichmentFallback means the judge failed and deterministic scores were kept.
	EnrichmentFallback EnrichmentStatus = "fallback"
)

// FieldConfigComparison holds the ten configuration sub-comparisons of a field pair.
type FieldConfigComparison struct {
	Mandatory                             bool    `json:"mandatory"`
	NotesEnabled                          bool    `json:"notes_enabled"`
	NotesRequiredForAllOptions            bool    `json:"notes_required_for_all_options"`
	NotesRequiredForSelectedOptions       float64 `json:"notes_required_for_selected_options"`
	AttachmentsEnabled                    bool    `json:"attachments_enabled"`
	AttachmentsRequiredForAllOptions      bool    `json:"attachments_required_for_all_options"`
	AttachmentsRequiredForSelectedOptions float64 `json:"attachments_required_for_selected_options"`
	CanCreateWorkOrder                    bool    `json:"can_create_work_order"`
	WorkOrderCategory                     bool    `json:"work_order_category"`
	WorkOrderSubCategory                  bool    `json:"work_order_sub_category"`
}

// FieldEvaluation compares one reference field to at most one candidate field.
type FieldEvaluation struct {
	SourceFieldID int       `json:"source_field_id"`
	ModelFieldID  *int      `json:"model_field_id"`
	SourceName    string    `json:"source_name"`
	ModelName     *string   `json:"model_name"`
	MatchType     MatchType `json:"match_type"`

	NameSimilarity    float64 `json:"name_similarity"`
	OptionsSimilarity float64 `json:"options_similarity"`

	RatingTypeMatch   bool    `json:"rating_type_match"`
	OptionsExactMatch float64 `json:"options_exact_match"`

	ConfigComparison *FieldConfigComparison `json:"config_comparison"`
	Reasoning        *string                `json:"reasoning,omitempty"`

	ConfigScore  float64 `json:"config_score"`
	OverallScore float64 `json:"overall_score"`
}

// SectionEvaluation aggregates the field evaluations of one reference section.
type SectionEvaluation struct {
	SourceSectionName     string  `json:"source_section_name"`
	ModelSectionName      *string `json:"model_section_name"`
	SectionNameSimilarity float64 `json:"section_name_similarity"`

	SourceFieldCount int  `json:"source_field_count"`
	ModelFieldCount  int  `json:"model_field_count"`
	FieldCountMatch  bool `json:"field_count_match"`

	MatchedFields int `json:"matched_fields"`
	MissingFields int `json:"missing_fields"`
	ExtraFields   int `json:"extra_fields"`

	Fields       []FieldEvaluation `json:"fields"`
	SectionScore float64           `json:"section_score"`
}

// Matched reports whether a candidate section was paired with this reference section.
func (s *SectionEvaluation) Matched() bool {
	return s.ModelSectionName != nil
}

// ValidationError is one schema violation found in a candidate.
type ValidationError struct {
	Path    string  `json:"path"`
	Message string  `json:"message"`
	Value   *string `json:"value"`
}

type SchemaValidationResult struct {
	IsValid         bool              `json:"is_valid"`
	Errors          []ValidationError `json:"errors"`
	ErrorCount      int               `json:"error_count"`
	ComplianceScore float64           `json:"compliance_score"`
}

// AggregateScores are the document-level dimensions of a run.
type AggregateScores struct {
	SchemaCompliance   float64 `json:"schema_compliance"`
	StructuralAccuracy float64 `json:"structural_accuracy"`
	SemanticAccuracy   float64 `json:"semantic_accuracy"`
	ConfigAccuracy     float64 `json:"config_accuracy"`
	OverallScore       float64 `json:"overall_score"`
}

// ModelMetadata identifies the model that produced a candidate.
type ModelMetadata struct {
	Provider          string  `json:"provider"`
	ModelID           string  `json:"model_id"`
	SupportingModelID *string `json:"supporting_model_id"`
}

// Key is the cache key of the model, "{provider}:{model_id}".
func (m ModelMetadata) Key() string {
	return m.Provider + ":" + m.ModelID
}

// Usage is the cost of producing a candidate, as reported by the extraction tool.
type Usage struct {
	Cost         float64 `json:"cost"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
}

// EvaluationResult is one full run for one (reference, candidate) pair.
type EvaluationResult struct {
	RunID            string                 `json:"run_id"`
	SourceFile       string                 `json:"source_file"`
	ModelFile        string                 `json:"model_file"`
	Metadata         ModelMetadata          `json:"metadata"`
	Usage            Usage                  `json:"usage"`
	SchemaValidation SchemaValidationResult `json:"schema_validation"`

	TotalSourceSections int                 `json:"total_source_sections"`
	TotalModelSections  int                 `json:"total_model_sections"`
	Sections            []SectionEvaluation `json:"sections"`

	Scores     AggregateScores  `json:"scores"`
	Enrichment EnrichmentStatus `json:"enrichment"`
	Assessment string           `json:"overall_assessment,omitempty"`

	Timestamp            string `json:"timestamp"`
	EvaluationDurationMs int64  `json:"evaluation_duration_ms"`
}

// FailedEvaluation records a candidate that could not be evaluated at all.
type FailedEvaluation struct {
	ModelFile string `json:"model_file"`
	Error     string `json:"error"`
}

// ComparisonReport ranks every candidate evaluated against one reference.
type ComparisonReport struct {
	SourceFile   string             `json:"source_file"`
	Evaluations  []EvaluationResult `json:"evaluations"`
	Failed       []FailedEvaluation `json:"failed,omitempty"`
	RankedModels []string           `json:"ranked_models"`
	BestModel    *string            `json:"best_model"`
	BestScore    *float64           `json:"best_score"`
	AverageScore *float64           `json:"average_score"`
	Timestamp    string             `json:"timestamp"`
}
