// Package judge asks a language model to score how closely candidate section
// and field names mean the same thing as the reference ones, and folds those
// scores back into deterministic evaluations.
package judge

import (
	"context"
	"log/slog"

	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
)

const (
	fallbackReasoning  = "Fallback: using deterministic similarity"
	fallbackAssessment = "Fallback evaluation using deterministic comparison"
)

// Judge scores the semantic similarity of a candidate to a reference.
type Judge interface {
	Evaluate(ctx context.Context, req *Request) (*Response, error)
}

// Request is everything a judge sees: names and options of both templates and
// the candidate's schema problems.
type Request struct {
	Reference []document.CondensedSection
	Candidate []document.CondensedSection
	Schema    models.SchemaValidationResult
}

type Response struct {
	Sections          []SectionJudgement `json:"sections" mapstructure:"sections"`
	OverallAssessment string             `json:"overall_assessment" mapstructure:"overall_assessment"`
}

type SectionJudgement struct {
	SourceSectionName string           `json:"source_section_name" mapstructure:"source_section_name"`
	ModelSectionName  *string          `json:"model_section_name" mapstructure:"model_section_name"`
	NameSimilarity    float64          `json:"name_similarity" mapstructure:"name_similarity"`
	Fields            []FieldJudgement `json:"fields" mapstructure:"fields"`
}

type FieldJudgement struct {
	SourceFieldID     int     `json:"source_field_id" mapstructure:"source_field_id"`
	ModelFieldID      *int    `json:"model_field_id" mapstructure:"model_field_id"`
	NameSimilarity    float64 `json:"name_similarity" mapstructure:"name_similarity"`
	OptionsSimilarity float64 `json:"options_similarity" mapstructure:"options_similarity"`
	Reasoning         string  `json:"reasoning" mapstructure:"reasoning"`
}

// clamp forces every score into [0, 1].
func (r *Response) clamp() {
	for i := range r.Sections {
		s := &r.Sections[i]
		s.NameSimilarity = unit(s.NameSimilarity)
		for j := range s.Fields {
			s.Fields[j].NameSimilarity = unit(s.Fields[j].NameSimilarity)
			s.Fields[j].OptionsSimilarity = unit(s.Fields[j].OptionsSimilarity)
		}
	}
}

func unit(x float64) float64 {
	return max(0, min(1, x))
}

// NewRequest builds the judge's view of a pair of templates.
func NewRequest(ref, cand *models.Template, schema models.SchemaValidationResult) *Request {
	return &Request{
		Reference: document.Condense(document.Flatten(ref.Root())),
		Candidate: document.Condense(document.Flatten(cand.Root())),
		Schema:    schema,
	}
}

// Fallback restates the deterministic scores already in sections as a judge
// response.
func Fallback(sections []models.SectionEvaluation) *Response {
	resp := &Response{
		Sections:          make([]SectionJudgement, 0, len(sections)),
		OverallAssessment: fallbackAssessment,
	}
	for _, s := range sections {
		sj := SectionJudgement{
			SourceSectionName: s.SourceSectionName,
			ModelSectionName:  s.ModelSectionName,
			NameSimilarity:    s.SectionNameSimilarity,
			Fields:            make([]FieldJudgement, 0, len(s.Fields)),
		}
		for _, f := range s.Fields {
			sj.Fields = append(sj.Fields, FieldJudgement{
				SourceFieldID:     f.SourceFieldID,
				ModelFieldID:      f.ModelFieldID,
				NameSimilarity:    f.NameSimilarity,
				OptionsSimilarity: f.OptionsExactMatch,
				Reasoning:         fallbackReasoning,
			})
		}
		resp.Sections = append(resp.Sections, sj)
	}
	return resp
}

// Apply copies judged scores onto the evaluations, looking sections up by
// reference name and fields by reference ID. Unmatched sections and missing
// fields are left untouched so they keep scoring zero.
func Apply(sections []models.SectionEvaluation, resp *Response) {
	bySection := make(map[string]*SectionJudgement, len(resp.Sections))
	for i := range resp.Sections {
		bySection[resp.Sections[i].SourceSectionName] = &resp.Sections[i]
	}

	for i := range sections {
		s := &sections[i]
		sj, ok := bySection[s.SourceSectionName]
		if !ok || !s.Matched() {
			continue
		}
		s.SectionNameSimilarity = sj.NameSimilarity

		byField := make(map[int]*FieldJudgement, len(sj.Fields))
		for j := range sj.Fields {
			byField[sj.Fields[j].SourceFieldID] = &sj.Fields[j]
		}

		for j := range s.Fields {
			f := &s.Fields[j]
			fj, ok := byField[f.SourceFieldID]
			if !ok || f.MatchType == models.MatchMissing {
				continue
			}
			f.NameSimilarity = fj.NameSimilarity
			f.OptionsSimilarity = fj.OptionsSimilarity
			reasoning := fj.Reasoning
			f.Reasoning = &reasoning
		}
	}
}

// Enrich asks j to score the pair and applies the answer to sections. A nil
// judge leaves the deterministic scores alone. A failing judge is logged and
// the deterministic scores are kept, with fallback reasoning attached.
func Enrich(ctx context.Context, j Judge, req *Request, sections []models.SectionEvaluation) (models.EnrichmentStatus, string) {
	if j == nil {
		return models.EnrichmentNone, ""
	}

	resp, err := j.Evaluate(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "Semantic judge failed, using deterministic scores", "error", err)
		fb := Fallback(sections)
		Apply(sections, fb)
		return models.EnrichmentFallback, fb.OverallAssessment
	}

	resp.clamp()
	Apply(sections, resp)
	return models.EnrichmentSemantic, resp.OverallAssessment
}
