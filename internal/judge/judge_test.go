package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/utils"
	"github.com/stretchr/testify/require"
)

type judgeFunc func(ctx context.Context, req *Request) (*Response, error)

func (f judgeFunc) Evaluate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// sampleSections has one matched section with a matched and a missing field,
// and one unmatched section.
func sampleSections() []models.SectionEvaluation {
	return []models.SectionEvaluation{
		{
			SourceSectionName:     "Kitchen",
			ModelSectionName:      utils.Ptr("Kitchn"),
			SectionNameSimilarity: 0.92,
			SourceFieldCount:      2,
			ModelFieldCount:       1,
			MatchedFields:         1,
			MissingFields:         1,
			Fields: []models.FieldEvaluation{
				{
					SourceFieldID:     1,
					ModelFieldID:      utils.Ptr(4),
					SourceName:        "Elec. outlets",
					ModelName:         utils.Ptr("Electrical outlets"),
					MatchType:         models.MatchPartial,
					NameSimilarity:    0.7,
					OptionsSimilarity: 0.9,
					OptionsExactMatch: 0.9,
				},
				{SourceFieldID: 2, SourceName: "Stove", MatchType: models.MatchMissing},
			},
		},
		{
			SourceSectionName: "Bath",
			SourceFieldCount:  1,
			MissingFields:     1,
			Fields:            []models.FieldEvaluation{{SourceFieldID: 3, SourceName: "Tub", MatchType: models.MatchMissing}},
		},
	}
}

func TestEnrich_NoJudge(t *testing.T) {
	sections := sampleSections()
	status, assessment := Enrich(context.Background(), nil, &Request{}, sections)
	require.Equal(t, models.EnrichmentNone, status)
	require.Empty(t, assessment)
	require.Equal(t, sampleSections(), sections)
}

func TestEnrich_Semantic(t *testing.T) {
	j := judgeFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{
			Sections: []SectionJudgement{
				{
					SourceSectionName: "Kitchen",
					NameSimilarity:    0.95,
					Fields: []FieldJudgement{
						{SourceFieldID: 1, NameSimilarity: 1.4, OptionsSimilarity: 0.8, Reasoning: "abbreviation"},
						{SourceFieldID: 2, NameSimilarity: 0.6, OptionsSimilarity: 0.6},
					},
				},
				{SourceSectionName: "Bath", NameSimilarity: 0.4},
			},
			OverallAssessment: "Close, one section missing",
		}, nil
	})

	sections := sampleSections()
	status, assessment := Enrich(context.Background(), j, &Request{}, sections)
	require.Equal(t, models.EnrichmentSemantic, status)
	require.Equal(t, "Close, one section missing", assessment)

	kitchen := sections[0]
	require.Equal(t, 0.95, kitchen.SectionNameSimilarity)
	require.Equal(t, 1.0, kitchen.Fields[0].NameSimilarity, "scores are clamped")
	require.Equal(t, 0.8, kitchen.Fields[0].OptionsSimilarity)
	require.Equal(t, 0.9, kitchen.Fields[0].OptionsExactMatch)
	require.Equal(t, "abbreviation", *kitchen.Fields[0].Reasoning)

	// missing fields and unmatched sections keep their zeros
	require.Equal(t, 0.0, kitchen.Fields[1].NameSimilarity)
	require.Nil(t, kitchen.Fields[1].Reasoning)
	require.Equal(t, 0.0, sections[1].SectionNameSimilarity)
}

func TestEnrich_Fallback(t *testing.T) {
	j := judgeFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return nil, errors.New("service unavailable")
	})

	sections := sampleSections()
	status, assessment := Enrich(context.Background(), j, &Request{}, sections)
	require.Equal(t, models.EnrichmentFallback, status)
	require.Equal(t, fallbackAssessment, assessment)

	f := sections[0].Fields[0]
	require.Equal(t, 0.7, f.NameSimilarity)
	require.Equal(t, 0.9, f.OptionsSimilarity)
	require.Equal(t, fallbackReasoning, *f.Reasoning)
	require.Equal(t, 0.92, sections[0].SectionNameSimilarity)
}

func TestFallback(t *testing.T) {
	resp := Fallback(sampleSections())
	require.Len(t, resp.Sections, 2)
	require.Equal(t, "Kitchen", resp.Sections[0].SourceSectionName)
	require.Equal(t, "Kitchn", *resp.Sections[0].ModelSectionName)
	require.Nil(t, resp.Sections[1].ModelSectionName)
	require.Equal(t, 4, *resp.Sections[0].Fields[0].ModelFieldID)
	require.Equal(t, 0.9, resp.Sections[0].Fields[0].OptionsSimilarity)
}

func TestParseResponse(t *testing.T) {
	text := "```json\n" + `{"sections": [{"source_section_name": "Kitchen", "model_section_name": null,
		"name_similarity": -0.2, "fields": [{"source_field_id": 1, "model_field_id": 3,
		"name_similarity": 0.9, "options_similarity": 1.0, "reasoning": "same"}]}],
		"overall_assessment": "good"}` + "\n```"

	resp, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "good", resp.OverallAssessment)
	require.Nil(t, resp.Sections[0].ModelSectionName)
	require.Equal(t, 0.0, resp.Sections[0].NameSimilarity)
	require.Equal(t, 3, *resp.Sections[0].Fields[0].ModelFieldID)

	_, err = ParseResponse("I could not evaluate this.")
	require.Error(t, err)

	_, err = ParseResponse("```\n```")
	require.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	req := &Request{
		Reference: []document.CondensedSection{{Name: "Kitchen", Fields: []document.CondensedField{{ID: 1, Name: "Sink", Options: []string{"Pass"}}}}},
		Candidate: []document.CondensedSection{{Name: "Kitchn", Fields: []document.CondensedField{}}},
		Schema: models.SchemaValidationResult{
			ErrorCount: 1,
			Errors:     []models.ValidationError{{Path: "versions.0.structure.name", Message: "missing property 'name'"}},
		},
	}

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	require.Contains(t, prompt, "## Schema Validation Errors Found\nFound 1 schema validation errors:")
	require.Contains(t, prompt, "Path: versions.0.structure.name")
	require.Contains(t, prompt, `"name": "Kitchen"`)
	require.Contains(t, prompt, `"name": "Kitchn"`)
	require.Contains(t, prompt, submitToolName)
	require.Contains(t, prompt, "Be lenient with abbreviations")
}

func TestNewRequest(t *testing.T) {
	tmpl := &models.Template{Versions: []models.TemplateVersion{{Structure: models.Section{
		Name:     "root",
		Sections: []models.Section{{Name: "Kitchen", Fields: []models.Field{{ID: 1, Name: "Sink"}}}},
	}}}}

	req := NewRequest(tmpl, &models.Template{}, models.SchemaValidationResult{IsValid: true})
	require.Len(t, req.Reference, 1)
	require.Empty(t, req.Candidate)
	require.True(t, req.Schema.IsValid)
}
