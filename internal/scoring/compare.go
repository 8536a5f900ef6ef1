package scoring

import (
	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/matching"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/similarity"
)

// ExactNameThreshold is the name similarity above which a pair is an exact match.
const ExactNameThreshold = 0.9

// CompareFieldConfig diffs the configuration of two fields.
func CompareFieldConfig(ref, cand *models.Field) models.FieldConfigComparison {
	return models.FieldConfigComparison{
		Mandatory:                             ref.Mandatory == cand.Mandatory,
		NotesEnabled:                          ref.NotesEnabled == cand.NotesEnabled,
		NotesRequiredForAllOptions:            ref.NotesRequiredForAllOptions == cand.NotesRequiredForAllOptions,
		NotesRequiredForSelectedOptions:       similarity.List(ref.NotesRequiredForSelectedOptions, cand.NotesRequiredForSelectedOptions),
		AttachmentsEnabled:                    ref.AttachmentsEnabled == cand.AttachmentsEnabled,
		AttachmentsRequiredForAllOptions:      ref.AttachmentsRequiredForAllOptions == cand.AttachmentsRequiredForAllOptions,
		AttachmentsRequiredForSelectedOptions: similarity.List(ref.AttachmentsRequiredForSelectedOptions, cand.AttachmentsRequiredForSelectedOptions),
		CanCreateWorkOrder:                    ref.CanCreateWorkOrder == cand.CanCreateWorkOrder,
		WorkOrderCategory:                     ref.WorkOrderCategory == cand.WorkOrderCategory,
		WorkOrderSubCategory:                  ref.WorkOrderSubCategory == cand.WorkOrderSubCategory,
	}
}

// ConfigScore weighs the eight boolean checks at 0.7 and the two list
// similarities at 0.3.
func ConfigScore(c *models.FieldConfigComparison) float64 {
	booleans := []bool{
		c.Mandatory,
		c.NotesEnabled,
		c.NotesRequiredForAllOptions,
		c.AttachmentsEnabled,
		c.AttachmentsRequiredForAllOptions,
		c.CanCreateWorkOrder,
		c.WorkOrderCategory,
		c.WorkOrderSubCategory,
	}
	lists := (c.NotesRequiredForSelectedOptions + c.AttachmentsRequiredForSelectedOptions) / 2
	return 0.7*fraction(booleans...) + 0.3*lists
}

// CompareField evaluates ref against its matched candidate. A nil candidate
// yields a MISSING evaluation with every score at zero. nameSimilarity is the
// matcher's score for the pair; when zero it is recomputed from the names.
func CompareField(ref, cand *models.Field, nameSimilarity float64) models.FieldEvaluation {
	if cand == nil {
		return models.FieldEvaluation{
			SourceFieldID: ref.ID,
			SourceName:    ref.Name,
			MatchType:     models.MatchMissing,
		}
	}

	config := CompareFieldConfig(ref, cand)
	options := similarity.OrderedList(ref.Options, cand.Options)

	if nameSimilarity == 0 {
		nameSimilarity = similarity.String(ref.Name, cand.Name)
	}

	matchType := models.MatchPartial
	if nameSimilarity > ExactNameThreshold {
		matchType = models.MatchExact
	}

	id, name := cand.ID, cand.Name
	return models.FieldEvaluation{
		SourceFieldID:     ref.ID,
		ModelFieldID:      &id,
		SourceName:        ref.Name,
		ModelName:         &name,
		MatchType:         matchType,
		NameSimilarity:    nameSimilarity,
		OptionsSimilarity: options,
		RatingTypeMatch:   ref.RatingType == cand.RatingType,
		OptionsExactMatch: options,
		ConfigComparison:  &config,
		ConfigScore:       ConfigScore(&config),
	}
}

// CompareSection matches the fields of a section pair and evaluates each
// reference field. Scores are left at zero for [ScoreAll].
func CompareSection(m matching.SectionMatch) models.SectionEvaluation {
	ref := m.Reference
	eval := models.SectionEvaluation{
		SourceSectionName: ref.Name,
		SourceFieldCount:  len(ref.Fields),
		Fields:            make([]models.FieldEvaluation, 0, len(ref.Fields)),
	}

	if m.Candidate == nil {
		for i := range ref.Fields {
			eval.Fields = append(eval.Fields, CompareField(&ref.Fields[i], nil, 0))
		}
		eval.MissingFields = len(ref.Fields)
		return eval
	}

	cand := m.Candidate
	matched := 0
	for _, fm := range matching.Fields(ref.Fields, cand.Fields) {
		eval.Fields = append(eval.Fields, CompareField(fm.Reference, fm.Candidate, fm.Score))
		if fm.Candidate != nil {
			matched++
		}
	}

	name := cand.Name
	eval.ModelSectionName = &name
	eval.SectionNameSimilarity = similarity.String(ref.Name, cand.Name)
	eval.ModelFieldCount = len(cand.Fields)
	eval.FieldCountMatch = len(ref.Fields) == len(cand.Fields)
	eval.MatchedFields = matched
	eval.MissingFields = len(ref.Fields) - matched
	eval.ExtraFields = max(0, len(cand.Fields)-matched)
	return eval
}

// CompareTemplates evaluates every leaf grouping of ref against cand. Only the
// first version of each template is compared.
func CompareTemplates(ref, cand *models.Template) []models.SectionEvaluation {
	refGroups := document.Flatten(ref.Root())
	candGroups := document.Flatten(cand.Root())

	evals := make([]models.SectionEvaluation, 0, len(refGroups))
	for _, m := range matching.Sections(refGroups, candGroups) {
		evals = append(evals, CompareSection(m))
	}
	return evals
}

func fraction(bs ...bool) float64 {
	if len(bs) == 0 {
		return 0
	}
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return float64(n) / float64(len(bs))
}
