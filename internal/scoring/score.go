// Package scoring compares reference and candidate templates field by field
// and rolls the results up into section and document scores. All scores lie in
// [0, 1] and are rounded to four decimals.
package scoring

import (
	"github.com/spboyer/fidelity/internal/metrics"
	"github.com/spboyer/fidelity/internal/models"
)

// FieldWeightTable holds the weight of each component of a field score.
type FieldWeightTable struct {
	Name        float64
	Options     float64
	RatingType  float64
	Mandatory   float64
	Notes       float64
	Attachments float64
	WorkOrder   float64
}

func (w FieldWeightTable) Sum() float64 {
	return w.Name + w.Options + w.RatingType + w.Mandatory + w.Notes + w.Attachments + w.WorkOrder
}

// AggregateWeightTable holds the weight of each document-level dimension.
type AggregateWeightTable struct {
	SchemaCompliance   float64
	StructuralAccuracy float64
	SemanticAccuracy   float64
	ConfigAccuracy     float64
}

func (w AggregateWeightTable) Sum() float64 {
	return w.SchemaCompliance + w.StructuralAccuracy + w.SemanticAccuracy + w.ConfigAccuracy
}

var FieldWeights = FieldWeightTable{
	Name:        0.20,
	Options:     0.15,
	RatingType:  0.15,
	Mandatory:   0.10,
	Notes:       0.10,
	Attachments: 0.10,
	WorkOrder:   0.20,
}

var AggregateWeights = AggregateWeightTable{
	SchemaCompliance:   0.15,
	StructuralAccuracy: 0.20,
	SemanticAccuracy:   0.30,
	ConfigAccuracy:     0.35,
}

// Section score adjustments.
const (
	sectionNameBonus    = 0.1
	fieldCountBonus     = 0.05
	missingFieldPenalty = 0.1
	extraFieldPenalty   = 0.05
)

// FieldScore is the weighted score of one field evaluation. Missing fields
// score 0.
func FieldScore(f *models.FieldEvaluation) float64 {
	if f.MatchType == models.MatchMissing {
		return 0
	}

	options := max(f.OptionsSimilarity, f.OptionsExactMatch)

	var mandatory, notes, attachments, workOrder float64
	if c := f.ConfigComparison; c != nil {
		mandatory = boolScore(c.Mandatory)
		notes = (fraction(c.NotesEnabled, c.NotesRequiredForAllOptions) + c.NotesRequiredForSelectedOptions) / 2
		attachments = (fraction(c.AttachmentsEnabled, c.AttachmentsRequiredForAllOptions) + c.AttachmentsRequiredForSelectedOptions) / 2
		workOrder = fraction(c.CanCreateWorkOrder, c.WorkOrderCategory, c.WorkOrderSubCategory)
	}

	w := FieldWeights
	score := w.Name*f.NameSimilarity +
		w.Options*options +
		w.RatingType*boolScore(f.RatingTypeMatch) +
		w.Mandatory*mandatory +
		w.Notes*notes +
		w.Attachments*attachments +
		w.WorkOrder*workOrder
	return metrics.Round4(score)
}

// SectionScore averages the field scores of s, adds bonuses for a similar name
// and an equal field count, and subtracts penalties for missing and extra
// fields. A section without reference fields scores 0.
func SectionScore(s *models.SectionEvaluation) float64 {
	if len(s.Fields) == 0 || s.SourceFieldCount == 0 {
		return 0
	}

	sum := 0.0
	for i := range s.Fields {
		sum += s.Fields[i].OverallScore
	}
	score := sum / float64(len(s.Fields))

	score += sectionNameBonus * s.SectionNameSimilarity
	if s.FieldCountMatch {
		score += fieldCountBonus
	}
	score -= missingFieldPenalty * float64(s.MissingFields) / float64(s.SourceFieldCount)
	score -= extraFieldPenalty * float64(s.ExtraFields) / float64(max(s.ModelFieldCount, 1))

	return clamp(metrics.Round4(score))
}

// ScoreAll fills in every field and section score in place.
func ScoreAll(sections []models.SectionEvaluation) {
	for i := range sections {
		s := &sections[i]
		for j := range s.Fields {
			s.Fields[j].OverallScore = FieldScore(&s.Fields[j])
		}
		s.SectionScore = SectionScore(s)
	}
}

// Aggregate computes the document-level dimensions. Dimensions without
// contributing data are 0.
func Aggregate(schema models.SchemaValidationResult, sections []models.SectionEvaluation) models.AggregateScores {
	var (
		matchedSections, sourceFields, matchedFields int
		names, options, configs                      []float64
	)

	for i := range sections {
		s := &sections[i]
		if s.Matched() {
			matchedSections++
		}
		sourceFields += s.SourceFieldCount
		matchedFields += s.MatchedFields

		for j := range s.Fields {
			f := &s.Fields[j]
			if f.MatchType != models.MatchMissing {
				names = append(names, f.NameSimilarity)
				options = append(options, f.OptionsSimilarity)
			}
			if f.ConfigScore > 0 {
				configs = append(configs, f.ConfigScore)
			}
		}
	}

	var structural float64
	if len(sections) > 0 {
		fieldRatio := 0.0
		if sourceFields > 0 {
			fieldRatio = float64(matchedFields) / float64(sourceFields)
		}
		structural = (float64(matchedSections)/float64(len(sections)) + fieldRatio) / 2
	}

	semantic := (metrics.Mean(names) + metrics.Mean(options)) / 2
	config := metrics.Mean(configs)

	w := AggregateWeights
	overall := w.SchemaCompliance*schema.ComplianceScore +
		w.StructuralAccuracy*structural +
		w.SemanticAccuracy*semantic +
		w.ConfigAccuracy*config

	return models.AggregateScores{
		SchemaCompliance:   metrics.Round4(schema.ComplianceScore),
		StructuralAccuracy: metrics.Round4(structural),
		SemanticAccuracy:   metrics.Round4(semantic),
		ConfigAccuracy:     metrics.Round4(config),
		OverallScore:       metrics.Round4(overall),
	}
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp(x float64) float64 {
	return max(0, min(1, x))
}
