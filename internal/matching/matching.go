// Package matching pairs reference sections and fields with their closest
// candidate counterparts.
//
// Matching is greedy: references are visited in document order and each takes
// the best-scoring candidate not already claimed. There is no backtracking, so
// an earlier reference can claim a candidate a later one would have scored
// higher against. Each candidate is claimed at most once.
package matching

import (
	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/spboyer/fidelity/internal/similarity"
)

const (
	// SectionThreshold is the name similarity a candidate section must exceed.
	SectionThreshold = 0.5
	// FieldThreshold is the name similarity, before the ID bonus, a candidate
	// field must exceed.
	FieldThreshold = 0.3
	// IDBonus is added to a field pair's score when their IDs agree.
	IDBonus = 0.1
)

// SectionMatch pairs a reference grouping with its candidate, if any.
type SectionMatch struct {
	Reference *document.Grouping
	// Candidate is nil when no candidate cleared the threshold.
	Candidate *document.Grouping
	Score     float64
}

// FieldMatch pairs a reference field with its candidate, if any. Score is the
// combined name and ID score, capped at 1, or 0 when unmatched.
type FieldMatch struct {
	Reference *models.Field
	Candidate *models.Field
	Score     float64
}

// Sections matches every reference grouping, in order. The result has one entry
// per reference grouping.
func Sections(ref, cand []document.Grouping) []SectionMatch {
	used := make([]bool, len(cand))
	matches := make([]SectionMatch, 0, len(ref))

	for i := range ref {
		best, bestScore := -1, 0.0
		for j := range cand {
			if used[j] {
				continue
			}
			score := similarity.String(ref[i].Name, cand[j].Name)
			if score > bestScore && score > SectionThreshold {
				best, bestScore = j, score
			}
		}

		m := SectionMatch{Reference: &ref[i]}
		if best >= 0 {
			used[best] = true
			m.Candidate = &cand[best]
			m.Score = bestScore
		}
		matches = append(matches, m)
	}
	return matches
}

// Fields matches every reference field, in order. A shared ID adds [IDBonus] to
// the score but cannot rescue a name below [FieldThreshold].
func Fields(ref, cand []models.Field) []FieldMatch {
	used := make([]bool, len(cand))
	matches := make([]FieldMatch, 0, len(ref))

	for i := range ref {
		best, bestScore := -1, 0.0
		for j := range cand {
			if used[j] {
				continue
			}
			nameScore := similarity.String(ref[i].Name, cand[j].Name)
			total := nameScore
			if ref[i].ID == cand[j].ID {
				total += IDBonus
			}
			total = min(1, total)

			if total > bestScore && nameScore > FieldThreshold {
				best, bestScore = j, total
			}
		}

		m := FieldMatch{Reference: &ref[i]}
		if best >= 0 {
			used[best] = true
			m.Candidate = &cand[best]
			m.Score = bestScore
		}
		matches = append(matches, m)
	}
	return matches
}
