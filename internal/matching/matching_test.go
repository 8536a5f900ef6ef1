package matching

import (
	"testing"

	"github.com/spboyer/fidelity/internal/document"
	"github.com/spboyer/fidelity/internal/models"
	"github.com/stretchr/testify/require"
)

func groups(names ...string) []document.Grouping {
	out := make([]document.Grouping, len(names))
	for i, n := range names {
		out[i] = document.Grouping{Name: n}
	}
	return out
}

func TestSections_FirstReferenceWins(t *testing.T) {
	matches := Sections(groups("Kitchen", "Bath"), groups("Kitchen", "Kitchenette"))
	require.Len(t, matches, 2)

	require.NotNil(t, matches[0].Candidate)
	require.Equal(t, "Kitchen", matches[0].Candidate.Name)
	require.Equal(t, 1.0, matches[0].Score)

	require.Equal(t, "Bath", matches[1].Reference.Name)
	require.Nil(t, matches[1].Candidate)
	require.Equal(t, 0.0, matches[1].Score)
}

func TestSections_Greedy(t *testing.T) {
	// "Kitchen" takes "Kitchenette" because nothing better is left for it; the
	// later "Kitchenette" reference then goes unmatched.
	matches := Sections(groups("Kitchen", "Kitchenette"), groups("Kitchenette"))
	require.Equal(t, "Kitchenette", matches[0].Candidate.Name)
	require.Nil(t, matches[1].Candidate)
}

func TestSections_CandidatesUsedOnce(t *testing.T) {
	matches := Sections(groups("Bedroom", "Bedroom"), groups("Bedroom"))
	require.NotNil(t, matches[0].Candidate)
	require.Nil(t, matches[1].Candidate)
}

func TestSections_Threshold(t *testing.T) {
	matches := Sections(groups("Garage"), groups("Attic"))
	require.Nil(t, matches[0].Candidate)

	require.Empty(t, Sections(nil, groups("Attic")))
	matches = Sections(groups("Attic"), nil)
	require.Len(t, matches, 1)
	require.Nil(t, matches[0].Candidate)
}

func fields(specs ...any) []models.Field {
	var out []models.Field
	for i := 0; i < len(specs); i += 2 {
		out = append(out, models.Field{ID: specs[i].(int), Name: specs[i+1].(string), RatingType: models.RatingTypeRadio})
	}
	return out
}

func TestFields_IDBonus(t *testing.T) {
	ref := fields(1, "Smoke detector")
	cand := fields(9, "Smoke detectors", 1, "Smoke detector!")

	// both names score the same; the shared ID breaks the tie
	matches := Fields(ref, cand)
	require.Equal(t, 1, matches[0].Candidate.ID)
	require.Greater(t, matches[0].Score, 0.9)
	require.LessOrEqual(t, matches[0].Score, 1.0)
}

func TestFields_BonusCappedAtOne(t *testing.T) {
	matches := Fields(fields(3, "Sink"), fields(3, "sink"))
	require.Equal(t, 1.0, matches[0].Score)
}

func TestFields_BonusCannotRescueWeakName(t *testing.T) {
	matches := Fields(fields(1, "Window"), fields(1, "Ceiling fan"))
	require.Nil(t, matches[0].Candidate)
	require.Equal(t, 0.0, matches[0].Score)
}

func TestFields_OrderAndUniqueness(t *testing.T) {
	ref := fields(1, "Door", 2, "Door lock", 3, "Doorbell")
	cand := fields(1, "Door lock", 2, "Door")

	matches := Fields(ref, cand)
	require.Len(t, matches, 3)
	require.Equal(t, "Door", matches[0].Candidate.Name)
	require.Equal(t, "Door lock", matches[1].Candidate.Name)
	require.Nil(t, matches[2].Candidate)
}
