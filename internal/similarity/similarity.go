// Package similarity holds the deterministic comparators used to align and score
// template names and option lists. All comparisons are case-insensitive and ignore
// surrounding whitespace.
package similarity

import (
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OrderMismatchScore is returned by [OrderedList] when both lists hold the same
// items in a different order.
const OrderMismatchScore = 0.9

// Normalize trims and lower-cases s.
func Normalize(s string) string {
	// a Caser keeps state, so one is created per call
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// String returns the character-sequence ratio of a and b in [0, 1]: twice the
// number of matched characters divided by the total length of both strings.
// Either string being empty yields 0.
func String(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}

	return difflib.NewMatcher(runes(na), runes(nb)).Ratio()
}

// List is the Jaccard index of a and b treated as normalized sets. Two empty lists
// are identical; one empty list shares nothing with a non-empty one.
func List(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return jaccard(toSet(a), toSet(b))
}

// OrderedList compares option lists where order matters: identical sequences score
// 1, the same items in another order score [OrderMismatchScore], anything else
// falls back to the Jaccard index.
func OrderedList(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	na, nb := normalizeAll(a), normalizeAll(b)
	if slices.Equal(na, nb) {
		return 1
	}

	sa, sb := toSet(na), toSet(nb)
	if len(sa) == len(sb) && jaccard(sa, sb) == 1 {
		return OrderMismatchScore
	}
	return jaccard(sa, sb)
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[Normalize(item)] = struct{}{}
	}
	return set
}

func normalizeAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = Normalize(item)
	}
	return out
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
