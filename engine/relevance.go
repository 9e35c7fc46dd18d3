package engine

import (
	"strings"

	"clausewise-backend/models"
)

// maxRelevantClauses caps how many clauses feed into a decision.
const maxRelevantClauses = 10

// orthopedicKeywords broaden procedure search terms for joint-related
// procedures, which the example rule set covers most specifically.
var orthopedicKeywords = []string{"knee", "hip", "joint", "orthopedic", "bone"}

// alwaysRelevantKeywords mark a clause relevant regardless of the query.
var alwaysRelevantKeywords = []string{
	"coverage",
	"eligible",
	"surgical",
	"deductible",
	"sum insured",
}

// SelectRelevantClauses returns the subset of clauses likely to bear on a
// decision for the given structured query: at most maxRelevantClauses
// entries, deduplicated, in their original relative order.
func SelectRelevantClauses(query models.StructuredQuery, clauses []string) []string {
	terms := buildSearchTerms(query)

	var selected []string
	seen := make(map[string]bool)

	for _, clause := range clauses {
		if seen[clause] {
			continue
		}
		if !clauseMatches(clause, terms) {
			continue
		}
		seen[clause] = true
		selected = append(selected, clause)
		if len(selected) == maxRelevantClauses {
			break
		}
	}

	return selected
}

func buildSearchTerms(query models.StructuredQuery) []string {
	var terms []string

	if query.Procedure != nil {
		procedure := strings.ToLower(*query.Procedure)
		terms = append(terms, procedure)
		for _, keyword := range orthopedicKeywords {
			if strings.Contains(procedure, keyword) {
				terms = append(terms, "orthopedic", "surgical", "joint")
				break
			}
		}
	}

	if query.Age != nil {
		terms = append(terms, "age", "age limit", "eligibility")
	}

	if query.Location != nil {
		terms = append(terms, "location", "city", "zone")
	}

	if query.PolicyDuration != nil {
		terms = append(terms, "waiting period", "waiting", "duration")
	}

	return terms
}

func clauseMatches(clause string, terms []string) bool {
	lower := strings.ToLower(clause)

	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	for _, keyword := range alwaysRelevantKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// WordOverlap computes Jaccard similarity between the word sets of two
// strings: |intersection| / |union| over lower-cased whitespace tokens.
// Identical inputs score 1.0, disjoint non-empty inputs score 0.0. It is a
// standalone text-similarity utility and not part of clause selection.
func WordOverlap(a, b string) float64 {
	if a == b {
		return 1.0
	}

	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	intersection := 0
	for word := range wordsA {
		if wordsB[word] {
			intersection++
		}
	}

	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 1.0
	}

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = true
	}
	return set
}
