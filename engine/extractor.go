// Package engine implements the deterministic coverage-analysis core:
// structured query extraction, clause extraction, clause relevance
// selection, and rule-based decision evaluation. Everything in this
// package is a pure function over in-memory strings, so it keeps working
// when the Gemini path is unavailable.
package engine

import (
	"regexp"
	"strconv"
	"strings"

	"clausewise-backend/models"
)

var (
	agePattern      = regexp.MustCompile(`\b(\d{1,3})\s*(?:years?|yrs?|y)?[\s-]*(?:old|aged)?`)
	malePattern     = regexp.MustCompile(`\bmale\b|\b\d+\s*m\b|\bm,`)
	femalePattern   = regexp.MustCompile(`\bfemale\b|\b\d+\s*f\b|\bf,|\bwoman\b`)
	durationPattern = regexp.MustCompile(`(\d+)[\s-]*(days?|months?|years?|yrs?)\b.*?polic(?:y|ies)`)
)

// procedureVocabulary is checked in order; the first substring hit wins.
// Compound names precede their generic forms so "knee surgery" is not
// reported as just "surgery".
var procedureVocabulary = []string{
	"knee surgery",
	"knee replacement",
	"hip surgery",
	"hip replacement",
	"joint replacement",
	"heart surgery",
	"bypass surgery",
	"cataract surgery",
	"dental treatment",
	"dental",
	"maternity",
	"orthopedic",
	"physiotherapy",
	"surgery",
}

var cityVocabulary = []string{
	"mumbai",
	"delhi",
	"bangalore",
	"pune",
	"chennai",
	"hyderabad",
	"kolkata",
	"ahmedabad",
	"jaipur",
	"lucknow",
}

var conditionVocabulary = []string{
	"diabetes",
	"hypertension",
	"asthma",
	"thyroid",
	"heart condition",
	"arthritis",
}

// ExtractQuery parses a free-text coverage question into structured fields.
// It never fails: a field whose pattern does not match is simply left
// unset. Matching is case-insensitive over a lower-cased copy of the input.
func ExtractQuery(text string) models.StructuredQuery {
	var query models.StructuredQuery

	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return query
	}

	if m := agePattern.FindStringSubmatch(lower); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			query.Age = &age
		}
	}

	// Male patterns are checked first; "female" does not match \bmale\b.
	if malePattern.MatchString(lower) {
		gender := models.GenderMale
		query.Gender = &gender
	} else if femalePattern.MatchString(lower) {
		gender := models.GenderFemale
		query.Gender = &gender
	}

	for _, procedure := range procedureVocabulary {
		if strings.Contains(lower, procedure) {
			p := procedure
			query.Procedure = &p
			break
		}
	}

	for _, city := range cityVocabulary {
		if strings.Contains(lower, city) {
			location := capitalize(city)
			query.Location = &location
			break
		}
	}

	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		if duration, err := strconv.Atoi(m[1]); err == nil {
			unit := normalizeDurationUnit(m[2])
			query.PolicyDuration = &duration
			query.PolicyDurationUnit = &unit
		}
	}

	for _, condition := range conditionVocabulary {
		if strings.Contains(lower, condition) {
			query.PreExistingConditions = append(query.PreExistingConditions, condition)
		}
	}

	return query
}

func normalizeDurationUnit(unit string) models.DurationUnit {
	switch {
	case strings.HasPrefix(unit, "day"):
		return models.UnitDays
	case strings.HasPrefix(unit, "year"), strings.HasPrefix(unit, "yr"):
		return models.UnitYears
	default:
		return models.UnitMonths
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
