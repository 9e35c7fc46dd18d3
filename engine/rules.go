package engine

import (
	"fmt"
	"strings"
	"time"

	"clausewise-backend/models"
)

// Reference policy terms for the example rule set. These mirror one
// illustrative health policy, not a configurable product catalogue.
const (
	minEligibleAge = 18
	maxEligibleAge = 65

	minWaitingDays = 30

	coverageAmount   = 200000
	deductibleAmount = 10000

	confidenceRejected = 0.9
	confidenceApproved = 0.85
	confidencePending  = 0.7
)

// Criterion identifiers used in justification entries.
const (
	criterionAge       = "age_eligibility"
	criterionProcedure = "procedure_coverage"
	criterionWaiting   = "waiting_period"
	criterionGeography = "geographic_coverage"
)

// coveredProcedureKeywords mark procedures the example policy covers.
var coveredProcedureKeywords = []string{"knee", "orthopedic", "joint"}

// majorCities is the fixed network-city list for geographic coverage.
var majorCities = []string{
	"mumbai",
	"delhi",
	"bangalore",
	"pune",
	"chennai",
	"hyderabad",
	"kolkata",
}

// Decide evaluates the structured query against the policy criteria and
// returns a decision with an itemized justification trail. Each criterion
// is evaluated only when its query field is present and appends exactly one
// justification entry; the final decision is then derived purely from the
// completed trail, never from per-criterion side effects.
func Decide(query models.StructuredQuery, relevantClauses []string) models.ProcessingResult {
	start := time.Now()

	justifications := evaluateCriteria(query, relevantClauses)

	met, notMet := 0, 0
	procedureMet := false
	for _, j := range justifications {
		switch j.Status {
		case models.StatusMet:
			met++
			if j.Criterion == criterionProcedure {
				procedureMet = true
			}
		case models.StatusNotMet:
			notMet++
		}
	}

	result := models.ProcessingResult{
		Decision:        models.DecisionPending,
		CoverageDetails: resolveCoverageDetails(query),
		Justification:   justifications,
		ConfidenceScore: confidencePending,
	}

	switch {
	case notMet > 0:
		result.Decision = models.DecisionRejected
		result.ConfidenceScore = confidenceRejected
	case met >= 2:
		result.Decision = models.DecisionApproved
		result.ConfidenceScore = confidenceApproved
		result.Deductible = deductibleAmount
		if procedureMet {
			result.Amount = coverageAmount
		}
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

func evaluateCriteria(query models.StructuredQuery, relevantClauses []string) models.Justifications {
	justifications := make(models.Justifications, 0, 4)

	if query.Age != nil {
		justifications = append(justifications, evaluateAge(*query.Age, relevantClauses))
	}
	if query.Procedure != nil {
		justifications = append(justifications, evaluateProcedure(*query.Procedure, relevantClauses))
	}
	if query.PolicyDuration != nil {
		justifications = append(justifications, evaluateWaitingPeriod(query, relevantClauses))
	}
	if query.Location != nil {
		justifications = append(justifications, evaluateGeography(*query.Location, relevantClauses))
	}

	return justifications
}

func evaluateAge(age int, relevantClauses []string) models.DecisionJustification {
	justification := models.DecisionJustification{
		Criterion:    criterionAge,
		SourceClause: supportingClause(relevantClauses, "Eligible entry age is 18 to 65 years", "age"),
	}

	if age >= minEligibleAge && age <= maxEligibleAge {
		justification.Status = models.StatusMet
		justification.Description = fmt.Sprintf("Age %d is within the eligible range of %d-%d years", age, minEligibleAge, maxEligibleAge)
	} else {
		justification.Status = models.StatusNotMet
		justification.Description = fmt.Sprintf("Age %d is outside the eligible range of %d-%d years", age, minEligibleAge, maxEligibleAge)
	}

	return justification
}

func evaluateProcedure(procedure string, relevantClauses []string) models.DecisionJustification {
	lower := strings.ToLower(procedure)

	justification := models.DecisionJustification{
		Criterion:    criterionProcedure,
		SourceClause: supportingClause(relevantClauses, "Surgical procedures including orthopedic and joint treatments are covered", lower),
	}

	for _, keyword := range coveredProcedureKeywords {
		if strings.Contains(lower, keyword) {
			justification.Status = models.StatusMet
			justification.Description = fmt.Sprintf("Procedure %q is covered under surgical benefits", procedure)
			return justification
		}
	}

	if strings.Contains(lower, "dental") {
		justification.Status = models.StatusNotMet
		justification.SourceClause = supportingClause(relevantClauses, "Dental treatment is excluded unless arising from accidental injury", "dental")
		justification.Description = fmt.Sprintf("Procedure %q falls under the dental exclusion", procedure)
		return justification
	}

	justification.Status = models.StatusUnclear
	justification.Description = fmt.Sprintf("Coverage for procedure %q could not be determined from the policy", procedure)
	return justification
}

func evaluateWaitingPeriod(query models.StructuredQuery, relevantClauses []string) models.DecisionJustification {
	days := durationInDays(*query.PolicyDuration, query.PolicyDurationUnit)

	justification := models.DecisionJustification{
		Criterion:    criterionWaiting,
		SourceClause: supportingClause(relevantClauses, "An initial waiting period of 30 days applies from policy inception", "waiting"),
	}

	if days >= minWaitingDays {
		justification.Status = models.StatusMet
		justification.Description = fmt.Sprintf("Policy age of %d days satisfies the %d-day waiting period", days, minWaitingDays)
	} else {
		justification.Status = models.StatusNotMet
		justification.Description = fmt.Sprintf("Policy age of %d days is within the %d-day waiting period", days, minWaitingDays)
	}

	return justification
}

func evaluateGeography(location string, relevantClauses []string) models.DecisionJustification {
	lower := strings.ToLower(location)

	justification := models.DecisionJustification{
		Criterion:    criterionGeography,
		SourceClause: supportingClause(relevantClauses, "Treatment at network hospitals in major cities is covered", "city"),
	}

	for _, city := range majorCities {
		if lower == city {
			justification.Status = models.StatusMet
			justification.Description = fmt.Sprintf("%s is within the covered network cities", location)
			return justification
		}
	}

	// An unrecognized city is ambiguous, not disqualifying.
	justification.Status = models.StatusUnclear
	justification.Description = fmt.Sprintf("Network coverage for %s could not be confirmed", location)
	return justification
}

// supportingClause returns the first relevant clause mentioning the term,
// falling back to the textual rule when no clause matches.
func supportingClause(relevantClauses []string, ruleText, term string) string {
	for _, clause := range relevantClauses {
		if strings.Contains(strings.ToLower(clause), term) {
			return clause
		}
	}
	return ruleText
}

// durationInDays normalizes a policy duration to days. A missing unit is
// treated as months, matching the extractor's default.
func durationInDays(duration int, unit *models.DurationUnit) int {
	if unit == nil {
		return duration * 30
	}
	switch *unit {
	case models.UnitYears:
		return duration * 365
	case models.UnitDays:
		return duration
	default:
		return duration * 30
	}
}

func resolveCoverageDetails(query models.StructuredQuery) models.CoverageDetails {
	details := models.CoverageDetails{
		Age:       query.Age,
		Gender:    query.Gender,
		Procedure: query.Procedure,
		Location:  query.Location,
	}

	if query.PolicyDuration != nil {
		months := durationInMonths(*query.PolicyDuration, query.PolicyDurationUnit)
		details.PolicyDurationMonths = &months
	}

	return details
}

// durationInMonths normalizes a policy duration to whole months:
// days divide by 30 (floor), years multiply by 12.
func durationInMonths(duration int, unit *models.DurationUnit) int {
	if unit == nil {
		return duration
	}
	switch *unit {
	case models.UnitYears:
		return duration * 12
	case models.UnitDays:
		return duration / 30
	default:
		return duration
	}
}
