package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausewise-backend/models"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func unitPtr(u models.DurationUnit) *models.DurationUnit { return &u }

func findJustification(t *testing.T, result models.ProcessingResult, criterion string) models.DecisionJustification {
	t.Helper()
	for _, j := range result.Justification {
		if j.Criterion == criterion {
			return j
		}
	}
	t.Fatalf("no justification for criterion %s", criterion)
	return models.DecisionJustification{}
}

func TestDecide_AgeBoundaries(t *testing.T) {
	tests := []struct {
		age  int
		want models.CriterionStatus
	}{
		{17, models.StatusNotMet},
		{18, models.StatusMet},
		{65, models.StatusMet},
		{66, models.StatusNotMet},
	}

	for _, tt := range tests {
		result := Decide(models.StructuredQuery{Age: intPtr(tt.age)}, nil)
		j := findJustification(t, result, "age_eligibility")
		assert.Equal(t, tt.want, j.Status, "age %d", tt.age)
	}
}

func TestDecide_ForcedRejection(t *testing.T) {
	// Every other criterion met; an ineligible age alone must reject.
	query := models.StructuredQuery{
		Age:                intPtr(70),
		Procedure:          strPtr("knee surgery"),
		Location:           strPtr("Pune"),
		PolicyDuration:     intPtr(6),
		PolicyDurationUnit: unitPtr(models.UnitMonths),
	}

	result := Decide(query, nil)

	assert.Equal(t, models.DecisionRejected, result.Decision)
	assert.Zero(t, result.Amount)
	assert.Zero(t, result.Deductible)
	assert.Equal(t, 0.9, result.ConfidenceScore)
}

func TestDecide_ApprovalThreshold(t *testing.T) {
	// Exactly two met criteria, no not_met, no third criterion.
	query := models.StructuredQuery{
		Age:       intPtr(46),
		Procedure: strPtr("knee surgery"),
	}

	result := Decide(query, nil)

	assert.Equal(t, models.DecisionApproved, result.Decision)
	assert.Equal(t, float64(coverageAmount), result.Amount)
	assert.Equal(t, float64(deductibleAmount), result.Deductible)
	assert.Equal(t, 0.85, result.ConfidenceScore)
	assert.Len(t, result.Justification, 2)
}

func TestDecide_SingleMetIsPending(t *testing.T) {
	result := Decide(models.StructuredQuery{Age: intPtr(46)}, nil)

	assert.Equal(t, models.DecisionPending, result.Decision)
	assert.Equal(t, 0.7, result.ConfidenceScore)
	assert.Zero(t, result.Amount)
}

func TestDecide_UnclearDoesNotCountTowardApproval(t *testing.T) {
	// Age met, procedure unclear: one met criterion, so pending.
	query := models.StructuredQuery{
		Age:       intPtr(40),
		Procedure: strPtr("physiotherapy"),
	}

	result := Decide(query, nil)

	assert.Equal(t, models.DecisionPending, result.Decision)
	j := findJustification(t, result, "procedure_coverage")
	assert.Equal(t, models.StatusUnclear, j.Status)
}

func TestDecide_DentalExclusion(t *testing.T) {
	query := models.StructuredQuery{
		Age:       intPtr(40),
		Procedure: strPtr("dental treatment"),
	}

	result := Decide(query, nil)

	assert.Equal(t, models.DecisionRejected, result.Decision)
	j := findJustification(t, result, "procedure_coverage")
	assert.Equal(t, models.StatusNotMet, j.Status)
}

func TestDecide_WaitingPeriodBoundary(t *testing.T) {
	tests := []struct {
		days int
		want models.CriterionStatus
	}{
		{29, models.StatusNotMet},
		{30, models.StatusMet},
	}

	for _, tt := range tests {
		query := models.StructuredQuery{
			PolicyDuration:     intPtr(tt.days),
			PolicyDurationUnit: unitPtr(models.UnitDays),
		}
		result := Decide(query, nil)
		j := findJustification(t, result, "waiting_period")
		assert.Equal(t, tt.want, j.Status, "%d days", tt.days)
	}
}

func TestDecide_DurationNormalization(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		unit     models.DurationUnit
		want     int
	}{
		{"months pass through", 6, models.UnitMonths, 6},
		{"years multiply", 1, models.UnitYears, 12},
		{"days floor divide", 45, models.UnitDays, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := models.StructuredQuery{
				PolicyDuration:     intPtr(tt.duration),
				PolicyDurationUnit: unitPtr(tt.unit),
			}
			result := Decide(query, nil)
			require.NotNil(t, result.CoverageDetails.PolicyDurationMonths)
			assert.Equal(t, tt.want, *result.CoverageDetails.PolicyDurationMonths)
		})
	}
}

func TestDecide_GeographyNeverRejects(t *testing.T) {
	query := models.StructuredQuery{Location: strPtr("Shimla")}

	result := Decide(query, nil)

	j := findJustification(t, result, "geographic_coverage")
	assert.Equal(t, models.StatusUnclear, j.Status)
	assert.Equal(t, models.DecisionPending, result.Decision)
}

func TestDecide_EmptyQuery(t *testing.T) {
	result := Decide(models.StructuredQuery{}, nil)

	assert.Equal(t, models.DecisionPending, result.Decision)
	assert.NotNil(t, result.Justification)
	assert.Empty(t, result.Justification)
	assert.Equal(t, 0.7, result.ConfidenceScore)
	assert.Zero(t, result.Amount)
	assert.Zero(t, result.Deductible)
}

func TestDecide_SourceClauseFromRelevantClauses(t *testing.T) {
	clauses := []string{"Clause 4.2 sets the eligible age band for all insured persons"}

	result := Decide(models.StructuredQuery{Age: intPtr(46)}, clauses)

	j := findJustification(t, result, "age_eligibility")
	assert.Equal(t, clauses[0], j.SourceClause)
}

func TestDecide_JustificationOrderFollowsEvaluation(t *testing.T) {
	query := models.StructuredQuery{
		Age:                intPtr(46),
		Procedure:          strPtr("knee surgery"),
		Location:           strPtr("Pune"),
		PolicyDuration:     intPtr(3),
		PolicyDurationUnit: unitPtr(models.UnitMonths),
	}

	result := Decide(query, nil)

	require.Len(t, result.Justification, 4)
	assert.Equal(t, "age_eligibility", result.Justification[0].Criterion)
	assert.Equal(t, "procedure_coverage", result.Justification[1].Criterion)
	assert.Equal(t, "waiting_period", result.Justification[2].Criterion)
	assert.Equal(t, "geographic_coverage", result.Justification[3].Criterion)
}
