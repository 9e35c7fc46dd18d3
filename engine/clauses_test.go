package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicyText = `Section 2 of this policy describes hospitalization benefits in detail. ` +
	`2.1 All inpatient surgical procedures performed at network hospitals are covered. ` +
	`2.2 Orthopedic and joint replacement treatments carry a sum insured of INR 200000. ` +
	`Deductible means the amount the insured must bear before any benefit is payable. ` +
	`Short note here only. ` +
	`Section 5 of this policy lists the exclusions that apply to every plan. ` +
	`5.1 Dental treatment is excluded unless it arises from accidental injury. ` +
	`The waiting period for pre-existing conditions extends to thirty-six months from the inception date of the cover.`

func TestExtractClauses_SectionCarriedForward(t *testing.T) {
	clauses := ExtractClauses(samplePolicyText)
	require.NotEmpty(t, clauses)

	bySectionText := make(map[string]string)
	for _, clause := range clauses {
		if clause.Section != nil {
			bySectionText[clause.Text] = *clause.Section
		}
	}

	assert.Equal(t, "Section 2", bySectionText["2.1 All inpatient surgical procedures performed at network hospitals are covered"])
	assert.Equal(t, "Section 2", bySectionText["Deductible means the amount the insured must bear before any benefit is payable"])
	assert.Equal(t, "Section 5", bySectionText["5.1 Dental treatment is excluded unless it arises from accidental injury"])
}

func TestExtractClauses_NumberedClauses(t *testing.T) {
	clauses := ExtractClauses(samplePolicyText)

	numbers := make(map[string]string)
	for _, clause := range clauses {
		require.NotNil(t, clause.ClauseNumber)
		numbers[clause.Text] = *clause.ClauseNumber
	}

	assert.Equal(t, "2.1", numbers["2.1 All inpatient surgical procedures performed at network hospitals are covered"])
	assert.Equal(t, "5.1", numbers["5.1 Dental treatment is excluded unless it arises from accidental injury"])
}

func TestExtractClauses_IndexFallbackForUnnumbered(t *testing.T) {
	text := "This insurance policy provides comprehensive coverage. Every claim must be filed within thirty days of discharge."
	clauses := ExtractClauses(text)

	require.Len(t, clauses, 2)
	assert.Equal(t, "1", *clauses[0].ClauseNumber)
	assert.Equal(t, "2", *clauses[1].ClauseNumber)
}

func TestExtractClauses_DiscardsShortSegments(t *testing.T) {
	clauses := ExtractClauses(samplePolicyText)

	for _, clause := range clauses {
		assert.NotEqual(t, "Short note here only", clause.Text)
	}
}

func TestExtractClauses_RetainsByDomainKeyword(t *testing.T) {
	// Below the substantial-length threshold, no structural pattern,
	// but carries a domain keyword.
	text := "All maternity expenses remain covered after delivery happens. Nothing interesting is stated in this one sentence."
	clauses := ExtractClauses(text)

	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].Text, "covered")
}

func TestExtractClauses_RetainsSubstantialSegments(t *testing.T) {
	long := strings.Repeat("word ", 25) + "ending"
	require.GreaterOrEqual(t, len(long), substantialSegmentLength)

	clauses := ExtractClauses(long + ".")
	require.Len(t, clauses, 1)
}

func TestExtractClauses_DefinitionPattern(t *testing.T) {
	text := "Hospital means any institution established for indoor care of sickness."
	clauses := ExtractClauses(text)

	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].Text, "means")
}

func TestExtractClauses_EmptyInput(t *testing.T) {
	assert.Empty(t, ExtractClauses(""))
	assert.Empty(t, ExtractClauses("   "))
}

func TestExtractClauses_Idempotent(t *testing.T) {
	first := ExtractClauses(samplePolicyText)
	second := ExtractClauses(samplePolicyText)

	assert.Equal(t, first, second)
}
