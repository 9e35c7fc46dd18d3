package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Gender is the gender extracted from a query
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DurationUnit is the unit of a policy duration
type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitMonths DurationUnit = "months"
	UnitYears  DurationUnit = "years"
)

// Decision is the final outcome of coverage analysis
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionPending  Decision = "pending"
)

// CriterionStatus is the outcome of one evaluated coverage criterion
type CriterionStatus string

const (
	StatusMet     CriterionStatus = "met"
	StatusNotMet  CriterionStatus = "not_met"
	StatusUnclear CriterionStatus = "unclear"
)

// StructuredQuery holds the fields extracted from a natural-language
// coverage question. Every field is optional: a query need not mention it,
// and an unset field is distinct from an unclear one.
type StructuredQuery struct {
	Age                   *int          `json:"age,omitempty"`
	Gender                *Gender       `json:"gender,omitempty"`
	Procedure             *string       `json:"procedure,omitempty"`
	Location              *string       `json:"location,omitempty"`
	PolicyDuration        *int          `json:"policy_duration,omitempty"`
	PolicyDurationUnit    *DurationUnit `json:"policy_duration_unit,omitempty"`
	PreExistingConditions []string      `json:"pre_existing_conditions,omitempty"`
	AdditionalInfo        string        `json:"additional_info,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (q StructuredQuery) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements sql.Scanner for JSONB
func (q *StructuredQuery) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, q)
}

// DecisionJustification records the outcome of one evaluated criterion.
// A result carries these in evaluation order.
type DecisionJustification struct {
	Criterion    string          `json:"criterion"`
	Status       CriterionStatus `json:"status"`
	SourceClause string          `json:"source_clause"`
	Description  string          `json:"description"`
}

// Justifications represents the ordered justification trail of a decision
type Justifications []DecisionJustification

// Value implements driver.Valuer for JSONB
func (j Justifications) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB
func (j *Justifications) Scan(value interface{}) error {
	if value == nil {
		*j = make(Justifications, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(Justifications, 0)
		return nil
	}

	if len(bytes) == 0 {
		*j = make(Justifications, 0)
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// CoverageDetails echoes the resolved query fields in a decision result.
// PolicyDurationMonths is always normalized to months regardless of the
// unit the query used.
type CoverageDetails struct {
	Age                  *int    `json:"age,omitempty"`
	Gender               *Gender `json:"gender,omitempty"`
	Procedure            *string `json:"procedure,omitempty"`
	Location             *string `json:"location,omitempty"`
	PolicyDurationMonths *int    `json:"policy_duration_months,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (c CoverageDetails) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *CoverageDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// ProcessingResult is the output of coverage analysis for one query
type ProcessingResult struct {
	Decision         Decision        `json:"decision"`
	Amount           float64         `json:"amount,omitempty"`
	Deductible       float64         `json:"deductible,omitempty"`
	CoverageDetails  CoverageDetails `json:"coverage_details"`
	Justification    Justifications  `json:"justification"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// ResultSource identifies which analysis path produced a result
type ResultSource string

const (
	SourceAI    ResultSource = "ai"
	SourceRules ResultSource = "rules"
)

// Query represents a persisted coverage question
type Query struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	QueryText  string          `json:"query_text"`
	Structured StructuredQuery `json:"structured"`
	CreatedAt  time.Time       `json:"created_at"`
}

// QueryResult represents the persisted decision for a query
type QueryResult struct {
	ID               uuid.UUID       `json:"id"`
	QueryID          uuid.UUID       `json:"query_id"`
	Decision         Decision        `json:"decision"`
	Amount           float64         `json:"amount"`
	Deductible       float64         `json:"deductible"`
	CoverageDetails  CoverageDetails `json:"coverage_details"`
	Justification    Justifications  `json:"justification"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	Source           ResultSource    `json:"source"`
	CreatedAt        time.Time       `json:"created_at"`
}
