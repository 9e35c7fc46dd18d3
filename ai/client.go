// Package ai wraps the external language-model service used for query
// parsing, clause retrieval, and decision synthesis. Callers must treat
// every method as fallible and fall back to the rule-based engine on error.
package ai

import (
	"context"
	"errors"

	"clausewise-backend/models"
)

// Client is the contract the analysis pipeline expects from the external
// language-model service.
type Client interface {
	// ParseQuery extracts structured fields from free-text query text.
	ParseQuery(ctx context.Context, text string) (models.StructuredQuery, error)

	// FindRelevantClauses ranks and returns the subset of allClauses that
	// bears on the query.
	FindRelevantClauses(ctx context.Context, text string, structured models.StructuredQuery, allClauses []string) ([]string, error)

	// MakeDecision synthesizes a coverage decision from the query and the
	// selected clauses.
	MakeDecision(ctx context.Context, text string, structured models.StructuredQuery, clauses []string) (models.ProcessingResult, error)

	// GenerateEmbedding returns a normalized embedding vector for text.
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

var (
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
	ErrMalformedReply   = errors.New("malformed model reply")
	ErrMissingAPIKey    = errors.New("GEMINI_API_KEY not set")
	ErrGenerationFailed = errors.New("failed to generate content")
)
