package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausewise-backend/models"

	"github.com/google/uuid"
)

func TestAnalyzeQuery_FallsBackWhenAIFails(t *testing.T) {
	store := &fakeQueryStore{}
	corpus := &fakeCorpusStore{texts: []string{
		"Orthopedic and joint replacement treatments carry a sum insured of INR 200000",
	}}

	svc := NewQueryService(
		QueryWithStore(store),
		QueryWithCorpusStore(corpus),
		QueryWithAIClient(failingAIClient{}),
	)

	result, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    uuid.New(),
		QueryText: "46M, knee surgery, Pune, 3-month policy",
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceRules, result.Source)
	assert.Equal(t, models.DecisionApproved, result.Result.Decision)

	// The failed AI attempt must leave nothing behind: the persisted
	// structured form comes from the rule extractor.
	require.Len(t, store.queries, 1)
	require.NotNil(t, store.queries[0].Structured.Age)
	assert.Equal(t, 46, *store.queries[0].Structured.Age)
}

func TestAnalyzeQuery_UsesAIWhenAvailable(t *testing.T) {
	age := 46
	aiClient := &cannedAIClient{
		structured: models.StructuredQuery{Age: &age},
		clauses:    []string{"clause"},
		result: models.ProcessingResult{
			Decision:        models.DecisionApproved,
			Amount:          200000,
			ConfidenceScore: 0.95,
			Justification:   models.Justifications{},
		},
	}

	store := &fakeQueryStore{}
	svc := NewQueryService(
		QueryWithStore(store),
		QueryWithCorpusStore(&fakeCorpusStore{}),
		QueryWithAIClient(aiClient),
	)

	result, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    uuid.New(),
		QueryText: "46M, knee surgery",
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceAI, result.Source)
	assert.Equal(t, 0.95, result.Result.ConfidenceScore)

	require.Len(t, store.results, 1)
	assert.Equal(t, models.SourceAI, store.results[0].Source)
}

func TestAnalyzeQuery_FallsBackOnLateAIFailure(t *testing.T) {
	// Parse and retrieval succeed, decision fails: the whole AI attempt
	// is discarded.
	age := 99
	aiClient := &cannedAIClient{
		structured:  models.StructuredQuery{Age: &age},
		decisionErr: errors.New("model overloaded"),
	}

	store := &fakeQueryStore{}
	svc := NewQueryService(
		QueryWithStore(store),
		QueryWithCorpusStore(&fakeCorpusStore{}),
		QueryWithAIClient(aiClient),
	)

	result, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    uuid.New(),
		QueryText: "46M, knee surgery",
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceRules, result.Source)

	require.Len(t, store.queries, 1)
	require.NotNil(t, store.queries[0].Structured.Age)
	assert.Equal(t, 46, *store.queries[0].Structured.Age, "AI-parsed fields must not leak into the fallback")
}

func TestAnalyzeQuery_NoAIClientUsesRules(t *testing.T) {
	store := &fakeQueryStore{}
	svc := NewQueryService(
		QueryWithStore(store),
		QueryWithCorpusStore(&fakeCorpusStore{}),
	)

	result, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    uuid.New(),
		QueryText: "",
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceRules, result.Source)
	assert.Equal(t, models.DecisionPending, result.Result.Decision)
	assert.Empty(t, result.Result.Justification)
}

func TestAnalyzeQuery_CorpusErrorFails(t *testing.T) {
	svc := NewQueryService(
		QueryWithStore(&fakeQueryStore{}),
		QueryWithCorpusStore(&fakeCorpusStore{err: errors.New("db down")}),
	)

	_, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    uuid.New(),
		QueryText: "46M, knee surgery",
	})

	assert.Error(t, err)
}

func TestGetHistoryAndResult(t *testing.T) {
	store := &fakeQueryStore{}
	svc := NewQueryService(
		QueryWithStore(store),
		QueryWithCorpusStore(&fakeCorpusStore{}),
	)

	userID := uuid.New()
	analyzed, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{
		UserID:    userID,
		QueryText: "46M, knee surgery, Pune, 3-month policy",
	})
	require.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), GetHistoryRequest{UserID: userID})
	require.NoError(t, err)
	require.Len(t, history.Queries, 1)
	assert.Equal(t, analyzed.Query.ID, history.Queries[0].ID)

	stored, err := svc.GetResult(context.Background(), GetResultRequest{QueryID: analyzed.Query.ID})
	require.NoError(t, err)
	assert.Equal(t, analyzed.Result.Decision, stored.Result.Decision)
	assert.Equal(t, models.SourceRules, stored.Result.Source)
}

func TestAnalyzeQuery_MissingStores(t *testing.T) {
	svc := NewQueryService()

	_, err := svc.AnalyzeQuery(context.Background(), AnalyzeQueryRequest{UserID: uuid.New()})

	assert.Error(t, err)
}
