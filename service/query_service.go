package service

import (
	"context"
	"errors"
	"log"

	"clausewise-backend/ai"
	"clausewise-backend/engine"
	"clausewise-backend/models"

	"github.com/google/uuid"
)

// QueryStore is the query persistence surface the service needs
type QueryStore interface {
	CreateQuery(ctx context.Context, query *models.Query) error
	CreateResult(ctx context.Context, result *models.QueryResult) error
	GetResultByQueryID(ctx context.Context, queryID uuid.UUID) (*models.QueryResult, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Query, error)
}

// CorpusStore provides the flat clause-text corpus for analysis
type CorpusStore interface {
	ListTexts(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// QueryService answers coverage questions. It tries the AI path first and
// falls back to the deterministic rule engine whenever the AI path fails
// for any reason.
type QueryService struct {
	queries  QueryStore
	corpus   CorpusStore
	aiClient ai.Client
}

// QueryServiceOption is a functional option for QueryService
type QueryServiceOption func(*QueryService)

// QueryWithStore sets the query store
func QueryWithStore(store QueryStore) QueryServiceOption {
	return func(s *QueryService) {
		s.queries = store
	}
}

// QueryWithCorpusStore sets the clause corpus store
func QueryWithCorpusStore(store CorpusStore) QueryServiceOption {
	return func(s *QueryService) {
		s.corpus = store
	}
}

// QueryWithAIClient sets the AI client. Optional: without it every query
// is answered by the rule engine.
func QueryWithAIClient(client ai.Client) QueryServiceOption {
	return func(s *QueryService) {
		s.aiClient = client
	}
}

// NewQueryService creates a new query service
func NewQueryService(opts ...QueryServiceOption) *QueryService {
	s := &QueryService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeQueryRequest represents a coverage question to analyze
type AnalyzeQueryRequest struct {
	UserID    uuid.UUID
	QueryText string
}

// AnalyzeQueryResult represents the outcome of coverage analysis
type AnalyzeQueryResult struct {
	Query  *models.Query
	Result models.ProcessingResult
	Source models.ResultSource
}

// AnalyzeQuery parses the question, selects relevant clauses, and produces
// a coverage decision, persisting both the query and its result.
func (s *QueryService) AnalyzeQuery(ctx context.Context, req AnalyzeQueryRequest) (*AnalyzeQueryResult, error) {
	if s.queries == nil {
		return nil, errors.New("query store not set")
	}
	if s.corpus == nil {
		return nil, errors.New("corpus store not set")
	}

	corpus, err := s.corpus.ListTexts(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	structured, result, source := s.analyze(ctx, req.QueryText, corpus)

	query := &models.Query{
		UserID:     req.UserID,
		QueryText:  req.QueryText,
		Structured: structured,
	}
	if err := s.queries.CreateQuery(ctx, query); err != nil {
		return nil, err
	}

	record := &models.QueryResult{
		QueryID:          query.ID,
		Decision:         result.Decision,
		Amount:           result.Amount,
		Deductible:       result.Deductible,
		CoverageDetails:  result.CoverageDetails,
		Justification:    result.Justification,
		ConfidenceScore:  result.ConfidenceScore,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Source:           source,
	}
	if err := s.queries.CreateResult(ctx, record); err != nil {
		return nil, err
	}

	return &AnalyzeQueryResult{
		Query:  query,
		Result: result,
		Source: source,
	}, nil
}

// analyze runs the AI path end to end and, if any step fails, discards all
// of its output and reruns the three steps through the rule engine.
func (s *QueryService) analyze(ctx context.Context, text string, corpus []string) (models.StructuredQuery, models.ProcessingResult, models.ResultSource) {
	if s.aiClient != nil {
		structured, result, err := s.analyzeWithAI(ctx, text, corpus)
		if err == nil {
			return structured, result, models.SourceAI
		}
		log.Printf("AI analysis failed, falling back to rule engine: %v", err)
	}

	structured := engine.ExtractQuery(text)
	relevant := engine.SelectRelevantClauses(structured, corpus)
	result := engine.Decide(structured, relevant)
	return structured, result, models.SourceRules
}

func (s *QueryService) analyzeWithAI(ctx context.Context, text string, corpus []string) (models.StructuredQuery, models.ProcessingResult, error) {
	structured, err := s.aiClient.ParseQuery(ctx, text)
	if err != nil {
		return models.StructuredQuery{}, models.ProcessingResult{}, err
	}

	clauses, err := s.aiClient.FindRelevantClauses(ctx, text, structured, corpus)
	if err != nil {
		return models.StructuredQuery{}, models.ProcessingResult{}, err
	}

	result, err := s.aiClient.MakeDecision(ctx, text, structured, clauses)
	if err != nil {
		return models.StructuredQuery{}, models.ProcessingResult{}, err
	}

	return structured, result, nil
}

// GetHistoryRequest represents a request for a user's query history
type GetHistoryRequest struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// GetHistoryResult represents a page of query history
type GetHistoryResult struct {
	Queries []*models.Query
}

// GetHistory retrieves a user's past queries, newest first
func (s *QueryService) GetHistory(ctx context.Context, req GetHistoryRequest) (*GetHistoryResult, error) {
	if s.queries == nil {
		return nil, errors.New("query store not set")
	}

	queries, err := s.queries.ListByUserID(ctx, req.UserID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &GetHistoryResult{Queries: queries}, nil
}

// GetResultRequest represents a request for a stored decision
type GetResultRequest struct {
	QueryID uuid.UUID
}

// GetResultResult represents a stored decision
type GetResultResult struct {
	Result *models.QueryResult
}

// GetResult retrieves the stored decision for a query
func (s *QueryService) GetResult(ctx context.Context, req GetResultRequest) (*GetResultResult, error) {
	if s.queries == nil {
		return nil, errors.New("query store not set")
	}

	result, err := s.queries.GetResultByQueryID(ctx, req.QueryID)
	if err != nil {
		return nil, err
	}

	return &GetResultResult{Result: result}, nil
}
