package service

import (
	"context"
	"errors"
	"io"

	"clausewise-backend/models"

	"github.com/google/uuid"
)

// fakeQueryStore records persisted queries and results in memory.
type fakeQueryStore struct {
	queries []*models.Query
	results []*models.QueryResult

	createQueryErr error
}

func (f *fakeQueryStore) CreateQuery(ctx context.Context, query *models.Query) error {
	if f.createQueryErr != nil {
		return f.createQueryErr
	}
	query.ID = uuid.New()
	f.queries = append(f.queries, query)
	return nil
}

func (f *fakeQueryStore) CreateResult(ctx context.Context, result *models.QueryResult) error {
	result.ID = uuid.New()
	f.results = append(f.results, result)
	return nil
}

func (f *fakeQueryStore) GetResultByQueryID(ctx context.Context, queryID uuid.UUID) (*models.QueryResult, error) {
	for _, result := range f.results {
		if result.QueryID == queryID {
			return result, nil
		}
	}
	return nil, errors.New("result not found")
}

func (f *fakeQueryStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Query, error) {
	var queries []*models.Query
	for _, query := range f.queries {
		if query.UserID == userID {
			queries = append(queries, query)
		}
	}
	return queries, nil
}

// fakeCorpusStore serves a fixed clause corpus.
type fakeCorpusStore struct {
	texts []string
	err   error
}

func (f *fakeCorpusStore) ListTexts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return f.texts, f.err
}

// failingAIClient fails every call, exercising the rule fallback.
type failingAIClient struct{}

func (failingAIClient) ParseQuery(ctx context.Context, text string) (models.StructuredQuery, error) {
	return models.StructuredQuery{}, errors.New("model unavailable")
}

func (failingAIClient) FindRelevantClauses(ctx context.Context, text string, structured models.StructuredQuery, allClauses []string) ([]string, error) {
	return nil, errors.New("model unavailable")
}

func (failingAIClient) MakeDecision(ctx context.Context, text string, structured models.StructuredQuery, clauses []string) (models.ProcessingResult, error) {
	return models.ProcessingResult{}, errors.New("model unavailable")
}

func (failingAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return nil, errors.New("model unavailable")
}

// cannedAIClient succeeds with fixed responses.
type cannedAIClient struct {
	structured models.StructuredQuery
	clauses    []string
	result     models.ProcessingResult

	decisionErr error
}

func (c *cannedAIClient) ParseQuery(ctx context.Context, text string) (models.StructuredQuery, error) {
	return c.structured, nil
}

func (c *cannedAIClient) FindRelevantClauses(ctx context.Context, text string, structured models.StructuredQuery, allClauses []string) ([]string, error) {
	return c.clauses, nil
}

func (c *cannedAIClient) MakeDecision(ctx context.Context, text string, structured models.StructuredQuery, clauses []string) (models.ProcessingResult, error) {
	if c.decisionErr != nil {
		return models.ProcessingResult{}, c.decisionErr
	}
	return c.result, nil
}

func (c *cannedAIClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return []float64{0.6, 0.8}, nil
}

// fakeDocumentStore records documents in memory.
type fakeDocumentStore struct {
	documents map[uuid.UUID]*models.Document
	processed []uuid.UUID
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{documents: make(map[uuid.UUID]*models.Document)}
}

func (f *fakeDocumentStore) Create(ctx context.Context, document *models.Document) error {
	f.documents[document.ID] = document
	return nil
}

func (f *fakeDocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document, ok := f.documents[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return document, nil
}

func (f *fakeDocumentStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	var documents []*models.Document
	for _, document := range f.documents {
		if document.UserID == userID {
			documents = append(documents, document)
		}
	}
	return documents, nil
}

func (f *fakeDocumentStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

// fakeClauseStore records clause batches in memory.
type fakeClauseStore struct {
	clauses []*models.DocumentClause

	createErr error
}

func (f *fakeClauseStore) CreateBatch(ctx context.Context, clauses []*models.DocumentClause) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.clauses = append(f.clauses, clauses...)
	return nil
}

func (f *fakeClauseStore) ListByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentClause, error) {
	var clauses []*models.DocumentClause
	for _, clause := range f.clauses {
		if clause.DocumentID == documentID {
			clauses = append(clauses, clause)
		}
	}
	return clauses, nil
}

// fakeBlobStorage keeps uploaded blobs in memory.
type fakeBlobStorage struct {
	blobs   map[string][]byte
	deleted []string
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStorage) Upload(ctx context.Context, documentID uuid.UUID, filename string, data io.Reader) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := documentID.String() + "/" + filename
	f.blobs[path] = content
	return path, nil
}

func (f *fakeBlobStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBlobStorage) Delete(ctx context.Context, storagePath string) error {
	delete(f.blobs, storagePath)
	f.deleted = append(f.deleted, storagePath)
	return nil
}
