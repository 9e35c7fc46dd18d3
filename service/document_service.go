package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"clausewise-backend/ai"
	"clausewise-backend/engine"
	"clausewise-backend/models"
	"clausewise-backend/storage"

	"github.com/google/uuid"
)

// DocumentStore is the document persistence surface the service needs
type DocumentStore interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// ClauseStore is the clause persistence surface the service needs
type ClauseStore interface {
	CreateBatch(ctx context.Context, clauses []*models.DocumentClause) error
	ListByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentClause, error)
}

// DocumentService handles policy document ingestion
type DocumentService struct {
	documents DocumentStore
	clauses   ClauseStore
	blobs     storage.Storage
	aiClient  ai.Client
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocWithDocumentStore sets the document store
func DocWithDocumentStore(store DocumentStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.documents = store
	}
}

// DocWithClauseStore sets the clause store
func DocWithClauseStore(store ClauseStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.clauses = store
	}
}

// DocWithBlobStorage sets the blob storage backend
func DocWithBlobStorage(blobs storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.blobs = blobs
	}
}

// DocWithAIClient sets the AI client used for clause embeddings.
// Optional: without it clauses are stored without embeddings.
func DocWithAIClient(client ai.Client) DocumentServiceOption {
	return func(s *DocumentService) {
		s.aiClient = client
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestDocumentRequest represents an uploaded policy document
type IngestDocumentRequest struct {
	UserID   uuid.UUID
	Filename string
	MimeType string
	Data     []byte
}

// IngestDocumentResult represents the outcome of document ingestion
type IngestDocumentResult struct {
	Document *models.Document
	Clauses  []*models.DocumentClause
}

// IngestDocument stores the uploaded blob, extracts text and clause
// candidates, persists the clause set, and finally marks the document
// processed. The processed flag is set last: a document whose ingestion
// was interrupted never contributes clauses to the query path.
func (s *DocumentService) IngestDocument(ctx context.Context, req IngestDocumentRequest) (*IngestDocumentResult, error) {
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}
	if s.clauses == nil {
		return nil, errors.New("clause store not set")
	}
	if s.blobs == nil {
		return nil, errors.New("blob storage not set")
	}

	documentID := uuid.New()

	storagePath, err := s.blobs.Upload(ctx, documentID, req.Filename, bytes.NewReader(req.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to store document blob: %w", err)
	}

	text := extractText(req.Filename, req.MimeType, req.Data)

	document := &models.Document{
		ID:            documentID,
		UserID:        req.UserID,
		Filename:      req.Filename,
		MimeType:      req.MimeType,
		Size:          int64(len(req.Data)),
		StoragePath:   storagePath,
		ExtractedText: &text,
	}

	if err := s.documents.Create(ctx, document); err != nil {
		// Clean up the orphaned blob
		s.blobs.Delete(ctx, storagePath)
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	candidates := engine.ExtractClauses(text)
	clauses := make([]*models.DocumentClause, 0, len(candidates))
	for _, candidate := range candidates {
		clause := &models.DocumentClause{
			DocumentID:   documentID,
			ClauseText:   candidate.Text,
			Section:      candidate.Section,
			ClauseNumber: candidate.ClauseNumber,
		}
		clause.Embedding = s.embedClause(ctx, candidate.Text)
		clauses = append(clauses, clause)
	}

	if err := s.clauses.CreateBatch(ctx, clauses); err != nil {
		return nil, fmt.Errorf("failed to save clauses: %w", err)
	}

	if err := s.documents.MarkProcessed(ctx, documentID); err != nil {
		return nil, fmt.Errorf("failed to mark document processed: %w", err)
	}
	document.Processed = true

	return &IngestDocumentResult{
		Document: document,
		Clauses:  clauses,
	}, nil
}

// GetDocument retrieves a document by ID
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}
	return s.documents.GetByID(ctx, id)
}

// ListDocuments retrieves all documents for a user
func (s *DocumentService) ListDocuments(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}
	return s.documents.ListByUserID(ctx, userID)
}

// GetClauses retrieves the clause set of a document
func (s *DocumentService) GetClauses(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentClause, error) {
	if s.clauses == nil {
		return nil, errors.New("clause store not set")
	}
	return s.clauses.ListByDocumentID(ctx, documentID)
}

// embedClause generates an embedding for a clause. Embeddings are stored
// for later use; failure to produce one never fails ingestion.
func (s *DocumentService) embedClause(ctx context.Context, text string) []float64 {
	if s.aiClient == nil {
		return nil
	}
	embedding, err := s.aiClient.GenerateEmbedding(ctx, text)
	if err != nil {
		log.Printf("Warning: failed to embed clause, storing without embedding: %v", err)
		return nil
	}
	return embedding
}

// extractText recovers raw text from an uploaded document. Plain-text
// uploads are used as-is; binary formats without a recoverable text layer
// get a placeholder so clause extraction still has input to work with.
func extractText(filename, mimeType string, data []byte) string {
	if strings.HasPrefix(mimeType, "text/") {
		return string(data)
	}
	return fmt.Sprintf("Policy document %s (%s) was uploaded. No text layer could be extracted from this format.", filename, mimeType)
}
