package repository

import (
	"context"

	"clausewise-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, document *models.Document) error {
	query := `
		INSERT INTO documents (
			id, user_id, filename, mime_type, size, storage_path, extracted_text, processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		document.ID,
		document.UserID,
		document.Filename,
		document.MimeType,
		document.Size,
		document.StoragePath,
		document.ExtractedText,
		document.Processed,
	).Scan(&document.CreatedAt, &document.UpdatedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document := &models.Document{}
	query := `
		SELECT id, user_id, filename, mime_type, size, storage_path,
			extracted_text, processed, created_at, updated_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&document.ID,
		&document.UserID,
		&document.Filename,
		&document.MimeType,
		&document.Size,
		&document.StoragePath,
		&document.ExtractedText,
		&document.Processed,
		&document.CreatedAt,
		&document.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return document, nil
}

// ListByUserID retrieves all documents for a user, newest first
func (r *DocumentRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, filename, mime_type, size, storage_path,
			extracted_text, processed, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		document := &models.Document{}
		err := rows.Scan(
			&document.ID,
			&document.UserID,
			&document.Filename,
			&document.MimeType,
			&document.Size,
			&document.StoragePath,
			&document.ExtractedText,
			&document.Processed,
			&document.CreatedAt,
			&document.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// UpdateExtractedText stores the extracted text for a document
func (r *DocumentRepository) UpdateExtractedText(ctx context.Context, id uuid.UUID, text string) error {
	query := `
		UPDATE documents SET
			extracted_text = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, text)
	return err
}

// MarkProcessed flags a document as fully ingested. Only processed
// documents contribute clauses to the query path.
func (r *DocumentRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE documents SET
			processed = true,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	return err
}

// Delete deletes a document and its clauses (via FK cascade)
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
