package repository

import (
	"context"
	"fmt"
	"strings"

	"clausewise-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClauseRepository handles database operations for document clauses
type ClauseRepository struct {
	db *pgxpool.Pool
}

// NewClauseRepository creates a new clause repository
func NewClauseRepository(db *pgxpool.Pool) *ClauseRepository {
	return &ClauseRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Create inserts one clause record
func (r *ClauseRepository) Create(ctx context.Context, clause *models.DocumentClause) error {
	query := `
		INSERT INTO document_clauses (
			document_id, clause_text, section, clause_number, embedding
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	var embedding interface{}
	if len(clause.Embedding) > 0 {
		embedding = formatVector(clause.Embedding)
	}

	err := r.db.QueryRow(
		ctx, query,
		clause.DocumentID,
		clause.ClauseText,
		clause.Section,
		clause.ClauseNumber,
		embedding,
	).Scan(&clause.ID, &clause.CreatedAt)

	return err
}

// CreateBatch inserts the full clause set of a document in order
func (r *ClauseRepository) CreateBatch(ctx context.Context, clauses []*models.DocumentClause) error {
	for _, clause := range clauses {
		if err := r.Create(ctx, clause); err != nil {
			return fmt.Errorf("failed to insert clause: %w", err)
		}
	}
	return nil
}

// ListByDocumentID retrieves all clauses of a document in insertion order
func (r *ClauseRepository) ListByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.DocumentClause, error) {
	query := `
		SELECT id, document_id, clause_text, section, clause_number, created_at
		FROM document_clauses
		WHERE document_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clauses []*models.DocumentClause
	for rows.Next() {
		clause := &models.DocumentClause{}
		err := rows.Scan(
			&clause.ID,
			&clause.DocumentID,
			&clause.ClauseText,
			&clause.Section,
			&clause.ClauseNumber,
			&clause.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	return clauses, rows.Err()
}

// ListTexts returns the flat clause-text corpus for a user, drawn only
// from documents that finished ingestion.
func (r *ClauseRepository) ListTexts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT dc.clause_text
		FROM document_clauses dc
		JOIN documents d ON d.id = dc.document_id
		WHERE d.user_id = $1 AND d.processed = true
		ORDER BY dc.created_at, dc.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}

	return texts, rows.Err()
}
