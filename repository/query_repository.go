package repository

import (
	"context"

	"clausewise-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryRepository handles database operations for queries and their results
type QueryRepository struct {
	db *pgxpool.Pool
}

// NewQueryRepository creates a new query repository
func NewQueryRepository(db *pgxpool.Pool) *QueryRepository {
	return &QueryRepository{db: db}
}

// CreateQuery persists a submitted query with its structured form
func (r *QueryRepository) CreateQuery(ctx context.Context, query *models.Query) error {
	sql := `
		INSERT INTO queries (user_id, query_text, structured)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, sql,
		query.UserID,
		query.QueryText,
		query.Structured,
	).Scan(&query.ID, &query.CreatedAt)

	return err
}

// CreateResult persists the decision produced for a query
func (r *QueryRepository) CreateResult(ctx context.Context, result *models.QueryResult) error {
	sql := `
		INSERT INTO query_results (
			query_id, decision, amount, deductible, coverage_details,
			justification, confidence_score, processing_time_ms, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, sql,
		result.QueryID,
		result.Decision,
		result.Amount,
		result.Deductible,
		result.CoverageDetails,
		result.Justification,
		result.ConfidenceScore,
		result.ProcessingTimeMs,
		result.Source,
	).Scan(&result.ID, &result.CreatedAt)

	return err
}

// GetQueryByID retrieves a query by ID
func (r *QueryRepository) GetQueryByID(ctx context.Context, id uuid.UUID) (*models.Query, error) {
	query := &models.Query{}
	sql := `
		SELECT id, user_id, query_text, structured, created_at
		FROM queries
		WHERE id = $1`

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&query.ID,
		&query.UserID,
		&query.QueryText,
		&query.Structured,
		&query.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return query, nil
}

// GetResultByQueryID retrieves the stored decision for a query
func (r *QueryRepository) GetResultByQueryID(ctx context.Context, queryID uuid.UUID) (*models.QueryResult, error) {
	result := &models.QueryResult{}
	sql := `
		SELECT id, query_id, decision, amount, deductible, coverage_details,
			justification, confidence_score, processing_time_ms, source, created_at
		FROM query_results
		WHERE query_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, sql, queryID).Scan(
		&result.ID,
		&result.QueryID,
		&result.Decision,
		&result.Amount,
		&result.Deductible,
		&result.CoverageDetails,
		&result.Justification,
		&result.ConfidenceScore,
		&result.ProcessingTimeMs,
		&result.Source,
		&result.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListByUserID retrieves a user's query history, newest first
func (r *QueryRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Query, error) {
	sql := `
		SELECT id, user_id, query_text, structured, created_at
		FROM queries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, sql, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []*models.Query
	for rows.Next() {
		query := &models.Query{}
		err := rows.Scan(
			&query.ID,
			&query.UserID,
			&query.QueryText,
			&query.Structured,
			&query.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}

	return queries, rows.Err()
}
