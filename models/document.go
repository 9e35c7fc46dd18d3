package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded policy document
type Document struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Filename      string    `json:"filename"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	StoragePath   string    `json:"storage_path"`
	ExtractedText *string   `json:"extracted_text,omitempty"`
	Processed     bool      `json:"processed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentClause represents one clause candidate extracted from a document.
// Clauses are written once at ingestion and never updated; re-uploading a
// document creates a new document with a new clause set.
type DocumentClause struct {
	ID           uuid.UUID `json:"id"`
	DocumentID   uuid.UUID `json:"document_id"`
	ClauseText   string    `json:"clause_text"`
	Section      *string   `json:"section,omitempty"`
	ClauseNumber *string   `json:"clause_number,omitempty"`
	Embedding    []float64 `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClauseCandidate is the in-memory form of a clause produced by the
// extraction pipeline, before it is persisted as a DocumentClause.
type ClauseCandidate struct {
	Text         string  `json:"text"`
	Section      *string `json:"section,omitempty"`
	ClauseNumber *string `json:"clause_number,omitempty"`
}
