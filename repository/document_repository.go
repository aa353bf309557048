package repository

import (
	"context"
	"fmt"

	"appealdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for supporting documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (
			appeal_id, file_name, file_url, file_type, file_size
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.AppealID,
		doc.FileName,
		doc.FileURL,
		doc.FileType,
		doc.FileSize,
	).Scan(&doc.ID, &doc.CreatedAt)

	return wrapQueryError("create document", err)
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, appeal_id, file_name, file_url, file_type, file_size, created_at
		FROM documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.AppealID,
		&doc.FileName,
		&doc.FileURL,
		&doc.FileType,
		&doc.FileSize,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, wrapQueryError("get document", err)
	}

	return doc, nil
}

// ListByAppealID retrieves all documents attached to an appeal
func (r *DocumentRepository) ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, appeal_id, file_name, file_url, file_type, file_size, created_at
		FROM documents
		WHERE appeal_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, appealID)
	if err != nil {
		return nil, wrapQueryError("list documents", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.AppealID,
			&doc.FileName,
			&doc.FileURL,
			&doc.FileType,
			&doc.FileSize,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, wrapQueryError("list documents", err)
		}
		docs = append(docs, doc)
	}

	return docs, wrapQueryError("list documents", rows.Err())
}

// CountByAppealID counts the documents attached to an appeal
func (r *DocumentRepository) CountByAppealID(ctx context.Context, appealID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE appeal_id = $1`, appealID).Scan(&count)
	if err != nil {
		return 0, wrapQueryError("count documents", err)
	}
	return count, nil
}

// Delete deletes a document record
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return wrapQueryError("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document: %w", ErrNotFound)
	}
	return nil
}
