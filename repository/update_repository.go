package repository

import (
	"context"
	"fmt"

	"appealdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UpdateRepository handles database operations for appeal notes
type UpdateRepository struct {
	db *pgxpool.Pool
}

// NewUpdateRepository creates a new update repository
func NewUpdateRepository(db *pgxpool.Pool) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// Create creates a new update
func (r *UpdateRepository) Create(ctx context.Context, update *models.Update) error {
	query := `
		INSERT INTO updates (appeal_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		update.AppealID,
		update.Title,
		update.Content,
	).Scan(&update.ID, &update.CreatedAt, &update.UpdatedAt)

	return wrapQueryError("create update", err)
}

// GetByID retrieves an update by ID
func (r *UpdateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Update, error) {
	update := &models.Update{}
	query := `
		SELECT id, appeal_id, title, content, created_at, updated_at
		FROM updates
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&update.ID,
		&update.AppealID,
		&update.Title,
		&update.Content,
		&update.CreatedAt,
		&update.UpdatedAt,
	)
	if err != nil {
		return nil, wrapQueryError("get update", err)
	}

	return update, nil
}

// ListByAppealID retrieves all updates attached to an appeal, newest first
func (r *UpdateRepository) ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Update, error) {
	query := `
		SELECT id, appeal_id, title, content, created_at, updated_at
		FROM updates
		WHERE appeal_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, appealID)
	if err != nil {
		return nil, wrapQueryError("list updates", err)
	}
	defer rows.Close()

	var updates []*models.Update
	for rows.Next() {
		update := &models.Update{}
		err := rows.Scan(
			&update.ID,
			&update.AppealID,
			&update.Title,
			&update.Content,
			&update.CreatedAt,
			&update.UpdatedAt,
		)
		if err != nil {
			return nil, wrapQueryError("list updates", err)
		}
		updates = append(updates, update)
	}

	return updates, wrapQueryError("list updates", rows.Err())
}

// UpdateByID updates the title and content of an update
func (r *UpdateRepository) UpdateByID(ctx context.Context, id uuid.UUID, title, content string) (*models.Update, error) {
	update := &models.Update{ID: id, Title: title, Content: content}
	query := `
		UPDATE updates SET
			title = $2,
			content = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING appeal_id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, id, title, content).Scan(
		&update.AppealID,
		&update.CreatedAt,
		&update.UpdatedAt,
	)
	if err != nil {
		return nil, wrapQueryError("update update", err)
	}

	return update, nil
}

// Delete deletes an update
func (r *UpdateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM updates WHERE id = $1`, id)
	if err != nil {
		return wrapQueryError("delete update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete update: %w", ErrNotFound)
	}
	return nil
}
