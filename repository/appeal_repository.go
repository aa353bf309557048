package repository

import (
	"context"
	"fmt"

	"appealdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppealRepository handles database operations for appeals
type AppealRepository struct {
	db *pgxpool.Pool
}

// NewAppealRepository creates a new appeal repository
func NewAppealRepository(db *pgxpool.Pool) *AppealRepository {
	return &AppealRepository{db: db}
}

// Create creates a new appeal
func (r *AppealRepository) Create(ctx context.Context, appeal *models.Appeal) error {
	if appeal.Status == "" {
		appeal.Status = models.StatusDraft
	}
	if appeal.ParsedData == nil {
		appeal.ParsedData = make(models.ParsedData)
	}

	query := `
		INSERT INTO appeals (
			user_id, denial_letter_url, parsed_data, generated_letter,
			generated_letter_url, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		appeal.UserID,
		appeal.DenialLetterURL,
		appeal.ParsedData,
		appeal.GeneratedLetter,
		appeal.GeneratedLetterURL,
		appeal.Status,
	).Scan(&appeal.ID, &appeal.CreatedAt, &appeal.UpdatedAt)

	return wrapQueryError("create appeal", err)
}

// GetByID retrieves an appeal by ID
func (r *AppealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	appeal := &models.Appeal{}
	query := `
		SELECT id, user_id, denial_letter_url, parsed_data, generated_letter,
			generated_letter_url, status, created_at, updated_at
		FROM appeals
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&appeal.ID,
		&appeal.UserID,
		&appeal.DenialLetterURL,
		&appeal.ParsedData,
		&appeal.GeneratedLetter,
		&appeal.GeneratedLetterURL,
		&appeal.Status,
		&appeal.CreatedAt,
		&appeal.UpdatedAt,
	)
	if err != nil {
		return nil, wrapQueryError("get appeal", err)
	}

	if appeal.ParsedData == nil {
		appeal.ParsedData = make(models.ParsedData)
	}
	return appeal, nil
}

// ListByUserID retrieves appeals owned by a user, newest first, with an
// optional status filter.
func (r *AppealRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.AppealStatus, limit, offset int) ([]*models.Appeal, error) {
	query := `
		SELECT id, user_id, denial_letter_url, parsed_data, generated_letter,
			generated_letter_url, status, created_at, updated_at
		FROM appeals
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryError("list appeals", err)
	}
	defer rows.Close()

	var appeals []*models.Appeal
	for rows.Next() {
		appeal := &models.Appeal{}
		err := rows.Scan(
			&appeal.ID,
			&appeal.UserID,
			&appeal.DenialLetterURL,
			&appeal.ParsedData,
			&appeal.GeneratedLetter,
			&appeal.GeneratedLetterURL,
			&appeal.Status,
			&appeal.CreatedAt,
			&appeal.UpdatedAt,
		)
		if err != nil {
			return nil, wrapQueryError("list appeals", err)
		}
		if appeal.ParsedData == nil {
			appeal.ParsedData = make(models.ParsedData)
		}
		appeals = append(appeals, appeal)
	}

	return appeals, wrapQueryError("list appeals", rows.Err())
}

// UpdateFields applies a partial update to an appeal and returns the updated
// row. If the patch carries parsed data, it is shallow-merged into the stored
// facts key-by-key (incoming keys win, stored-only keys survive); the facts
// are never wholesale-replaced. All other patch fields overwrite outright.
func (r *AppealRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch *models.AppealPatch) (*models.Appeal, error) {
	appeal, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.UserID != nil {
		appeal.UserID = patch.UserID
	}
	if patch.DenialLetterURL != nil {
		appeal.DenialLetterURL = patch.DenialLetterURL
	}
	if len(patch.ParsedData) > 0 {
		appeal.ParsedData = appeal.ParsedData.Merge(patch.ParsedData)
	}
	if patch.GeneratedLetter != nil {
		appeal.GeneratedLetter = patch.GeneratedLetter
	}
	if patch.GeneratedLetterURL != nil {
		appeal.GeneratedLetterURL = patch.GeneratedLetterURL
	}
	if patch.Status != nil {
		appeal.Status = *patch.Status
	}

	query := `
		UPDATE appeals SET
			user_id = $2,
			denial_letter_url = $3,
			parsed_data = $4,
			generated_letter = $5,
			generated_letter_url = $6,
			status = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRow(
		ctx, query,
		appeal.ID,
		appeal.UserID,
		appeal.DenialLetterURL,
		appeal.ParsedData,
		appeal.GeneratedLetter,
		appeal.GeneratedLetterURL,
		appeal.Status,
	).Scan(&appeal.UpdatedAt)
	if err != nil {
		return nil, wrapQueryError("update appeal", err)
	}

	return appeal, nil
}

// Delete deletes an appeal
func (r *AppealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appeals WHERE id = $1`, id)
	if err != nil {
		return wrapQueryError("delete appeal", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete appeal: %w", ErrNotFound)
	}
	return nil
}
