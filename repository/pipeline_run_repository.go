package repository

import (
	"context"
	"time"

	"appealdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PipelineRunRepository handles database operations for pipeline runs
type PipelineRunRepository struct {
	db *pgxpool.Pool
}

// NewPipelineRunRepository creates a new pipeline run repository
func NewPipelineRunRepository(db *pgxpool.Pool) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

// Create creates a new pipeline run
func (r *PipelineRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (
			appeal_id, status, current_stage, stages, error_message
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		run.AppealID,
		run.Status,
		run.CurrentStage,
		run.Stages,
		run.ErrorMessage,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)

	return wrapQueryError("create pipeline run", err)
}

// GetByID retrieves a pipeline run by ID
func (r *PipelineRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	run := &models.PipelineRun{}
	query := `
		SELECT id, appeal_id, status, current_stage, stages, error_message,
			created_at, updated_at, completed_at
		FROM pipeline_runs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.AppealID,
		&run.Status,
		&run.CurrentStage,
		&run.Stages,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, wrapQueryError("get pipeline run", err)
	}

	if run.Stages == nil {
		run.Stages = make(models.StageStates, 0)
	}
	return run, nil
}

// GetByAppealID retrieves the latest pipeline run for an appeal
func (r *PipelineRunRepository) GetByAppealID(ctx context.Context, appealID uuid.UUID) (*models.PipelineRun, error) {
	run := &models.PipelineRun{}
	query := `
		SELECT id, appeal_id, status, current_stage, stages, error_message,
			created_at, updated_at, completed_at
		FROM pipeline_runs
		WHERE appeal_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, appealID).Scan(
		&run.ID,
		&run.AppealID,
		&run.Status,
		&run.CurrentStage,
		&run.Stages,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, wrapQueryError("get pipeline run by appeal", err)
	}

	if run.Stages == nil {
		run.Stages = make(models.StageStates, 0)
	}
	return run, nil
}

// UpdateProgress updates the current stage and stage list of a run
func (r *PipelineRunRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStage string, stages models.StageStates) error {
	query := `
		UPDATE pipeline_runs SET
			status = $2,
			current_stage = $3,
			stages = $4,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.RunStatusInProgress, currentStage, stages)
	return wrapQueryError("update pipeline run progress", err)
}

// Complete marks a pipeline run as completed
func (r *PipelineRunRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE pipeline_runs SET
			status = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.RunStatusCompleted, now)
	return wrapQueryError("complete pipeline run", err)
}

// Fail marks a pipeline run as failed
func (r *PipelineRunRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE pipeline_runs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.RunStatusFailed, errorMessage)
	return wrapQueryError("fail pipeline run", err)
}
