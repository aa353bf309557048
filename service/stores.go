package service

import (
	"context"

	"appealdraft-backend/models"

	"github.com/google/uuid"
)

// AppealStore is the persistence surface the services need for appeals.
// *repository.AppealRepository satisfies it; tests substitute fakes.
type AppealStore interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, status *models.AppealStatus, limit, offset int) ([]*models.Appeal, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch *models.AppealPatch) (*models.Appeal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentStore is the persistence surface for supporting documents.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Document, error)
	CountByAppealID(ctx context.Context, appealID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateStore is the persistence surface for appeal notes.
type UpdateStore interface {
	Create(ctx context.Context, update *models.Update) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Update, error)
	ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Update, error)
	UpdateByID(ctx context.Context, id uuid.UUID, title, content string) (*models.Update, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunStore is the persistence surface for pipeline runs.
type RunStore interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error)
	GetByAppealID(ctx context.Context, appealID uuid.UUID) (*models.PipelineRun, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStage string, stages models.StageStates) error
	Complete(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
}
