package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"appealdraft-backend/models"
	"appealdraft-backend/repository"
	"appealdraft-backend/storage"

	"github.com/google/uuid"
)

// AppealService handles business logic for appeals and their child records:
// ownership checks, the status state machine, and freeze-after-submit.
type AppealService struct {
	appeals   AppealStore
	documents DocumentStore
	updates   UpdateStore
	files     storage.Storage
}

// AppealServiceOption is a functional option for AppealService
type AppealServiceOption func(*AppealService)

// WithAppealStore sets the appeal store
func WithAppealStore(store AppealStore) AppealServiceOption {
	return func(s *AppealService) {
		s.appeals = store
	}
}

// WithDocumentStore sets the document store
func WithDocumentStore(store DocumentStore) AppealServiceOption {
	return func(s *AppealService) {
		s.documents = store
	}
}

// WithUpdateStore sets the update store
func WithUpdateStore(store UpdateStore) AppealServiceOption {
	return func(s *AppealService) {
		s.updates = store
	}
}

// WithFileStorage sets the artifact storage
func WithFileStorage(files storage.Storage) AppealServiceOption {
	return func(s *AppealService) {
		s.files = files
	}
}

// NewAppealService creates a new appeal service
func NewAppealService(opts ...AppealServiceOption) *AppealService {
	s := &AppealService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAppealRequest represents a request to create an appeal
type CreateAppealRequest struct {
	DenialLetterURL *string
	ParsedData      models.ParsedData
	GeneratedLetter *string
}

// CreateAppeal creates a new draft appeal. The actor may be nil: appeals can
// be started anonymously and claimed by a registered user later.
func (s *AppealService) CreateAppeal(ctx context.Context, actor *uuid.UUID, req CreateAppealRequest) (*models.Appeal, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}

	appeal := &models.Appeal{
		UserID:          actor,
		DenialLetterURL: req.DenialLetterURL,
		ParsedData:      req.ParsedData,
		GeneratedLetter: req.GeneratedLetter,
		Status:          models.StatusDraft,
	}
	if appeal.ParsedData == nil {
		appeal.ParsedData = make(models.ParsedData)
	}

	if err := s.appeals.Create(ctx, appeal); err != nil {
		return nil, err
	}
	return appeal, nil
}

// GetAppeal retrieves an appeal with a strict ownership check.
func (s *AppealService) GetAppeal(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*models.Appeal, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}

	appeal, err := s.appeals.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}

	if !isAuthorized(PostureStrict, actor, appeal.UserID) {
		return nil, ErrForbidden
	}
	return appeal, nil
}

// ListAppeals lists the appeals owned by a user, newest first, with an
// optional status filter.
func (s *AppealService) ListAppeals(ctx context.Context, owner uuid.UUID, status *models.AppealStatus, limit, offset int) ([]*models.Appeal, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}
	return s.appeals.ListByUserID(ctx, owner, status, limit, offset)
}

// UpdateAppeal applies a partial update with the permissive posture: the
// pre-registration wizard updates appeals before any account exists, so an
// anonymous actor bypasses the ownership check. A nil-owner appeal is
// claimed by the first authenticated writer. Status changes must follow the
// forward-only lifecycle, and once an appeal has left draft its parsed data
// and letter text are frozen.
func (s *AppealService) UpdateAppeal(ctx context.Context, actor *uuid.UUID, id uuid.UUID, patch *models.AppealPatch) (*models.Appeal, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}

	appeal, err := s.appeals.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}

	if !isAuthorized(PosturePermissive, actor, appeal.UserID) {
		return nil, ErrForbidden
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, *patch.Status)
		}
		if !appeal.Status.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appeal.Status, *patch.Status)
		}
	}

	// An appeal freezes once submitted: only status may still move forward.
	if appeal.Status != models.StatusDraft {
		if len(patch.ParsedData) > 0 || patch.GeneratedLetter != nil || patch.GeneratedLetterURL != nil || patch.DenialLetterURL != nil {
			return nil, fmt.Errorf("%w: appeal is %s and can no longer be edited", ErrInvalidTransition, appeal.Status)
		}
	}

	if appeal.UserID == nil && actor != nil && patch.UserID == nil {
		patch.UserID = actor
	}

	updated, err := s.appeals.UpdateFields(ctx, id, patch)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}
	return updated, nil
}

// DeleteAppeal deletes an appeal under the strict posture and best-effort
// deletes its stored blobs (denial letter, rendered letter).
func (s *AppealService) DeleteAppeal(ctx context.Context, actor uuid.UUID, id uuid.UUID) error {
	if s.appeals == nil {
		return errors.New("appeal store not set")
	}

	appeal, err := s.appeals.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrAppealNotFound)
	}

	if !isAuthorized(PostureStrict, &actor, appeal.UserID) {
		return ErrForbidden
	}

	if err := s.appeals.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrAppealNotFound)
	}

	if s.files != nil {
		for _, loc := range []*string{appeal.DenialLetterURL, appeal.GeneratedLetterURL} {
			if loc == nil {
				continue
			}
			if err := s.files.Delete(ctx, *loc); err != nil {
				log.Printf("Warning: failed to delete stored object %s: %v", *loc, err)
			}
		}
	}
	return nil
}

// ListDocuments lists an appeal's documents with ownership through the
// parent appeal.
func (s *AppealService) ListDocuments(ctx context.Context, actor uuid.UUID, appealID uuid.UUID) ([]*models.Document, error) {
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}

	if _, err := s.ownedAppeal(ctx, actor, appealID); err != nil {
		return nil, err
	}
	return s.documents.ListByAppealID(ctx, appealID)
}

// DeleteDocument deletes a document after checking ownership through its
// parent appeal; the backing stored object is deleted best-effort.
func (s *AppealService) DeleteDocument(ctx context.Context, actor uuid.UUID, documentID uuid.UUID) error {
	if s.documents == nil {
		return errors.New("document store not set")
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return mapNotFound(err, ErrDocumentNotFound)
	}

	if _, err := s.ownedAppeal(ctx, actor, doc.AppealID); err != nil {
		return err
	}

	if s.files != nil {
		if err := s.files.Delete(ctx, doc.FileURL); err != nil {
			log.Printf("Warning: failed to delete stored object %s: %v", doc.FileURL, err)
			// Keep going: the database row is the record of truth.
		}
	}

	return mapNotFound(s.documents.Delete(ctx, documentID), ErrDocumentNotFound)
}

// ListUpdates lists an appeal's notes with ownership through the parent.
func (s *AppealService) ListUpdates(ctx context.Context, actor uuid.UUID, appealID uuid.UUID) ([]*models.Update, error) {
	if s.updates == nil {
		return nil, errors.New("update store not set")
	}

	if _, err := s.ownedAppeal(ctx, actor, appealID); err != nil {
		return nil, err
	}
	return s.updates.ListByAppealID(ctx, appealID)
}

// CreateUpdate attaches a note to an appeal the actor owns.
func (s *AppealService) CreateUpdate(ctx context.Context, actor uuid.UUID, appealID uuid.UUID, title, content string) (*models.Update, error) {
	if s.updates == nil {
		return nil, errors.New("update store not set")
	}

	if _, err := s.ownedAppeal(ctx, actor, appealID); err != nil {
		return nil, err
	}

	update := &models.Update{
		AppealID: appealID,
		Title:    title,
		Content:  content,
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// EditUpdate edits a note after checking ownership through the parent appeal.
func (s *AppealService) EditUpdate(ctx context.Context, actor uuid.UUID, updateID uuid.UUID, title, content string) (*models.Update, error) {
	if s.updates == nil {
		return nil, errors.New("update store not set")
	}

	update, err := s.updates.GetByID(ctx, updateID)
	if err != nil {
		return nil, mapNotFound(err, ErrUpdateNotFound)
	}

	if _, err := s.ownedAppeal(ctx, actor, update.AppealID); err != nil {
		return nil, err
	}

	edited, err := s.updates.UpdateByID(ctx, updateID, title, content)
	if err != nil {
		return nil, mapNotFound(err, ErrUpdateNotFound)
	}
	return edited, nil
}

// DeleteUpdate deletes a note after checking ownership through the parent.
func (s *AppealService) DeleteUpdate(ctx context.Context, actor uuid.UUID, updateID uuid.UUID) error {
	if s.updates == nil {
		return errors.New("update store not set")
	}

	update, err := s.updates.GetByID(ctx, updateID)
	if err != nil {
		return mapNotFound(err, ErrUpdateNotFound)
	}

	if _, err := s.ownedAppeal(ctx, actor, update.AppealID); err != nil {
		return err
	}

	return mapNotFound(s.updates.Delete(ctx, updateID), ErrUpdateNotFound)
}

// ownedAppeal loads an appeal and enforces the strict posture for the actor.
func (s *AppealService) ownedAppeal(ctx context.Context, actor uuid.UUID, appealID uuid.UUID) (*models.Appeal, error) {
	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}
	if !isAuthorized(PostureStrict, &actor, appeal.UserID) {
		return nil, ErrForbidden
	}
	return appeal, nil
}

// mapNotFound converts repository-level not-found errors into the service's
// entity-specific sentinel while passing other errors through unchanged.
func mapNotFound(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
