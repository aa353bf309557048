package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"appealdraft-backend/models"
	"appealdraft-backend/repository"

	"github.com/google/uuid"
)

// In-memory fakes for the store and adapter interfaces. They mirror the
// repository semantics the services rely on: not-found surfaces as
// repository.ErrNotFound, and UpdateFields merges parsed data instead of
// replacing it.

type fakeAppealStore struct {
	appeals map[uuid.UUID]*models.Appeal

	createErr error
	getErr    error
	updateErr error
}

func newFakeAppealStore() *fakeAppealStore {
	return &fakeAppealStore{appeals: make(map[uuid.UUID]*models.Appeal)}
}

func cloneAppeal(a *models.Appeal) *models.Appeal {
	c := *a
	c.ParsedData = a.ParsedData.Clone()
	return &c
}

func (f *fakeAppealStore) Create(ctx context.Context, appeal *models.Appeal) error {
	if f.createErr != nil {
		return f.createErr
	}
	if appeal.ID == uuid.Nil {
		appeal.ID = uuid.New()
	}
	appeal.CreatedAt = time.Now()
	appeal.UpdatedAt = appeal.CreatedAt
	f.appeals[appeal.ID] = cloneAppeal(appeal)
	return nil
}

func (f *fakeAppealStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	appeal, ok := f.appeals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAppeal(appeal), nil
}

func (f *fakeAppealStore) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.AppealStatus, limit, offset int) ([]*models.Appeal, error) {
	var out []*models.Appeal
	for _, appeal := range f.appeals {
		if appeal.UserID == nil || *appeal.UserID != userID {
			continue
		}
		if status != nil && appeal.Status != *status {
			continue
		}
		out = append(out, cloneAppeal(appeal))
	}
	return out, nil
}

func (f *fakeAppealStore) UpdateFields(ctx context.Context, id uuid.UUID, patch *models.AppealPatch) (*models.Appeal, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	appeal, ok := f.appeals[id]
	if !ok {
		return nil, repository.ErrNotFound
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
	appeal.UpdatedAt = time.Now()
	return cloneAppeal(appeal), nil
}

func (f *fakeAppealStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.appeals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.appeals, id)
	return nil
}

type fakeDocumentStore struct {
	documents map[uuid.UUID]*models.Document

	createErr error
	countErr  error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{documents: make(map[uuid.UUID]*models.Document)}
}

func (f *fakeDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()
	copied := *doc
	f.documents[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, ok := f.documents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentStore) ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range f.documents {
		if doc.AppealID == appealID {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) CountByAppealID(ctx context.Context, appealID uuid.UUID) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, doc := range f.documents {
		if doc.AppealID == appealID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.documents[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.documents, id)
	return nil
}

type fakeUpdateStore struct {
	updates map[uuid.UUID]*models.Update
}

func newFakeUpdateStore() *fakeUpdateStore {
	return &fakeUpdateStore{updates: make(map[uuid.UUID]*models.Update)}
}

func (f *fakeUpdateStore) Create(ctx context.Context, update *models.Update) error {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	update.CreatedAt = time.Now()
	update.UpdatedAt = update.CreatedAt
	copied := *update
	f.updates[update.ID] = &copied
	return nil
}

func (f *fakeUpdateStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Update, error) {
	update, ok := f.updates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *update
	return &copied, nil
}

func (f *fakeUpdateStore) ListByAppealID(ctx context.Context, appealID uuid.UUID) ([]*models.Update, error) {
	var out []*models.Update
	for _, update := range f.updates {
		if update.AppealID == appealID {
			copied := *update
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeUpdateStore) UpdateByID(ctx context.Context, id uuid.UUID, title, content string) (*models.Update, error) {
	update, ok := f.updates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	update.Title = title
	update.Content = content
	update.UpdatedAt = time.Now()
	copied := *update
	return &copied, nil
}

func (f *fakeUpdateStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.updates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.updates, id)
	return nil
}

type fakeRunStore struct {
	runs      map[uuid.UUID]*models.PipelineRun
	order     []uuid.UUID
	completed []uuid.UUID
	failed    []uuid.UUID
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[uuid.UUID]*models.PipelineRun)}
}

func (f *fakeRunStore) Create(ctx context.Context, run *models.PipelineRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()
	copied := *run
	f.runs[run.ID] = &copied
	f.order = append(f.order, run.ID)
	return nil
}

func (f *fakeRunStore) GetByAppealID(ctx context.Context, appealID uuid.UUID) (*models.PipelineRun, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		run := f.runs[f.order[i]]
		if run.AppealID == appealID {
			copied := *run
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRunStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *run
	return &copied, nil
}

func (f *fakeRunStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentStage string, stages models.StageStates) error {
	run, ok := f.runs[id]
	if !ok {
		return repository.ErrNotFound
	}
	run.Status = models.RunStatusInProgress
	run.CurrentStage = &currentStage
	run.Stages = stages
	return nil
}

func (f *fakeRunStore) Complete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.runs[id]; !ok {
		return repository.ErrNotFound
	}
	f.runs[id].Status = models.RunStatusCompleted
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRunStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	if _, ok := f.runs[id]; !ok {
		return repository.ErrNotFound
	}
	f.runs[id].Status = models.RunStatusFailed
	f.runs[id].ErrorMessage = &errorMessage
	f.failed = append(f.failed, id)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte

	uploadErrs map[string]error // keyed by a substring of the object name
	signErr    error
	deleted    []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, name string, data io.Reader) (string, error) {
	for substr, err := range f.uploadErrs {
		if bytes.Contains([]byte(name), []byte(substr)) {
			return "", err
		}
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.objects[name] = content
	return name, nil
}

func (f *fakeStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	content, ok := f.objects[storagePath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, storagePath string) error {
	f.deleted = append(f.deleted, storagePath)
	delete(f.objects, storagePath)
	return nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://signed.example.com/%s?ttl=%d", storagePath, int(ttl.Seconds())), nil
}

type fakeExtractor struct {
	facts models.ParsedData
	err   error

	lastURL string
}

func (f *fakeExtractor) Extract(ctx context.Context, documentURL string) (models.ParsedData, error) {
	f.lastURL = documentURL
	if f.err != nil {
		return nil, f.err
	}
	return f.facts.Clone(), nil
}

type fakeDrafter struct {
	letter string
	err    error

	lastSheet FactSheet
}

func (f *fakeDrafter) Draft(ctx context.Context, sheet FactSheet) (string, error) {
	f.lastSheet = sheet
	if f.err != nil {
		return "", f.err
	}
	return f.letter, nil
}
