package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"appealdraft-backend/models"
	"appealdraft-backend/render"
	"appealdraft-backend/storage"

	"github.com/google/uuid"
)

// PipelineService orchestrates the appeal letter pipeline: store the denial
// letter, extract facts, draft prose, render the final document, persist.
// Within one operation the steps are strictly sequential; across appeals
// operations are independent and share no mutable state.
type PipelineService struct {
	appeals   AppealStore
	documents DocumentStore
	runs      RunStore
	files     storage.Storage
	extractor Extractor
	drafter   Drafter
}

// PipelineServiceOption is a functional option for PipelineService
type PipelineServiceOption func(*PipelineService)

// PipelineWithAppealStore sets the appeal store
func PipelineWithAppealStore(store AppealStore) PipelineServiceOption {
	return func(s *PipelineService) {
		s.appeals = store
	}
}

// PipelineWithDocumentStore sets the document store
func PipelineWithDocumentStore(store DocumentStore) PipelineServiceOption {
	return func(s *PipelineService) {
		s.documents = store
	}
}

// PipelineWithRunStore sets the pipeline run store
func PipelineWithRunStore(store RunStore) PipelineServiceOption {
	return func(s *PipelineService) {
		s.runs = store
	}
}

// PipelineWithFileStorage sets the artifact storage
func PipelineWithFileStorage(files storage.Storage) PipelineServiceOption {
	return func(s *PipelineService) {
		s.files = files
	}
}

// PipelineWithExtractor sets the document-analysis adapter
func PipelineWithExtractor(extractor Extractor) PipelineServiceOption {
	return func(s *PipelineService) {
		s.extractor = extractor
	}
}

// PipelineWithDrafter sets the letter-generation adapter
func PipelineWithDrafter(drafter Drafter) PipelineServiceOption {
	return func(s *PipelineService) {
		s.drafter = drafter
	}
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(opts ...PipelineServiceOption) *PipelineService {
	s := &PipelineService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	// signedURLTTL bounds how long a letter read link stays valid.
	signedURLTTL = time.Hour
	// analysisURLTTL bounds the read link handed to the analysis service.
	analysisURLTTL = 15 * time.Minute
)

// UploadFile carries one uploaded file through the pipeline
type UploadFile struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ExtractionResult is what ExtractFromLetter hands back: the caller decides
// which appeal to attach it to via a later update.
type ExtractionResult struct {
	ParsedData      models.ParsedData
	DenialLetterURL string
}

// ExtractFromLetter stores the raw uploaded denial letter and runs document
// analysis against it. Nothing is persisted on an appeal here. On analysis
// failure the stored blob is deliberately retained: an orphaned artifact is
// cheaper than losing the claimant's only copy of the letter.
func (s *PipelineService) ExtractFromLetter(ctx context.Context, actor *uuid.UUID, file UploadFile) (*ExtractionResult, error) {
	if s.files == nil {
		return nil, errors.New("file storage not set")
	}
	if s.extractor == nil {
		return nil, errors.New("extractor not set")
	}

	name := storage.ObjectName(actor, file.FileName)
	location, err := s.files.Upload(ctx, name, file.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store denial letter: %w", err)
	}

	readURL, err := s.files.SignedURL(ctx, location, analysisURLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	facts, err := s.extractor.Extract(ctx, readURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return &ExtractionResult{
		ParsedData:      facts,
		DenialLetterURL: location,
	}, nil
}

// DraftLetter builds a fact sheet from the supplied facts, generates the
// appeal letter prose, and persists it on the appeal. The appeal is loaded
// again right before the write so a deletion during the (slow) generation
// call surfaces as not-found instead of being silently swallowed.
func (s *PipelineService) DraftLetter(ctx context.Context, appealID uuid.UUID, facts models.ParsedData) (string, error) {
	if s.appeals == nil {
		return "", errors.New("appeal store not set")
	}
	if s.drafter == nil {
		return "", errors.New("drafter not set")
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return "", mapNotFound(err, ErrAppealNotFound)
	}
	if appeal.Status != models.StatusDraft {
		return "", fmt.Errorf("%w: appeal is %s and can no longer be edited", ErrInvalidTransition, appeal.Status)
	}
	if facts == nil {
		facts = appeal.ParsedData
	}

	run := s.startRun(ctx, appealID, models.StageDraft, models.StagePersist)

	s.advanceRun(ctx, run, models.StageDraft)
	sheet := BuildFactSheet(facts)
	letter, err := s.drafter.Draft(ctx, sheet)
	if err != nil {
		s.failRun(ctx, run, err)
		return "", fmt.Errorf("%w: %v", ErrDraftingFailed, err)
	}

	s.advanceRun(ctx, run, models.StagePersist)
	// Reload: the appeal may have been deleted while the model was drafting.
	if _, err := s.appeals.GetByID(ctx, appealID); err != nil {
		s.failRun(ctx, run, err)
		return "", mapNotFound(err, ErrAppealNotFound)
	}

	if _, err := s.appeals.UpdateFields(ctx, appealID, &models.AppealPatch{GeneratedLetter: &letter}); err != nil {
		s.failRun(ctx, run, err)
		return "", mapNotFound(err, ErrAppealNotFound)
	}

	s.completeRun(ctx, run)
	return letter, nil
}

// RenderLetter renders the final (possibly hand-edited) letter text to a PDF,
// uploads it, and records both the document location and the final text on
// the appeal. A missing appeal is reported through the found flag, not an
// error, so the boundary can map it to 404 without treating it as a fault.
// Rendering never changes the appeal's status.
func (s *PipelineService) RenderLetter(ctx context.Context, appealID uuid.UUID, finalText string) (string, bool, error) {
	if s.appeals == nil {
		return "", false, errors.New("appeal store not set")
	}
	if s.files == nil {
		return "", false, errors.New("file storage not set")
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(mapNotFound(err, ErrAppealNotFound), ErrAppealNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if appeal.Status != models.StatusDraft {
		return "", true, fmt.Errorf("%w: appeal is %s and can no longer be edited", ErrInvalidTransition, appeal.Status)
	}

	run := s.startRun(ctx, appealID, models.StageRender, models.StagePersist)

	s.advanceRun(ctx, run, models.StageRender)
	pdfBytes, _, err := render.Letter(finalText)
	if err != nil {
		s.failRun(ctx, run, err)
		return "", true, err
	}

	name := storage.LetterObjectName(appealID)
	location, err := s.files.Upload(ctx, name, bytes.NewReader(pdfBytes))
	if err != nil {
		s.failRun(ctx, run, err)
		return "", true, fmt.Errorf("failed to store rendered letter: %w", err)
	}

	s.advanceRun(ctx, run, models.StagePersist)
	patch := &models.AppealPatch{
		GeneratedLetter:    &finalText,
		GeneratedLetterURL: &location,
	}
	if _, err := s.appeals.UpdateFields(ctx, appealID, patch); err != nil {
		s.failRun(ctx, run, err)
		return "", true, mapNotFound(err, ErrAppealNotFound)
	}

	s.completeRun(ctx, run)
	return location, true, nil
}

// SignedLetterURL issues a time-limited read URL for a stored letter.
func (s *PipelineService) SignedLetterURL(ctx context.Context, storagePath string) (string, error) {
	if s.files == nil {
		return "", errors.New("file storage not set")
	}
	return s.files.SignedURL(ctx, storagePath, signedURLTTL)
}

// CompleteSubmission is the fully-assembled appeal the wizard's last step
// produces: facts, final letter text, and the stored denial letter location.
type CompleteSubmission struct {
	ParsedData      models.ParsedData
	GeneratedLetter string
	DenialLetterURL *string
}

// FinalizeAndPersist renders the submission's letter, uploads it, and
// creates a brand-new draft appeal carrying every artifact. This is the
// save-as-new entry point; it never reuses an existing appeal id.
func (s *PipelineService) FinalizeAndPersist(ctx context.Context, actor *uuid.UUID, sub CompleteSubmission) (uuid.UUID, error) {
	if s.appeals == nil {
		return uuid.Nil, errors.New("appeal store not set")
	}
	if s.files == nil {
		return uuid.Nil, errors.New("file storage not set")
	}

	pdfBytes, _, err := render.Letter(sub.GeneratedLetter)
	if err != nil {
		return uuid.Nil, err
	}

	name := storage.LetterObjectName(uuid.New())
	location, err := s.files.Upload(ctx, name, bytes.NewReader(pdfBytes))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store rendered letter: %w", err)
	}

	appeal := &models.Appeal{
		UserID:             actor,
		DenialLetterURL:    sub.DenialLetterURL,
		ParsedData:         sub.ParsedData,
		GeneratedLetter:    &sub.GeneratedLetter,
		GeneratedLetterURL: &location,
		Status:             models.StatusDraft,
	}
	if appeal.ParsedData == nil {
		appeal.ParsedData = make(models.ParsedData)
	}

	if err := s.appeals.Create(ctx, appeal); err != nil {
		return uuid.Nil, err
	}
	return appeal.ID, nil
}

// UploadOutcome reports what happened to one file of a batch upload, so
// callers can see exactly which items failed without parsing logs.
type UploadOutcome struct {
	FileName string           `json:"file_name"`
	Document *models.Document `json:"document,omitempty"`
	Err      error            `json:"-"`
}

// UploadDocuments attaches a batch of supporting files to an appeal the
// actor owns (strict posture). Files are processed independently and
// sequentially; a single file's failure is recorded in its outcome and the
// batch continues. Only a batch with zero successes fails as a whole.
// Files beyond the appeal's remaining document capacity are skipped, not
// grounds for aborting the batch.
func (s *PipelineService) UploadDocuments(ctx context.Context, appealID uuid.UUID, actor uuid.UUID, files []UploadFile) ([]UploadOutcome, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}
	if s.files == nil {
		return nil, errors.New("file storage not set")
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}
	if !isAuthorized(PostureStrict, &actor, appeal.UserID) {
		return nil, ErrForbidden
	}

	existing, err := s.documents.CountByAppealID(ctx, appealID)
	if err != nil {
		return nil, err
	}
	remaining := models.MaxDocumentsPerAppeal - existing

	outcomes := make([]UploadOutcome, 0, len(files))
	succeeded := 0

	for _, file := range files {
		outcome := UploadOutcome{FileName: file.FileName}

		if remaining <= 0 {
			outcome.Err = fmt.Errorf("appeal already has %d of %d documents", existing+succeeded, models.MaxDocumentsPerAppeal)
			log.Printf("Warning: skipping %s: %v", file.FileName, outcome.Err)
			outcomes = append(outcomes, outcome)
			continue
		}

		name := storage.ObjectName(&actor, file.FileName)
		location, err := s.files.Upload(ctx, name, file.Data)
		if err != nil {
			outcome.Err = fmt.Errorf("failed to store file: %w", err)
			log.Printf("Warning: failed to upload %s: %v", file.FileName, err)
			outcomes = append(outcomes, outcome)
			continue
		}

		doc := &models.Document{
			AppealID: appealID,
			FileName: file.FileName,
			FileURL:  location,
			FileType: file.ContentType,
			FileSize: file.Size,
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			outcome.Err = fmt.Errorf("failed to record file: %w", err)
			log.Printf("Warning: failed to record %s: %v", file.FileName, err)
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Document = doc
		outcomes = append(outcomes, outcome)
		succeeded++
		remaining--
	}

	if succeeded == 0 {
		return outcomes, ErrAllUploadsFailed
	}
	return outcomes, nil
}

// LatestRun returns the most recent pipeline run for an appeal the actor
// owns (strict posture), so clients can poll stage progress.
func (s *PipelineService) LatestRun(ctx context.Context, actor uuid.UUID, appealID uuid.UUID) (*models.PipelineRun, error) {
	if s.appeals == nil {
		return nil, errors.New("appeal store not set")
	}
	if s.runs == nil {
		return nil, errors.New("run store not set")
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return nil, mapNotFound(err, ErrAppealNotFound)
	}
	if !isAuthorized(PostureStrict, &actor, appeal.UserID) {
		return nil, ErrForbidden
	}

	run, err := s.runs.GetByAppealID(ctx, appealID)
	if err != nil {
		return nil, mapNotFound(err, ErrRunNotFound)
	}
	return run, nil
}

// Documents extracts the successfully created documents from a batch result.
func Documents(outcomes []UploadOutcome) []*models.Document {
	docs := make([]*models.Document, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Document != nil {
			docs = append(docs, o.Document)
		}
	}
	return docs
}

// startRun opens a pipeline run for the given stages. Run bookkeeping is
// best-effort: a run-store failure is logged, never fatal to the pipeline.
func (s *PipelineService) startRun(ctx context.Context, appealID uuid.UUID, stages ...models.PipelineStage) *models.PipelineRun {
	if s.runs == nil {
		return nil
	}
	run := &models.PipelineRun{
		AppealID: appealID,
		Status:   models.RunStatusPending,
		Stages:   models.NewStageStates(stages...),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.Printf("Warning: failed to create pipeline run: %v", err)
		return nil
	}
	return run
}

// advanceRun marks the given stage in progress and every earlier one done.
func (s *PipelineService) advanceRun(ctx context.Context, run *models.PipelineRun, stage models.PipelineStage) {
	if run == nil {
		return
	}
	for i := range run.Stages {
		if run.Stages[i].Stage == stage {
			run.Stages[i].Status = "in_progress"
			break
		}
		run.Stages[i].Status = "completed"
	}
	if err := s.runs.UpdateProgress(ctx, run.ID, string(stage), run.Stages); err != nil {
		log.Printf("Warning: failed to update pipeline run: %v", err)
	}
}

func (s *PipelineService) completeRun(ctx context.Context, run *models.PipelineRun) {
	if run == nil {
		return
	}
	if err := s.runs.Complete(ctx, run.ID); err != nil {
		log.Printf("Warning: failed to complete pipeline run: %v", err)
	}
}

func (s *PipelineService) failRun(ctx context.Context, run *models.PipelineRun, cause error) {
	if run == nil {
		return
	}
	if err := s.runs.Fail(ctx, run.ID, cause.Error()); err != nil {
		log.Printf("Warning: failed to mark pipeline run failed: %v", err)
	}
}
