package service

import (
	"context"
	"errors"
	"testing"

	"appealdraft-backend/models"

	"github.com/google/uuid"
)

func newTestAppealService(appeals *fakeAppealStore) *AppealService {
	return NewAppealService(
		WithAppealStore(appeals),
		WithDocumentStore(newFakeDocumentStore()),
		WithUpdateStore(newFakeUpdateStore()),
		WithFileStorage(newFakeStorage()),
	)
}

func TestCreateAppealAnonymous(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	appeal, err := svc.CreateAppeal(context.Background(), nil, CreateAppealRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appeal.UserID != nil {
		t.Error("anonymous appeal should have no owner")
	}
	if appeal.Status != models.StatusDraft {
		t.Errorf("new appeal should be draft, got %s", appeal.Status)
	}
	if appeal.ParsedData == nil {
		t.Error("parsed data should be initialized")
	}
}

func TestGetAppealStrictOwnership(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	owner := uuid.New()
	other := uuid.New()
	appeal, err := svc.CreateAppeal(context.Background(), &owner, CreateAppealRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetAppeal(context.Background(), &owner, appeal.ID); err != nil {
		t.Errorf("owner read should succeed: %v", err)
	}
	if _, err := svc.GetAppeal(context.Background(), &other, appeal.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner read should be forbidden, got %v", err)
	}
	if _, err := svc.GetAppeal(context.Background(), nil, appeal.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous read of owned appeal should be forbidden, got %v", err)
	}
	if _, err := svc.GetAppeal(context.Background(), &owner, uuid.New()); !errors.Is(err, ErrAppealNotFound) {
		t.Errorf("missing appeal should be ErrAppealNotFound, got %v", err)
	}
}

func TestUpdateAppealMergesFacts(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	appeal, err := svc.CreateAppeal(context.Background(), nil, CreateAppealRequest{
		ParsedData: models.ParsedData{"firstName": "Jane", "policyNumber": "POL-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two sequential wizard-step patches: the second must not wipe the first.
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"claimNumber": "CLM-1"},
	}); err != nil {
		t.Fatalf("first patch failed: %v", err)
	}
	updated, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"policyNumber": "POL-2"},
	})
	if err != nil {
		t.Fatalf("second patch failed: %v", err)
	}

	want := models.ParsedData{"firstName": "Jane", "policyNumber": "POL-2", "claimNumber": "CLM-1"}
	for k, v := range want {
		if updated.ParsedData[k] != v {
			t.Errorf("key %s: got %q, want %q", k, updated.ParsedData[k], v)
		}
	}
}

func TestUpdateAppealPermissiveAnonymous(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	owner := uuid.New()
	appeal, _ := svc.CreateAppeal(context.Background(), &owner, CreateAppealRequest{})

	// Anonymous updates pass the permissive gate even on owned appeals.
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"dob": "1970-01-01"},
	}); err != nil {
		t.Errorf("anonymous update should pass the permissive gate: %v", err)
	}

	// A different authenticated actor is still rejected.
	other := uuid.New()
	if _, err := svc.UpdateAppeal(context.Background(), &other, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"dob": "1980-01-01"},
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign actor should be forbidden, got %v", err)
	}
}

func TestUpdateAppealClaimsOwnership(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	appeal, _ := svc.CreateAppeal(context.Background(), nil, CreateAppealRequest{})

	actor := uuid.New()
	updated, err := svc.UpdateAppeal(context.Background(), &actor, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"firstName": "Jane"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.UserID == nil || *updated.UserID != actor {
		t.Error("first authenticated write should claim the unowned appeal")
	}
}

func TestUpdateAppealStateMachine(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	appeal, _ := svc.CreateAppeal(context.Background(), nil, CreateAppealRequest{})

	// draft -> approved skips submission.
	approved := models.StatusApproved
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &approved}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skipping submitted should fail, got %v", err)
	}

	submitted := models.StatusSubmitted
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &submitted}); err != nil {
		t.Fatalf("draft -> submitted should succeed: %v", err)
	}

	// Backward move.
	draft := models.StatusDraft
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &draft}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submitted -> draft should fail, got %v", err)
	}

	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &approved}); err != nil {
		t.Fatalf("submitted -> approved should succeed: %v", err)
	}

	denied := models.StatusDenied
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &denied}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approved -> denied should fail, got %v", err)
	}

	bogus := models.AppealStatus("archived")
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &bogus}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("unknown status should fail, got %v", err)
	}
}

func TestUpdateAppealFrozenAfterSubmit(t *testing.T) {
	store := newFakeAppealStore()
	svc := newTestAppealService(store)

	appeal, _ := svc.CreateAppeal(context.Background(), nil, CreateAppealRequest{
		ParsedData: models.ParsedData{"firstName": "Jane"},
	})
	submitted := models.StatusSubmitted
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &submitted}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{
		ParsedData: models.ParsedData{"firstName": "Janet"},
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("fact edits after submit should fail, got %v", err)
	}

	letter := "revised text"
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{
		GeneratedLetter: &letter,
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("letter edits after submit should fail, got %v", err)
	}

	// A decision alone still moves through.
	approved := models.StatusApproved
	if _, err := svc.UpdateAppeal(context.Background(), nil, appeal.ID, &models.AppealPatch{Status: &approved}); err != nil {
		t.Errorf("status-only update after submit should succeed: %v", err)
	}
}

func TestDeleteAppealRemovesBlobs(t *testing.T) {
	store := newFakeAppealStore()
	files := newFakeStorage()
	svc := NewAppealService(WithAppealStore(store), WithFileStorage(files))

	owner := uuid.New()
	denialURL := "owner-1-denial.pdf"
	letterURL := "appeal-1-letter.pdf"
	appeal, _ := svc.CreateAppeal(context.Background(), &owner, CreateAppealRequest{DenialLetterURL: &denialURL})
	if _, err := svc.UpdateAppeal(context.Background(), &owner, appeal.ID, &models.AppealPatch{GeneratedLetterURL: &letterURL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := uuid.New()
	if err := svc.DeleteAppeal(context.Background(), other, appeal.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete should be forbidden, got %v", err)
	}

	if err := svc.DeleteAppeal(context.Background(), owner, appeal.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(files.deleted) != 2 {
		t.Errorf("expected both blobs deleted, got %v", files.deleted)
	}
	if _, err := svc.GetAppeal(context.Background(), &owner, appeal.ID); !errors.Is(err, ErrAppealNotFound) {
		t.Errorf("deleted appeal should be gone, got %v", err)
	}
}

func TestUpdatesOwnershipThroughParent(t *testing.T) {
	store := newFakeAppealStore()
	updates := newFakeUpdateStore()
	svc := NewAppealService(WithAppealStore(store), WithUpdateStore(updates))

	owner := uuid.New()
	other := uuid.New()
	appeal, _ := svc.CreateAppeal(context.Background(), &owner, CreateAppealRequest{})

	note, err := svc.CreateUpdate(context.Background(), owner, appeal.ID, "Called insurer", "They asked for the physician letter.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.CreateUpdate(context.Background(), other, appeal.ID, "x", "y"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign note creation should be forbidden, got %v", err)
	}
	if _, err := svc.EditUpdate(context.Background(), other, note.ID, "x", "y"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign note edit should be forbidden, got %v", err)
	}

	edited, err := svc.EditUpdate(context.Background(), owner, note.ID, "Called insurer", "Resolved.")
	if err != nil {
		t.Fatalf("owner edit failed: %v", err)
	}
	if edited.Content != "Resolved." {
		t.Errorf("edit not applied: %q", edited.Content)
	}

	if err := svc.DeleteUpdate(context.Background(), owner, note.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := svc.EditUpdate(context.Background(), owner, note.ID, "a", "b"); !errors.Is(err, ErrUpdateNotFound) {
		t.Errorf("deleted note should be ErrUpdateNotFound, got %v", err)
	}
}
