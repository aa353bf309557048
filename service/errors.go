package service

import "errors"

var (
	ErrAppealNotFound    = errors.New("appeal not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrUpdateNotFound    = errors.New("update not found")
	ErrRunNotFound       = errors.New("pipeline run not found")
	ErrForbidden         = errors.New("forbidden: not the owner of this appeal")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrExtractionFailed  = errors.New("failed to extract data from denial letter")
	ErrDraftingFailed    = errors.New("failed to generate appeal letter text")
	ErrAllUploadsFailed  = errors.New("failed to upload any documents")
	ErrNoFiles           = errors.New("no files provided")
)
