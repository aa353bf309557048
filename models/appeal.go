package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AppealStatus represents the status of an appeal
type AppealStatus string

const (
	StatusDraft     AppealStatus = "draft"
	StatusSubmitted AppealStatus = "submitted"
	StatusApproved  AppealStatus = "approved"
	StatusDenied    AppealStatus = "denied"
)

// Valid reports whether s is one of the known statuses.
func (s AppealStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s AppealStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// CanTransitionTo reports whether the status may move to next.
// The lifecycle is forward-only: draft -> submitted -> {approved, denied}.
// Setting the same status again is allowed (no-op updates).
func (s AppealStatus) CanTransitionTo(next AppealStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusApproved || next == StatusDenied
	default:
		return false
	}
}

// ParsedData holds the key/value facts extracted from a denial letter and
// refined by the claimant across form steps. Keys are domain-defined
// (patient name, policy number, denial reason, ...); there is no fixed schema.
type ParsedData map[string]string

// Value implements driver.Valuer for JSONB
func (p ParsedData) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *ParsedData) Scan(value interface{}) error {
	if value == nil {
		*p = make(ParsedData)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = make(ParsedData)
		return nil
	}

	if len(bytes) == 0 {
		*p = make(ParsedData)
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Merge returns a copy of p with every key of patch applied on top.
// Keys present only in p are preserved; keys in patch overwrite same-named
// keys in p. Applying the same patch twice yields the same result.
func (p ParsedData) Merge(patch ParsedData) ParsedData {
	merged := make(ParsedData, len(p)+len(patch))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of p.
func (p ParsedData) Clone() ParsedData {
	return ParsedData(nil).Merge(p)
}

// Appeal represents an appeal entity, the aggregate root tracking one
// claimant's insurance-appeal case from draft through decision.
type Appeal struct {
	ID                 uuid.UUID    `json:"id"`
	UserID             *uuid.UUID   `json:"user_id,omitempty"` // nil until a registered user claims the appeal
	DenialLetterURL    *string      `json:"denial_letter_url,omitempty"`
	ParsedData         ParsedData   `json:"parsed_data"`
	GeneratedLetter    *string      `json:"generated_letter,omitempty"`
	GeneratedLetterURL *string      `json:"generated_letter_url,omitempty"`
	Status             AppealStatus `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// AppealPatch carries a partial update for an appeal. Nil fields are left
// untouched; ParsedData, when present, is merged into the stored facts
// rather than replacing them.
type AppealPatch struct {
	UserID             *uuid.UUID
	DenialLetterURL    *string
	ParsedData         ParsedData
	GeneratedLetter    *string
	GeneratedLetterURL *string
	Status             *AppealStatus
}

// Empty reports whether the patch would change nothing.
func (p *AppealPatch) Empty() bool {
	return p.UserID == nil &&
		p.DenialLetterURL == nil &&
		len(p.ParsedData) == 0 &&
		p.GeneratedLetter == nil &&
		p.GeneratedLetterURL == nil &&
		p.Status == nil
}
