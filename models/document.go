package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxDocumentsPerAppeal caps how many supporting documents may be attached
// to a single appeal at a time.
const MaxDocumentsPerAppeal = 3

// Document represents a supporting file attached to an appeal
type Document struct {
	ID        uuid.UUID `json:"id"`
	AppealID  uuid.UUID `json:"appeal_id"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}
