package models

import (
	"time"

	"github.com/google/uuid"
)

// Update represents a free-form note attached to an appeal
type Update struct {
	ID        uuid.UUID `json:"id"`
	AppealID  uuid.UUID `json:"appeal_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
