package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PipelineRunStatus represents the status of a pipeline run
type PipelineRunStatus string

const (
	RunStatusPending    PipelineRunStatus = "pending"
	RunStatusInProgress PipelineRunStatus = "in_progress"
	RunStatusCompleted  PipelineRunStatus = "completed"
	RunStatusFailed     PipelineRunStatus = "failed"
)

// PipelineStage names one step of the letter pipeline. Stages run in the
// order declared here; a run never revisits an earlier stage.
type PipelineStage string

const (
	StageStore   PipelineStage = "store"
	StageExtract PipelineStage = "extract"
	StageDraft   PipelineStage = "draft"
	StageRender  PipelineStage = "render"
	StagePersist PipelineStage = "persist"
)

// StageState tracks the progress of one pipeline stage
type StageState struct {
	Stage  PipelineStage `json:"stage"`
	Status string        `json:"status"` // "pending", "in_progress", "completed", "failed"
	Detail string        `json:"detail,omitempty"`
}

// StageStates represents the ordered stage list of a run
type StageStates []StageState

// Value implements driver.Valuer for JSONB
func (s StageStates) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *StageStates) Scan(value interface{}) error {
	if value == nil {
		*s = make(StageStates, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(StageStates, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(StageStates, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// NewStageStates builds a pending stage list for the given stages.
func NewStageStates(stages ...PipelineStage) StageStates {
	states := make(StageStates, 0, len(stages))
	for _, stage := range stages {
		states = append(states, StageState{Stage: stage, Status: "pending"})
	}
	return states
}

// PipelineRun records one execution of the letter pipeline against an appeal
type PipelineRun struct {
	ID           uuid.UUID         `json:"id"`
	AppealID     uuid.UUID         `json:"appeal_id"`
	Status       PipelineRunStatus `json:"status"`
	CurrentStage *string           `json:"current_stage,omitempty"`
	Stages       StageStates       `json:"stages"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}
