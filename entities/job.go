package entities

import (
	"time"

	"github.com/google/uuid"

	"worker-debrief/constant"
)

// Job is one audit-logged attempt to run a pipeline stage for a recording.
// Retries append new rows; a terminal row is never reopened.
type Job struct {
	ID          uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecordingId uuid.UUID          `json:"recording_id" gorm:"type:uuid;not null;index:idx_jobs_recording_id"`
	JobType     constant.JobType   `json:"job_type" gorm:"type:varchar(20);not null"`
	Status      constant.JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Error       *string            `json:"error" gorm:"type:text"`
	StartedAt   *time.Time         `json:"started_at" gorm:"type:timestamptz"`
	CompletedAt *time.Time         `json:"completed_at" gorm:"type:timestamptz"`
	CreatedAt   time.Time          `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time          `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Job) TableName() string {
	return "jobs"
}
