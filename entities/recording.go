package entities

import (
	"time"

	"github.com/google/uuid"

	"worker-debrief/constant"
)

type Recording struct {
	ID              uuid.UUID                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserId          uuid.UUID                `json:"user_id" gorm:"type:uuid;not null;index:idx_recordings_user_id"`
	Title           string                   `json:"title" gorm:"type:varchar(255);not null"`
	Mode            constant.RecordingMode   `json:"mode" gorm:"type:varchar(20);not null;default:'general'"`
	MimeType        string                   `json:"mime_type" gorm:"type:varchar(100)"`
	ObjectKey       *string                  `json:"object_key" gorm:"type:varchar(500)"`
	DurationSeconds *float64                 `json:"duration_seconds" gorm:"type:double precision"`
	Status          constant.RecordingStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index:idx_recordings_status"`
	ErrorMessage    *string                  `json:"error_message" gorm:"type:text"`
	CreatedAt       time.Time                `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Recording) TableName() string {
	return "recordings"
}
