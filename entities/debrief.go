package entities

import (
	"time"

	"github.com/google/uuid"
)

// DebriefSection is one heading-delimited block of the debrief markdown.
// Order is 0-based and dense, matching the order sections appear in the body.
type DebriefSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Debrief is 1:1 with a recording and replaced in full on retry.
type Debrief struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecordingId uuid.UUID        `json:"recording_id" gorm:"type:uuid;not null;uniqueIndex:ux_debriefs_recording"`
	Markdown    string           `json:"markdown" gorm:"type:text;not null"`
	Sections    []DebriefSection `json:"sections" gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time        `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Debrief) TableName() string {
	return "debriefs"
}
