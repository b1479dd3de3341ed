package entities

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptSegment is one time-aligned slice of transcribed speech.
type TranscriptSegment struct {
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Text     string  `json:"text"`
	Speaker  string  `json:"speaker,omitempty"`
}

// Transcript is 1:1 with a recording and replaced in full on retry.
type Transcript struct {
	ID           uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecordingId  uuid.UUID           `json:"recording_id" gorm:"type:uuid;not null;uniqueIndex:ux_transcripts_recording"`
	Text         string              `json:"text" gorm:"type:text;not null"`
	Language     string              `json:"language" gorm:"type:varchar(16)"`
	Segments     []TranscriptSegment `json:"segments" gorm:"type:jsonb;serializer:json"`
	SpeakerCount int                 `json:"speaker_count" gorm:"type:integer;default:0"`
	Speakers     []string            `json:"speakers" gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time           `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time           `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Transcript) TableName() string {
	return "transcripts"
}
