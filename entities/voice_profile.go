package entities

import (
	"time"

	"github.com/google/uuid"
)

// VoiceProfile holds a user's enrolled voice embedding. When present it is
// forwarded to the diarizer so one speaker can be labeled as the owner.
type VoiceProfile struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserId    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:ux_voice_profiles_user"`
	Embedding []float64 `json:"embedding" gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (VoiceProfile) TableName() string {
	return "voice_profiles"
}
