package dto

import (
	"github.com/google/uuid"

	"worker-debrief/constant"
)

// TranscriptionJobMessage is the payload published to the transcription queue.
// IdempotencyKey distinguishes duplicate enqueues from a flaky client; the
// worker does not hard-deduplicate by it.
type TranscriptionJobMessage struct {
	JobId          uuid.UUID `json:"jobId"`
	RecordingId    uuid.UUID `json:"recordingId"`
	ObjectKey      string    `json:"objectKey"`
	MimeType       string    `json:"mimeType"`
	UserId         uuid.UUID `json:"userId"`
	IdempotencyKey string    `json:"idempotencyKey"`
}

// DebriefJobMessage is the payload published to the debrief queue.
type DebriefJobMessage struct {
	JobId             uuid.UUID              `json:"jobId"`
	RecordingId       uuid.UUID              `json:"recordingId"`
	TranscriptId      uuid.UUID              `json:"transcriptId"`
	TranscriptText    string                 `json:"transcriptText"`
	RecordingMode     constant.RecordingMode `json:"recordingMode"`
	RecordingTitle    string                 `json:"recordingTitle"`
	UserId            uuid.UUID              `json:"userId"`
	RecordingDuration *float64               `json:"recordingDuration,omitempty"`
	IdempotencyKey    string                 `json:"idempotencyKey"`
}

// TranscriptionResult is returned by the transcription stage and logged by
// the queue handler.
type TranscriptionResult struct {
	TranscriptId uuid.UUID `json:"transcriptId"`
	Text         string    `json:"text"`
	SegmentCount int       `json:"segmentCount"`
	Language     string    `json:"language"`
}

// DebriefResult is returned by the debrief stage and logged by the queue
// handler.
type DebriefResult struct {
	DebriefId    uuid.UUID `json:"debriefId"`
	Markdown     string    `json:"markdown"`
	SectionCount int       `json:"sectionCount"`
}
