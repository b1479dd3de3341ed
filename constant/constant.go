package constant

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCompleted JobStatus = "COMPLETED"
)

// Active reports whether a job in this status still occupies its stage.
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// Terminal reports whether the status admits no further transition.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobType string

const (
	JobTypeTranscribe JobType = "TRANSCRIBE"
	JobTypeDebrief    JobType = "DEBRIEF"
)

type RecordingStatus string

const (
	RecordingStatusPending    RecordingStatus = "PENDING"
	RecordingStatusUploaded   RecordingStatus = "UPLOADED"
	RecordingStatusProcessing RecordingStatus = "PROCESSING"
	RecordingStatusComplete   RecordingStatus = "COMPLETE"
	RecordingStatusFailed     RecordingStatus = "FAILED"
)

var recordingOrder = map[RecordingStatus]int{
	RecordingStatusPending:    0,
	RecordingStatusUploaded:   1,
	RecordingStatusProcessing: 2,
	RecordingStatusComplete:   3,
}

// CanTransition reports whether a recording may move from s to next.
// Status only moves forward, except that FAILED is reachable from any
// non-complete state and a failed recording re-enters PROCESSING on retry.
func (s RecordingStatus) CanTransition(next RecordingStatus) bool {
	if s == next {
		return false
	}
	if next == RecordingStatusFailed {
		return s != RecordingStatusComplete
	}
	if s == RecordingStatusFailed {
		return next == RecordingStatusProcessing
	}
	return recordingOrder[next] > recordingOrder[s]
}

type RecordingMode string

const (
	RecordingModeGeneral   RecordingMode = "general"
	RecordingModeMeeting   RecordingMode = "meeting"
	RecordingModeSales     RecordingMode = "sales"
	RecordingModeInterview RecordingMode = "interview"
)

// Transcription stage progress points reported to the UI poller.
const (
	ProgressStarted     = 10
	ProgressResolved    = 20
	ProgressTranscribed = 70
	ProgressDiarized    = 80
	ProgressPersisted   = 85
	ProgressDone        = 100
)

// FallbackSpeaker labels every segment when diarization is unavailable.
const FallbackSpeaker = "speaker_0"

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
