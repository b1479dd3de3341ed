package service

import "errors"

// ErrNonRetryable marks a permanent input failure: the consumer sends the
// message straight to the DLQ instead of burning retry attempts on it.
var ErrNonRetryable = errors.New("non-retryable error")

// ErrNoObject rejects a transcription enqueue for a recording that never got
// an uploaded object. Checked before any job row is created.
var ErrNoObject = errors.New("recording has no stored object")

// ErrNoTranscript rejects a debrief enqueue when no transcript exists yet.
// Checked before any job row is created.
var ErrNoTranscript = errors.New("recording has no transcript")

// ErrJobInFlight rejects an enqueue while a pending or running job of the
// same type exists for the recording.
var ErrJobInFlight = errors.New("a job of this type is already in flight for this recording")
