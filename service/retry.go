package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"worker-debrief/constant"
	"worker-debrief/entities"
	"worker-debrief/repository"
)

// RetryCoordinator re-runs a stage for a recording by appending a new job row
// and re-enqueueing. Both entry points are safe to call repeatedly; each call
// either adds a row or is rejected before any row exists.
type RetryCoordinator struct {
	repo         repository.Repository
	orchestrator *Orchestrator
}

func NewRetryCoordinator(repo repository.Repository, orchestrator *Orchestrator) *RetryCoordinator {
	return &RetryCoordinator{
		repo:         repo,
		orchestrator: orchestrator,
	}
}

// RetryTranscription re-runs transcription from the stored object. Debrief
// re-runs afterward through the transcription stage's own success path.
func (r *RetryCoordinator) RetryTranscription(ctx context.Context, recordingId uuid.UUID) (*entities.Job, error) {
	recording, err := r.repo.FindRecordingById(ctx, recordingId)
	if err != nil {
		return nil, err
	}

	if recording.ObjectKey == nil || *recording.ObjectKey == "" {
		return nil, ErrNoObject
	}

	if err := r.repo.UpdateRecordingStatus(ctx, recordingId, constant.RecordingStatusProcessing, nil); err != nil {
		return nil, err
	}

	job, err := r.orchestrator.EnqueueTranscription(ctx, recording)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingId.String()).
		Str("job_id", job.ID.String()).
		Msg("transcription retry enqueued")
	return job, nil
}

// RetryDebrief re-runs debrief generation against the existing transcript,
// bypassing transcription entirely.
func (r *RetryCoordinator) RetryDebrief(ctx context.Context, recordingId uuid.UUID) (*entities.Job, error) {
	recording, err := r.repo.FindRecordingById(ctx, recordingId)
	if err != nil {
		return nil, err
	}

	transcript, err := r.repo.FindTranscriptByRecordingId(ctx, recordingId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTranscript, err)
	}

	if err := r.repo.UpdateRecordingStatus(ctx, recordingId, constant.RecordingStatusProcessing, nil); err != nil {
		return nil, err
	}

	job, err := r.orchestrator.EnqueueDebrief(ctx, recording, transcript)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", recordingId.String()).
		Str("job_id", job.ID.String()).
		Msg("debrief retry enqueued")
	return job, nil
}
