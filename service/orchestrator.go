package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"worker-debrief/constant"
	"worker-debrief/dto"
	"worker-debrief/entities"
	"worker-debrief/pkg/rabbitmq"
	"worker-debrief/repository"
)

// Orchestrator owns the wiring between job rows and queue enqueues. Every
// enqueue creates a fresh job row first, so job history stays an append-only
// audit log per recording.
type Orchestrator struct {
	repo      repository.Repository
	publisher rabbitmq.Publisher
}

func NewOrchestrator(repo repository.Repository, publisher rabbitmq.Publisher) *Orchestrator {
	return &Orchestrator{
		repo:      repo,
		publisher: publisher,
	}
}

// EnqueueTranscription creates a TRANSCRIBE job row and publishes it. Rejects
// with ErrJobInFlight while another transcription job is active for the
// recording, and with ErrNoObject when nothing was ever uploaded.
func (o *Orchestrator) EnqueueTranscription(ctx context.Context, recording *entities.Recording) (*entities.Job, error) {
	if recording.ObjectKey == nil || *recording.ObjectKey == "" {
		return nil, ErrNoObject
	}

	job, err := o.createJob(ctx, recording.ID, constant.JobTypeTranscribe)
	if err != nil {
		return nil, err
	}

	msg := dto.TranscriptionJobMessage{
		JobId:          job.ID,
		RecordingId:    recording.ID,
		ObjectKey:      *recording.ObjectKey,
		MimeType:       recording.MimeType,
		UserId:         recording.UserId,
		IdempotencyKey: idempotencyKey(recording.ID),
	}

	if err := o.publish(ctx, rabbitmq.TranscriptionStage, job, msg); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueDebrief creates a DEBRIEF job row and publishes it with the full
// transcript text, so the debrief worker never re-reads transcription input.
func (o *Orchestrator) EnqueueDebrief(ctx context.Context, recording *entities.Recording, transcript *entities.Transcript) (*entities.Job, error) {
	job, err := o.createJob(ctx, recording.ID, constant.JobTypeDebrief)
	if err != nil {
		return nil, err
	}

	msg := dto.DebriefJobMessage{
		JobId:             job.ID,
		RecordingId:       recording.ID,
		TranscriptId:      transcript.ID,
		TranscriptText:    transcript.Text,
		RecordingMode:     recording.Mode,
		RecordingTitle:    recording.Title,
		UserId:            recording.UserId,
		RecordingDuration: recording.DurationSeconds,
		IdempotencyKey:    idempotencyKey(recording.ID),
	}

	if err := o.publish(ctx, rabbitmq.DebriefStage, job, msg); err != nil {
		return nil, err
	}
	return job, nil
}

func (o *Orchestrator) createJob(ctx context.Context, recordingId uuid.UUID, jobType constant.JobType) (*entities.Job, error) {
	active, err := o.repo.HasActiveJob(ctx, recordingId, jobType)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrJobInFlight
	}

	job := &entities.Job{
		ID:          uuid.New(),
		RecordingId: recordingId,
		JobType:     jobType,
		Status:      constant.JobStatusPending,
	}
	if err := o.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (o *Orchestrator) publish(ctx context.Context, stage rabbitmq.Stage, job *entities.Job, msg any) error {
	if err := o.publisher.Publish(ctx, stage, msg); err != nil {
		// The job row already exists; close it out so history shows that
		// scheduling itself failed, not execution.
		if markErr := o.repo.MarkJobFailed(ctx, job.ID, "could not be scheduled: queue unavailable"); markErr != nil {
			zerolog.Ctx(ctx).Error().Err(markErr).Str("job_id", job.ID.String()).Msg("failed to mark unscheduled job")
		}
		return err
	}
	return nil
}

// idempotencyKey distinguishes duplicate enqueues from a flaky client in the
// backing store. The system does not hard-deduplicate by it.
func idempotencyKey(recordingId uuid.UUID) string {
	return fmt.Sprintf("%s:%d", recordingId, time.Now().UnixNano())
}
