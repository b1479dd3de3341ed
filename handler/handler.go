package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"worker-debrief/dto"
	"worker-debrief/service"
)

type ServiceDependencies struct {
	TranscriptionService service.TranscriptionService
	DebriefService       service.DebriefService
}

// TranscriptionHandler decodes a transcription job and runs the stage. The
// stage returns an explicit result which is observed here, keeping the stage
// itself free of queue coupling.
func TranscriptionHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var job dto.TranscriptionJobMessage
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal transcription message")
		return backoff.Permanent(err)
	}

	result, err := deps.TranscriptionService.Process(ctx, job)
	if err != nil {
		return asQueueError(err)
	}

	if result != nil {
		zerolog.Ctx(ctx).Info().
			Str("job_id", job.JobId.String()).
			Str("transcript_id", result.TranscriptId.String()).
			Int("segment_count", result.SegmentCount).
			Str("language", result.Language).
			Msg("transcription stage result")
	}
	return nil
}

func DebriefHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var job dto.DebriefJobMessage
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal debrief message")
		return backoff.Permanent(err)
	}

	result, err := deps.DebriefService.Process(ctx, job)
	if err != nil {
		return asQueueError(err)
	}

	if result != nil {
		zerolog.Ctx(ctx).Info().
			Str("job_id", job.JobId.String()).
			Str("debrief_id", result.DebriefId.String()).
			Int("section_count", result.SectionCount).
			Msg("debrief stage result")
	}
	return nil
}

// asQueueError maps permanent input failures onto the consumer's retry
// machinery: they dead-letter immediately instead of burning attempts.
func asQueueError(err error) error {
	if errors.Is(err, service.ErrNonRetryable) {
		return backoff.Permanent(err)
	}
	return err
}
