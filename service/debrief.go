package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"worker-debrief/constant"
	"worker-debrief/dto"
	"worker-debrief/entities"
	"worker-debrief/pkg/genai"
	"worker-debrief/repository"
)

type DebriefService interface {
	Process(ctx context.Context, message dto.DebriefJobMessage) (*dto.DebriefResult, error)
}

type debriefService struct {
	repo repository.Repository
	gen  genai.Client
}

func NewDebriefService(repo repository.Repository, gen genai.Client) DebriefService {
	return &debriefService{
		repo: repo,
		gen:  gen,
	}
}

func (s *debriefService) Process(ctx context.Context, message dto.DebriefJobMessage) (result *dto.DebriefResult, err error) {
	zerolog.Ctx(ctx).Info().
		Str("job_id", message.JobId.String()).
		Str("recording_id", message.RecordingId.String()).
		Str("mode", string(message.RecordingMode)).
		Msg("processing debrief job")

	job, err := s.repo.FindJobById(ctx, message.JobId)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to find job by id")
		return nil, err
	}

	if job.Status == constant.JobStatusCompleted {
		zerolog.Ctx(ctx).Info().Str("job_id", message.JobId.String()).Msg("job already completed")
		return nil, nil
	}

	if err := s.repo.MarkJobRunning(ctx, message.JobId); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark job running")
		return nil, err
	}

	completed := false
	defer func() {
		if err != nil && !completed {
			msg := err.Error()
			if markErr := s.repo.MarkJobFailed(ctx, message.JobId, msg); markErr != nil {
				zerolog.Ctx(ctx).Error().Err(markErr).Msg("failed to mark job failed")
			}
			if markErr := s.repo.UpdateRecordingStatus(ctx, message.RecordingId, constant.RecordingStatusFailed, &msg); markErr != nil {
				zerolog.Ctx(ctx).Error().Err(markErr).Msg("failed to mark recording failed")
			}
		}
	}()

	prompt := PromptForMode(message.RecordingMode)
	markdown, err := s.gen.Generate(ctx, prompt, message.TranscriptText)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("debrief generation failed")
		return nil, err
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		err = errors.Join(ErrNonRetryable, errors.New("debrief generation returned no content"))
		zerolog.Ctx(ctx).Error().Msg("debrief generation returned empty output")
		return nil, err
	}

	sections := SplitSections(markdown)

	debrief := &entities.Debrief{
		ID:          uuid.New(),
		RecordingId: message.RecordingId,
		Markdown:    markdown,
		Sections:    sections,
	}
	if err = s.repo.UpsertDebrief(ctx, debrief); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to upsert debrief")
		return nil, err
	}

	if err = s.repo.MarkJobCompleted(ctx, message.JobId); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark job completed")
		return nil, err
	}
	completed = true

	if err := s.repo.UpdateRecordingStatus(ctx, message.RecordingId, constant.RecordingStatusComplete, nil); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark recording complete")
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", message.JobId.String()).
		Int("sections", len(sections)).
		Msg("debrief job completed")

	return &dto.DebriefResult{
		DebriefId:    debrief.ID,
		Markdown:     markdown,
		SectionCount: len(sections),
	}, nil
}
