package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"worker-debrief/constant"
	"worker-debrief/dto"
	"worker-debrief/entities"
	"worker-debrief/pkg/diarize"
	"worker-debrief/pkg/storage"
	"worker-debrief/pkg/transcription"
	"worker-debrief/repository"
)

// ProgressFunc receives monotonically increasing progress points for UI
// polling. Optional; correctness never depends on it.
type ProgressFunc func(jobId uuid.UUID, percent int)

const presignExpiry = 1 * time.Hour

type TranscriptionService interface {
	Process(ctx context.Context, message dto.TranscriptionJobMessage) (*dto.TranscriptionResult, error)
}

type transcriptionService struct {
	repo         repository.Repository
	store        storage.ObjectStore
	transcriber  transcription.Client
	diarizer     diarize.Client
	orchestrator *Orchestrator
	normalize    NormalizeFunc
	progress     ProgressFunc
}

func NewTranscriptionService(
	repo repository.Repository,
	store storage.ObjectStore,
	transcriber transcription.Client,
	diarizer diarize.Client,
	orchestrator *Orchestrator,
	progress ProgressFunc,
) TranscriptionService {
	if progress == nil {
		progress = func(uuid.UUID, int) {}
	}
	return &transcriptionService{
		repo:         repo,
		store:        store,
		transcriber:  transcriber,
		diarizer:     diarizer,
		orchestrator: orchestrator,
		normalize:    NormalizeAudio,
		progress:     progress,
	}
}

func (s *transcriptionService) Process(ctx context.Context, message dto.TranscriptionJobMessage) (result *dto.TranscriptionResult, err error) {
	zerolog.Ctx(ctx).Info().
		Str("job_id", message.JobId.String()).
		Str("recording_id", message.RecordingId.String()).
		Msg("processing transcription job")

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
	s.progress(message.JobId, constant.ProgressStarted)

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

	audioURL, err := s.resolveAudioURL(ctx, message)
	if err != nil {
		return nil, err
	}
	s.progress(message.JobId, constant.ProgressResolved)

	transcribed, err := s.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("transcription failed")
		return nil, err
	}
	s.progress(message.JobId, constant.ProgressTranscribed)

	segments := make([]entities.TranscriptSegment, len(transcribed.Segments))
	for i, seg := range transcribed.Segments {
		segments[i] = entities.TranscriptSegment{
			StartSec: seg.Start,
			EndSec:   seg.End,
			Text:     seg.Text,
		}
	}

	merged := s.diarizeSegments(ctx, message, segments)
	s.progress(message.JobId, constant.ProgressDiarized)

	transcript := &entities.Transcript{
		ID:           uuid.New(),
		RecordingId:  message.RecordingId,
		Text:         transcribed.Text,
		Language:     transcribed.Language,
		Segments:     merged.Segments,
		SpeakerCount: merged.SpeakerCount,
		Speakers:     merged.Speakers,
	}
	if err = s.repo.UpsertTranscript(ctx, transcript); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to upsert transcript")
		return nil, err
	}

	if transcribed.DurationSeconds > 0 {
		if err = s.repo.UpdateRecordingDuration(ctx, message.RecordingId, transcribed.DurationSeconds); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update recording duration")
			return nil, err
		}
	}
	s.progress(message.JobId, constant.ProgressPersisted)

	if err = s.repo.MarkJobCompleted(ctx, message.JobId); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark job completed")
		return nil, err
	}
	completed = true

	if err := s.enqueueDebrief(ctx, message.RecordingId); err != nil {
		// The transcript is durable and the job row is closed; surface the
		// enqueue failure without reopening either. Retry-debrief recovers.
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to enqueue debrief stage")
	}
	s.progress(message.JobId, constant.ProgressDone)

	zerolog.Ctx(ctx).Info().
		Str("job_id", message.JobId.String()).
		Int("segments", len(merged.Segments)).
		Int("speakers", merged.SpeakerCount).
		Msg("transcription job completed")

	return &dto.TranscriptionResult{
		TranscriptId: transcript.ID,
		Text:         transcript.Text,
		SegmentCount: len(transcript.Segments),
		Language:     transcript.Language,
	}, nil
}

// resolveAudioURL returns a readable URL for the stored object, normalizing
// container formats the provider is known to choke on first.
func (s *transcriptionService) resolveAudioURL(ctx context.Context, message dto.TranscriptionJobMessage) (string, error) {
	objectKey := message.ObjectKey
	if NeedsNormalization(message.MimeType) {
		normalizedKey, err := s.normalizeObject(ctx, message)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("mime_type", message.MimeType).Msg("audio normalization failed")
			return "", errors.Join(ErrNonRetryable, err)
		}
		objectKey = normalizedKey
	}

	audioURL, err := s.store.PresignedURL(ctx, objectKey, presignExpiry)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to resolve object url")
		return "", err
	}
	return audioURL, nil
}

// normalizeObject downloads the original, converts it with ffmpeg, and stores
// the normalized copy next to the original.
func (s *transcriptionService) normalizeObject(ctx context.Context, message dto.TranscriptionJobMessage) (string, error) {
	tempDir := filepath.Join("temp", message.JobId.String())
	defer os.RemoveAll(tempDir)

	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return "", err
	}

	inputPath := filepath.Join(tempDir, filepath.Base(message.ObjectKey))
	outputPath := inputPath + ".wav"

	reader, err := s.store.Download(ctx, message.ObjectKey)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	if err := writeToFile(inputPath, reader); err != nil {
		return "", err
	}

	if err := s.normalize(ctx, inputPath, outputPath); err != nil {
		return "", err
	}

	normalizedKey := message.ObjectKey + ".normalized.wav"
	if err := s.store.Upload(ctx, normalizedKey, outputPath, "audio/wav"); err != nil {
		return "", err
	}
	return normalizedKey, nil
}

// diarizeSegments attaches speaker labels, degrading to the single-speaker
// fallback on any diarizer problem. Errors never leave this method.
func (s *transcriptionService) diarizeSegments(ctx context.Context, message dto.TranscriptionJobMessage, segments []entities.TranscriptSegment) diarize.MergeResult {
	if len(segments) == 0 {
		return diarize.MergeResult{SpeakerCount: 0}
	}

	if !s.diarizer.Healthy(ctx) {
		zerolog.Ctx(ctx).Warn().Msg("diarization service unreachable, using single-speaker fallback")
		return diarize.Fallback(segments)
	}

	audio, err := s.store.Download(ctx, message.ObjectKey)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to download audio for diarization, using fallback")
		return diarize.Fallback(segments)
	}
	defer audio.Close()

	boundaries := make([]diarize.Boundary, len(segments))
	for i, seg := range segments {
		boundaries[i] = diarize.Boundary{Start: seg.StartSec, End: seg.EndSec, Text: seg.Text}
	}

	var embedding []float64
	if profile, err := s.repo.FindVoiceProfileByUserId(ctx, message.UserId); err == nil {
		embedding = profile.Embedding
	}

	resp, err := s.diarizer.Diarize(ctx, audio, filepath.Base(message.ObjectKey), boundaries, embedding)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("diarization failed, using single-speaker fallback")
		return diarize.Fallback(segments)
	}

	return diarize.Merge(segments, resp)
}

// enqueueDebrief re-reads the transcript row before scheduling the next
// stage, so the debrief worker can only ever observe durable state.
func (s *transcriptionService) enqueueDebrief(ctx context.Context, recordingId uuid.UUID) error {
	transcript, err := s.repo.FindTranscriptByRecordingId(ctx, recordingId)
	if err != nil {
		return fmt.Errorf("transcript not readable after write: %w", err)
	}

	recording, err := s.repo.FindRecordingById(ctx, recordingId)
	if err != nil {
		return err
	}

	_, err = s.orchestrator.EnqueueDebrief(ctx, recording, transcript)
	return err
}
