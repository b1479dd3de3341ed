package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"worker-debrief/constant"
	"worker-debrief/pkg/rabbitmq"
	"worker-debrief/pkg/storage"
	"worker-debrief/repository"
	"worker-debrief/service"
)

// Api serves the pipeline control endpoints consumed by the dashboard.
type Api struct {
	Repo         repository.Repository
	Store        storage.ObjectStore
	Orchestrator *service.Orchestrator
	Retry        *service.RetryCoordinator
	Opener       service.OpenerService
}

func (a *Api) Register(r *gin.Engine) {
	r.POST("/recordings/:id/complete-upload", a.completeUpload)
	r.POST("/recordings/:id/retry-transcription", a.retryTranscription)
	r.POST("/recordings/:id/retry-debrief", a.retryDebrief)
	r.POST("/recordings/:id/opener", a.opener)
	r.GET("/recordings/:id/jobs", a.listJobs)
}

// completeUpload marks the recording uploaded and enqueues the first
// transcription job for it.
func (a *Api) completeUpload(c *gin.Context) {
	recordingId, ok := recordingIdParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	recording, err := a.Repo.FindRecordingById(ctx, recordingId)
	if err != nil {
		writeError(c, err)
		return
	}

	if recording.ObjectKey == nil || *recording.ObjectKey == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "recording has no stored object"})
		return
	}

	exists, err := a.Store.Exists(ctx, *recording.ObjectKey)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "object was not uploaded"})
		return
	}

	if recording.Status == constant.RecordingStatusPending {
		if err := a.Repo.UpdateRecordingStatus(ctx, recordingId, constant.RecordingStatusUploaded, nil); err != nil {
			writeError(c, err)
			return
		}
	}

	job, err := a.Orchestrator.EnqueueTranscription(ctx, recording)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := a.Repo.UpdateRecordingStatus(ctx, recordingId, constant.RecordingStatusProcessing, nil); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

func (a *Api) retryTranscription(c *gin.Context) {
	recordingId, ok := recordingIdParam(c)
	if !ok {
		return
	}

	job, err := a.Retry.RetryTranscription(c.Request.Context(), recordingId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

func (a *Api) retryDebrief(c *gin.Context) {
	recordingId, ok := recordingIdParam(c)
	if !ok {
		return
	}

	job, err := a.Retry.RetryDebrief(c.Request.Context(), recordingId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}

// opener produces at most one proactive opener from a finished debrief. A
// null opener is a deliberate outcome, never an error.
func (a *Api) opener(c *gin.Context) {
	recordingId, ok := recordingIdParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	recording, err := a.Repo.FindRecordingById(ctx, recordingId)
	if err != nil {
		writeError(c, err)
		return
	}

	debrief, err := a.Repo.FindDebriefByRecordingId(ctx, recordingId)
	if err != nil {
		writeError(c, err)
		return
	}

	opener, found := a.Opener.GenerateOpener(ctx, recording.Title, debrief.Markdown)
	if !found {
		c.JSON(http.StatusOK, gin.H{"opener": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"opener": opener})
}

func (a *Api) listJobs(c *gin.Context) {
	recordingId, ok := recordingIdParam(c)
	if !ok {
		return
	}

	jobs, err := a.Repo.ListJobsByRecordingId(c.Request.Context(), recordingId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func recordingIdParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recording id"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps pipeline errors onto status codes the dashboard can act on:
// a rejected precondition, a duplicate in flight, and an unavailable queue
// are all distinct from a failed job.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNoObject), errors.Is(err, service.ErrNoTranscript):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrJobInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, rabbitmq.ErrQueueUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
