package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"worker-debrief/constant"
	"worker-debrief/entities"
)

type Repository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	CreateJob(ctx context.Context, job *entities.Job) error
	MarkJobRunning(ctx context.Context, id uuid.UUID) error
	MarkJobCompleted(ctx context.Context, id uuid.UUID) error
	MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error
	ListJobsByRecordingId(ctx context.Context, recordingId uuid.UUID) ([]*entities.Job, error)
	HasActiveJob(ctx context.Context, recordingId uuid.UUID, jobType constant.JobType) (bool, error)
	PruneJobs(ctx context.Context, completedBefore, failedBefore time.Time, keepCompleted int) error

	FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error)
	UpdateRecordingStatus(ctx context.Context, id uuid.UUID, status constant.RecordingStatus, errorMessage *string) error
	UpdateRecordingDuration(ctx context.Context, id uuid.UUID, seconds float64) error

	FindTranscriptByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Transcript, error)
	UpsertTranscript(ctx context.Context, transcript *entities.Transcript) error

	FindDebriefByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Debrief, error)
	UpsertDebrief(ctx context.Context, debrief *entities.Debrief) error

	FindVoiceProfileByUserId(ctx context.Context, userId uuid.UUID) (*entities.VoiceProfile, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) Repository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	job := &entities.Job{}
	err := r.GetDB().WithContext(ctx).First(job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return job, nil
}

func (r *repo) CreateJob(ctx context.Context, job *entities.Job) error {
	return r.GetDB().WithContext(ctx).Create(job).Error
}

func (r *repo) MarkJobRunning(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.GetDB().WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     constant.JobStatusRunning,
		"started_at": now,
		"updated_at": now,
	}).Error
}

func (r *repo) MarkJobCompleted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.GetDB().WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       constant.JobStatusCompleted,
		"completed_at": now,
		"updated_at":   now,
	}).Error
}

func (r *repo) MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	return r.GetDB().WithContext(ctx).Model(&entities.Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       constant.JobStatusFailed,
		"error":        message,
		"completed_at": now,
		"updated_at":   now,
	}).Error
}

func (r *repo) ListJobsByRecordingId(ctx context.Context, recordingId uuid.UUID) ([]*entities.Job, error) {
	var jobs []*entities.Job
	err := r.GetDB().WithContext(ctx).Where("recording_id = ?", recordingId).Order("created_at ASC").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// HasActiveJob reports whether a pending or running job of the given type
// exists for the recording. Advisory only, there is no uniqueness constraint.
func (r *repo) HasActiveJob(ctx context.Context, recordingId uuid.UUID, jobType constant.JobType) (bool, error) {
	var count int64
	err := r.GetDB().WithContext(ctx).Model(&entities.Job{}).
		Where("recording_id = ? AND job_type = ? AND status IN ?", recordingId, jobType,
			[]constant.JobStatus{constant.JobStatusPending, constant.JobStatusRunning}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneJobs enforces the retention policy: completed rows past their
// retention window (always keeping the most recent keepCompleted) and failed
// rows past theirs.
func (r *repo) PruneJobs(ctx context.Context, completedBefore, failedBefore time.Time, keepCompleted int) error {
	db := r.GetDB().WithContext(ctx)

	keep := db.Model(&entities.Job{}).
		Select("id").
		Where("status = ?", constant.JobStatusCompleted).
		Order("completed_at DESC").
		Limit(keepCompleted)

	err := db.Where("status = ? AND completed_at < ? AND id NOT IN (?)",
		constant.JobStatusCompleted, completedBefore, keep).
		Delete(&entities.Job{}).Error
	if err != nil {
		return err
	}

	return db.Where("status = ? AND completed_at < ?", constant.JobStatusFailed, failedBefore).
		Delete(&entities.Job{}).Error
}

func (r *repo) FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	recording := &entities.Recording{}
	err := r.GetDB().WithContext(ctx).First(recording, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return recording, nil
}

func (r *repo) UpdateRecordingStatus(ctx context.Context, id uuid.UUID, status constant.RecordingStatus, errorMessage *string) error {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	}
	return r.GetDB().WithContext(ctx).Model(&entities.Recording{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateRecordingDuration sets duration only when it has not been set, so a
// retried transcription cannot rewrite it.
func (r *repo) UpdateRecordingDuration(ctx context.Context, id uuid.UUID, seconds float64) error {
	return r.GetDB().WithContext(ctx).Model(&entities.Recording{}).
		Where("id = ? AND duration_seconds IS NULL", id).
		Update("duration_seconds", seconds).Error
}

func (r *repo) FindTranscriptByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Transcript, error) {
	transcript := &entities.Transcript{}
	err := r.GetDB().WithContext(ctx).First(transcript, "recording_id = ?", recordingId).Error
	if err != nil {
		return nil, err
	}
	return transcript, nil
}

func (r *repo) UpsertTranscript(ctx context.Context, transcript *entities.Transcript) error {
	return r.GetDB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recording_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"text", "language", "segments", "speaker_count", "speakers", "updated_at",
		}),
	}).Create(transcript).Error
}

func (r *repo) FindDebriefByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Debrief, error) {
	debrief := &entities.Debrief{}
	err := r.GetDB().WithContext(ctx).First(debrief, "recording_id = ?", recordingId).Error
	if err != nil {
		return nil, err
	}
	return debrief, nil
}

func (r *repo) UpsertDebrief(ctx context.Context, debrief *entities.Debrief) error {
	return r.GetDB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "recording_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"markdown", "sections", "updated_at",
		}),
	}).Create(debrief).Error
}

func (r *repo) FindVoiceProfileByUserId(ctx context.Context, userId uuid.UUID) (*entities.VoiceProfile, error) {
	profile := &entities.VoiceProfile{}
	err := r.GetDB().WithContext(ctx).First(profile, "user_id = ?", userId).Error
	if err != nil {
		return nil, err
	}
	return profile, nil
}
