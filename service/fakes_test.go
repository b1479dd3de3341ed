package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"worker-debrief/constant"
	"worker-debrief/entities"
	"worker-debrief/pkg/diarize"
	"worker-debrief/pkg/rabbitmq"
	"worker-debrief/pkg/transcription"
)

// fakeRepo is an in-memory Repository for stage and coordinator tests.
type fakeRepo struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]*entities.Job
	recordings  map[uuid.UUID]*entities.Recording
	transcripts map[uuid.UUID]*entities.Transcript
	debriefs    map[uuid.UUID]*entities.Debrief
	profiles    map[uuid.UUID]*entities.VoiceProfile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs:        map[uuid.UUID]*entities.Job{},
		recordings:  map[uuid.UUID]*entities.Recording{},
		transcripts: map[uuid.UUID]*entities.Transcript{},
		debriefs:    map[uuid.UUID]*entities.Debrief{},
		profiles:    map[uuid.UUID]*entities.VoiceProfile{},
	}
}

func (f *fakeRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (f *fakeRepo) GetDB() *gorm.DB { return nil }

func (f *fakeRepo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeRepo) CreateJob(ctx context.Context, job *entities.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	cp.CreatedAt = time.Now()
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeRepo) MarkJobRunning(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.jobs[id].Status = constant.JobStatusRunning
	f.jobs[id].StartedAt = &now
	return nil
}

func (f *fakeRepo) MarkJobCompleted(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.jobs[id].Status = constant.JobStatusCompleted
	f.jobs[id].CompletedAt = &now
	return nil
}

func (f *fakeRepo) MarkJobFailed(ctx context.Context, id uuid.UUID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.jobs[id].Status = constant.JobStatusFailed
	f.jobs[id].Error = &message
	f.jobs[id].CompletedAt = &now
	return nil
}

func (f *fakeRepo) ListJobsByRecordingId(ctx context.Context, recordingId uuid.UUID) ([]*entities.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []*entities.Job
	for _, job := range f.jobs {
		if job.RecordingId == recordingId {
			cp := *job
			jobs = append(jobs, &cp)
		}
	}
	return jobs, nil
}

func (f *fakeRepo) HasActiveJob(ctx context.Context, recordingId uuid.UUID, jobType constant.JobType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.RecordingId == recordingId && job.JobType == jobType && job.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) PruneJobs(ctx context.Context, completedBefore, failedBefore time.Time, keepCompleted int) error {
	return nil
}

func (f *fakeRepo) FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recordings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRepo) UpdateRecordingStatus(ctx context.Context, id uuid.UUID, status constant.RecordingStatus, errorMessage *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordings[id].Status = status
	f.recordings[id].ErrorMessage = errorMessage
	return nil
}

func (f *fakeRepo) UpdateRecordingDuration(ctx context.Context, id uuid.UUID, seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordings[id].DurationSeconds == nil {
		f.recordings[id].DurationSeconds = &seconds
	}
	return nil
}

func (f *fakeRepo) FindTranscriptByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tr, ok := f.transcripts[recordingId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tr
	return &cp, nil
}

func (f *fakeRepo) UpsertTranscript(ctx context.Context, transcript *entities.Transcript) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *transcript
	if existing, ok := f.transcripts[transcript.RecordingId]; ok {
		cp.ID = existing.ID
	}
	f.transcripts[transcript.RecordingId] = &cp
	return nil
}

func (f *fakeRepo) FindDebriefByRecordingId(ctx context.Context, recordingId uuid.UUID) (*entities.Debrief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.debriefs[recordingId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) UpsertDebrief(ctx context.Context, debrief *entities.Debrief) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *debrief
	if existing, ok := f.debriefs[debrief.RecordingId]; ok {
		cp.ID = existing.ID
	}
	f.debriefs[debrief.RecordingId] = &cp
	return nil
}

func (f *fakeRepo) FindVoiceProfileByUserId(ctx context.Context, userId uuid.UUID) (*entities.VoiceProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) jobCount(recordingId uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, job := range f.jobs {
		if job.RecordingId == recordingId {
			n++
		}
	}
	return n
}

// fakePublisher captures published messages per stage.
type fakePublisher struct {
	mu       sync.Mutex
	fail     error
	messages map[string][]any
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: map[string][]any{}}
}

func (p *fakePublisher) Publish(ctx context.Context, stage rabbitmq.Stage, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.messages[stage.Queue] = append(p.messages[stage.Queue], message)
	return nil
}

func (p *fakePublisher) published(stage rabbitmq.Stage) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[stage.Queue]
}

// fakeStore satisfies storage.ObjectStore with canned data.
type fakeStore struct {
	objects map[string][]byte
}

func (s *fakeStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://objects.test/" + objectKey, nil
}

func (s *fakeStore) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, ok := s.objects[objectKey]
	return ok, nil
}

func (s *fakeStore) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(s.objects[objectKey]))), nil
}

func (s *fakeStore) Upload(ctx context.Context, objectKey, filePath, contentType string) error {
	s.objects[objectKey] = []byte(filePath)
	return nil
}

// fakeTranscriber returns a fixed transcript.
type fakeTranscriber struct {
	result *transcription.Result
	err    error
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (*transcription.Result, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.result, nil
}

// fakeDiarizer simulates an unreachable or responding diarization service.
type fakeDiarizer struct {
	healthy bool
	resp    *diarize.Response
	err     error
}

func (d *fakeDiarizer) Healthy(ctx context.Context) bool { return d.healthy }

func (d *fakeDiarizer) Diarize(ctx context.Context, audio io.Reader, filename string, boundaries []diarize.Boundary, embedding []float64) (*diarize.Response, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.resp, nil
}

// fakeGenerator returns fixed markdown or an error.
type fakeGenerator struct {
	output string
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt, userContent string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}
