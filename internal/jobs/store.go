package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

// Store is the authoritative job table. Every read and write goes
// through a single mutex, so each exported method is atomic with
// respect to the others. Callers always receive value copies; the
// stored records are never handed out.
type Store struct {
	maxJobs int

	mu   sync.Mutex
	jobs map[string]*Job
}

const DefaultMaxJobs = 20

func NewStore(maxJobs int) *Store {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	return &Store{
		maxJobs: maxJobs,
		jobs:    make(map[string]*Job),
	}
}

// Create admits a new job under the concurrency ceiling. The admission
// check and the insert happen under the same lock hold, so the table
// can never exceed maxJobs entries.
func (s *Store) Create(url string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.jobs) >= s.maxJobs {
		return nil, NewError(KindCapacityExceeded, "maximum number of concurrent tasks reached, please try again later")
	}

	job := &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs[job.ID] = job

	log.Info("Created task %s, total tasks: %d", job.ID, len(s.jobs))
	return cloneJob(job), nil
}

func (s *Store) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return cloneJob(job), true
}

func (s *Store) List() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		ret = append(ret, cloneJob(job))
	}
	return ret
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Store) CountByStatus(status Status) map[string]*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make(map[string]*Job)
	for id, job := range s.jobs {
		if job.Status == status {
			ret[id] = cloneJob(job)
		}
	}
	return ret
}

// MarkProcessing moves a pending job into the processing state.
// No-op for absent ids (the job may already be reaped) or jobs past
// the pending state.
func (s *Store) MarkProcessing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != StatusPending {
		return
	}
	job.Status = StatusProcessing
	job.Progress = 0
}

// UpdateProgress merges a progress report into a processing job.
// Merging takes max(existing, new), so a late out-of-order callback
// can never move progress backward.
func (s *Store) UpdateProgress(id string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return
	}
	if progress > 100 {
		progress = 100
	}
	if progress > job.Progress {
		job.Progress = progress
	}
}

// Complete records terminal success. Progress is pinned at 100 here
// and only here; in-flight reports are capped below it by the runner.
func (s *Store) Complete(id, artifactPath, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.ArtifactPath = artifactPath
	job.Title = title

	log.Info("Task %s completed, total tasks: %d", id, len(s.jobs))
}

func (s *Store) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = StatusFailed
	if err != nil {
		job.Error = err.Error()
	}

	log.Error("Task %s failed: %v", id, err)
}

// Delete removes the record only. It never touches the filesystem;
// callers remove the artifact first (GC and retrieval both do).
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return
	}
	delete(s.jobs, id)
	log.Info("Deleted task %s", id)
}

// ClaimDownload atomically moves a completed job to downloaded and
// returns its final snapshot. A second claim for the same id observes
// NotFound once the retrieval path has deleted the record, and
// NotCompleted while the first claim is still streaming.
func (s *Store) ClaimDownload(id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, NewError(KindNotFound, "cannot find the task")
	}
	if job.Status != StatusCompleted {
		return nil, NewError(KindNotCompleted, "the task is not completed yet")
	}
	job.Status = StatusDownloaded
	return cloneJob(job), nil
}

func cloneJob(job *Job) *Job {
	if job == nil {
		return nil
	}
	tmp := *job
	return &tmp
}
