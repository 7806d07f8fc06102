package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zarif007/RepliKat/pkg/models"
)

// JobStatus represents the current state of a mapping job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents a background route-mapping job. Crawls never fail outright,
// so a job that started always ends completed or cancelled; failures live on
// the result tree's nodes.
type Job struct {
	ID          string    `json:"id"`
	StartURL    string    `json:"start_url"`
	Status      JobStatus `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	// Result fields, set when the job completes
	Root   *models.RouteNode  `json:"-"`
	Report *models.CrawlReport `json:"-"`

	// Internal fields
	ctx    context.Context
	cancel context.CancelFunc
}

// JobManager manages background mapping jobs
type JobManager struct {
	jobs  map[string]*Job
	mu    sync.RWMutex
	byURL map[string]string // canonical start URL -> jobID for active jobs
}

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:  make(map[string]*Job),
		byURL: make(map[string]string),
	}
}

// CreateJob creates a job for a start URL. If a job for the same URL is still
// pending or running, that job is returned instead of starting a second one.
func (m *JobManager) CreateJob(startURL string) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, exists := m.byURL[startURL]; exists {
		existing := m.jobs[existingID]
		if existing != nil && (existing.Status == JobStatusPending || existing.Status == JobStatusRunning) {
			return existing, false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.New().String(),
		StartURL:  startURL,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	m.jobs[job.ID] = job
	m.byURL[startURL] = job.ID
	return job, true
}

// GetJob retrieves a job by ID
func (m *JobManager) GetJob(jobID string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[jobID]
}

// Snapshot returns a point-in-time copy of a job's state. Readers use the
// copy so status transitions in Complete/CancelJob never race with them.
func (m *JobManager) Snapshot(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// GetJobByURL retrieves the current job for a start URL
func (m *JobManager) GetJobByURL(startURL string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if jobID, exists := m.byURL[startURL]; exists {
		return m.jobs[jobID]
	}
	return nil
}

// IsActive checks whether a job is pending or running for a start URL
func (m *JobManager) IsActive(startURL string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if jobID, exists := m.byURL[startURL]; exists {
		job := m.jobs[jobID]
		return job != nil && (job.Status == JobStatusPending || job.Status == JobStatusRunning)
	}
	return false
}

// MarkRunning transitions a pending job to running
func (m *JobManager) MarkRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists && job.Status == JobStatusPending {
		job.Status = JobStatusRunning
	}
}

// Complete records the crawl result and transitions the job to completed.
// The URL slot is freed so a fresh job for the same URL can start.
func (m *JobManager) Complete(jobID string, root *models.RouteNode, report *models.CrawlReport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Status == JobStatusCancelled {
		return // Result of a cancelled crawl is discarded
	}
	job.Status = JobStatusCompleted
	job.CompletedAt = time.Now()
	job.Root = root
	job.Report = report
	delete(m.byURL, job.StartURL)
}

// CancelJob cancels a pending or running job
func (m *JobManager) CancelJob(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		if job.Status == JobStatusPending || job.Status == JobStatusRunning {
			job.cancel()
			job.Status = JobStatusCancelled
			job.CompletedAt = time.Now()
			delete(m.byURL, job.StartURL)
			return true
		}
	}
	return false
}

// CancelAll cancels all pending and running jobs
func (m *JobManager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if job.Status == JobStatusPending || job.Status == JobStatusRunning {
			job.cancel()
			job.Status = JobStatusCancelled
			job.CompletedAt = time.Now()
		}
	}
	m.byURL = make(map[string]string)
}

// ListJobs returns point-in-time copies of all known jobs
func (m *JobManager) ListJobs() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// GetContext returns the cancellation context for a job
func (m *JobManager) GetContext(jobID string) context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if job, exists := m.jobs[jobID]; exists {
		return job.ctx
	}
	return context.Background()
}
