package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarif007/RepliKat/pkg/models"
)

func createTestJob(t *testing.T, jm *JobManager, startURL string) *Job {
	t.Helper()
	job, created := jm.CreateJob(startURL)
	require.NotNil(t, job)
	require.True(t, created)
	return job
}

func TestNewJobManager(t *testing.T) {
	jm := NewJobManager()
	require.NotNil(t, jm)
	assert.Empty(t, jm.ListJobs())
}

func TestCreateJob(t *testing.T) {
	t.Run("new job fields correct", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "https://example.com", job.StartURL)
		assert.Equal(t, JobStatusPending, job.Status)
		assert.False(t, job.StartedAt.IsZero())
		assert.True(t, job.CompletedAt.IsZero())
		assert.Nil(t, job.Root)
		assert.Nil(t, job.Report)
	})

	t.Run("duplicate active URL returns same job", func(t *testing.T) {
		jm := NewJobManager()
		job1 := createTestJob(t, jm, "https://example.com")
		job2, created := jm.CreateJob("https://example.com")
		assert.False(t, created)
		assert.Equal(t, job1.ID, job2.ID)
	})

	t.Run("new job allowed after completion", func(t *testing.T) {
		jm := NewJobManager()
		job1 := createTestJob(t, jm, "https://example.com")
		jm.Complete(job1.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})

		job2, created := jm.CreateJob("https://example.com")
		assert.True(t, created)
		assert.NotEqual(t, job1.ID, job2.ID)
	})

	t.Run("different URLs independent", func(t *testing.T) {
		jm := NewJobManager()
		job1 := createTestJob(t, jm, "https://a.example.com")
		job2 := createTestJob(t, jm, "https://b.example.com")
		assert.NotEqual(t, job1.ID, job2.ID)
	})
}

func TestGetJob(t *testing.T) {
	jm := NewJobManager()

	t.Run("exists returns job", func(t *testing.T) {
		job := createTestJob(t, jm, "https://example.com")
		got := jm.GetJob(job.ID)
		require.NotNil(t, got)
		assert.Equal(t, job.ID, got.ID)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		assert.Nil(t, jm.GetJob("nonexistent-id"))
	})
}

func TestGetJobByURL(t *testing.T) {
	jm := NewJobManager()
	job := createTestJob(t, jm, "https://example.com")

	got := jm.GetJobByURL("https://example.com")
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)

	assert.Nil(t, jm.GetJobByURL("https://other.com"))
}

func TestIsActive(t *testing.T) {
	jm := NewJobManager()
	job := createTestJob(t, jm, "https://example.com")

	assert.True(t, jm.IsActive("https://example.com"))

	jm.MarkRunning(job.ID)
	assert.True(t, jm.IsActive("https://example.com"))

	jm.Complete(job.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})
	assert.False(t, jm.IsActive("https://example.com"))
}

func TestComplete(t *testing.T) {
	t.Run("records result and frees the URL slot", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")
		jm.MarkRunning(job.ID)

		root := &models.RouteNode{Path: "/", Outcome: models.OutcomeSuccess}
		report := &models.CrawlReport{PagesFetched: 3, RoutesDiscovered: 3}
		jm.Complete(job.ID, root, report)

		got := jm.GetJob(job.ID)
		assert.Equal(t, JobStatusCompleted, got.Status)
		assert.False(t, got.CompletedAt.IsZero())
		assert.Same(t, root, got.Root)
		assert.Same(t, report, got.Report)
		assert.False(t, jm.IsActive("https://example.com"))
	})

	t.Run("cancelled job discards late result", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")
		jm.MarkRunning(job.ID)
		require.True(t, jm.CancelJob(job.ID))

		jm.Complete(job.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})

		got := jm.GetJob(job.ID)
		assert.Equal(t, JobStatusCancelled, got.Status)
		assert.Nil(t, got.Root)
	})

	t.Run("unknown job is a no-op", func(t *testing.T) {
		jm := NewJobManager()
		jm.Complete("nonexistent-id", &models.RouteNode{Path: "/"}, &models.CrawlReport{})
		assert.Empty(t, jm.ListJobs())
	})
}

func TestCancelJob(t *testing.T) {
	t.Run("cancels pending job and its context", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")
		ctx := jm.GetContext(job.ID)

		assert.True(t, jm.CancelJob(job.ID))
		assert.Equal(t, JobStatusCancelled, jm.GetJob(job.ID).Status)
		assert.Error(t, ctx.Err())
	})

	t.Run("finished job not cancellable", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")
		jm.Complete(job.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})

		assert.False(t, jm.CancelJob(job.ID))
	})

	t.Run("unknown job not cancellable", func(t *testing.T) {
		jm := NewJobManager()
		assert.False(t, jm.CancelJob("nonexistent-id"))
	})
}

func TestCancelAll(t *testing.T) {
	jm := NewJobManager()
	job1 := createTestJob(t, jm, "https://a.example.com")
	job2 := createTestJob(t, jm, "https://b.example.com")
	done := createTestJob(t, jm, "https://c.example.com")
	jm.Complete(done.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})

	jm.CancelAll()

	assert.Equal(t, JobStatusCancelled, jm.GetJob(job1.ID).Status)
	assert.Equal(t, JobStatusCancelled, jm.GetJob(job2.ID).Status)
	assert.Equal(t, JobStatusCompleted, jm.GetJob(done.ID).Status)
	assert.False(t, jm.IsActive("https://a.example.com"))
	assert.False(t, jm.IsActive("https://b.example.com"))
}

func TestSnapshot(t *testing.T) {
	t.Run("copies current state", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")

		snap, ok := jm.Snapshot(job.ID)
		require.True(t, ok)
		assert.Equal(t, job.ID, snap.ID)
		assert.Equal(t, JobStatusPending, snap.Status)
	})

	t.Run("copy is detached from later transitions", func(t *testing.T) {
		jm := NewJobManager()
		job := createTestJob(t, jm, "https://example.com")

		snap, ok := jm.Snapshot(job.ID)
		require.True(t, ok)
		jm.Complete(job.ID, &models.RouteNode{Path: "/"}, &models.CrawlReport{})

		assert.Equal(t, JobStatusPending, snap.Status)
		after, ok := jm.Snapshot(job.ID)
		require.True(t, ok)
		assert.Equal(t, JobStatusCompleted, after.Status)
		assert.NotNil(t, after.Root)
	})

	t.Run("missing job", func(t *testing.T) {
		jm := NewJobManager()
		_, ok := jm.Snapshot("nonexistent-id")
		assert.False(t, ok)
	})
}

func TestListJobs(t *testing.T) {
	jm := NewJobManager()
	createTestJob(t, jm, "https://a.example.com")
	createTestJob(t, jm, "https://b.example.com")

	assert.Len(t, jm.ListJobs(), 2)
}
