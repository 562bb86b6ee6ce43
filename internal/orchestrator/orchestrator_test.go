package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobValidation(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	manyTargets := make([]PlatformTarget, 11)
	for i := range manyTargets {
		manyTargets[i] = testTarget("platform-"+string(rune('a'+i)), 5)
	}

	tests := []struct {
		name  string
		req   BulkPublishRequest
		field string
	}{
		{"empty id", testRequest("", testTarget("wordpress", 5)), "id"},
		{"no platforms", testRequest("job-1"), "platforms"},
		{"too many platforms", BulkPublishRequest{ID: "job-1", Content: testRequest("x", testTarget("wordpress", 5)).Content, Platforms: manyTargets}, "platforms"},
		{"priority too low", testRequest("job-1", testTarget("wordpress", 0)), "platforms[0].priority"},
		{"priority too high", testRequest("job-1", testTarget("wordpress", 11)), "platforms[0].priority"},
		{"missing credentials", testRequest("job-1", PlatformTarget{Platform: "wordpress", Priority: 5}), "platforms[0].credentials"},
		{"duplicate platform", testRequest("job-1", testTarget("wordpress", 5), testTarget("wordpress", 3)), "platforms[1].platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.CreateJob(tt.req)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)

			// Nothing may be registered for a rejected request
			_, ok := o.GetProgress(tt.req.ID)
			assert.False(t, ok)
		})
	}
}

func TestCreateJobEmptyContent(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	req := testRequest("job-1", testTarget("wordpress", 5))
	req.Content.Title = ""
	_, err := o.CreateJob(req)
	require.Error(t, err)

	req = testRequest("job-2", testTarget("wordpress", 5))
	req.Content.Body = ""
	_, err = o.CreateJob(req)
	require.Error(t, err)
}

func TestCreateJobInitialState(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	jobID, err := o.CreateJob(testRequest("job-1", testTarget("wordpress", 5), testTarget("shopify", 7)))
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)

	prog, ok := o.GetProgress(jobID)
	require.True(t, ok)
	assert.Equal(t, JobStatusPending, prog.Status)
	assert.Equal(t, 2, prog.TotalPlatforms)
	assert.Equal(t, 0, prog.CompletedPlatforms)
	assert.Equal(t, 0, prog.FailedPlatforms)
	require.Contains(t, prog.Platforms, "wordpress")
	require.Contains(t, prog.Platforms, "shopify")
	assert.Equal(t, PlatformStatusPending, prog.Platforms["wordpress"].Status)
	assert.Equal(t, 0, prog.Platforms["wordpress"].RetryCount)

	events := drainEvents(o)
	require.Len(t, events, 1)
	assert.Equal(t, EventJobCreated, events[0])
}

func TestCreateJobScheduledInFuture(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	at := o.now().Add(time.Hour)
	req := testRequest("job-1", testTarget("wordpress", 5))
	req.ScheduledAt = &at

	_, err := o.CreateJob(req)
	require.NoError(t, err)

	prog, _ := o.GetProgress("job-1")
	assert.Equal(t, JobStatusScheduled, prog.Status)
}

func TestCreateJobDuplicateID(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	_, err := o.CreateJob(testRequest("job-1", testTarget("wordpress", 5)))
	require.NoError(t, err)

	_, err = o.CreateJob(testRequest("job-1", testTarget("shopify", 5)))
	assert.Error(t, err)
}

func TestGetProgressReturnsSnapshot(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())
	_, err := o.CreateJob(testRequest("job-1", testTarget("wordpress", 5)))
	require.NoError(t, err)

	prog, ok := o.GetProgress("job-1")
	require.True(t, ok)

	// Mutating the snapshot must not touch registry state
	prog.Status = JobStatusFailed
	prog.Platforms["wordpress"].Status = PlatformStatusFailed

	fresh, _ := o.GetProgress("job-1")
	assert.Equal(t, JobStatusPending, fresh.Status)
	assert.Equal(t, PlatformStatusPending, fresh.Platforms["wordpress"].Status)
}

func TestGetProgressUnknownJob(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())
	_, ok := o.GetProgress("missing")
	assert.False(t, ok)
}

func TestCancelIsIdempotent(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())
	_, err := o.CreateJob(testRequest("job-1", testTarget("wordpress", 5), testTarget("shopify", 5)))
	require.NoError(t, err)

	assert.True(t, o.Cancel("job-1", "user-1"))
	assert.False(t, o.Cancel("job-1", "user-1"))
	assert.False(t, o.Cancel("missing", "user-1"))

	prog, _ := o.GetProgress("job-1")
	assert.Equal(t, JobStatusCancelled, prog.Status)
	assert.Equal(t, 0, o.GetStats("").QueueDepth)
}

func TestPauseResumeTransitions(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())
	_, err := o.CreateJob(testRequest("job-1", testTarget("wordpress", 5)))
	require.NoError(t, err)

	// Pause is only valid for a running job
	assert.False(t, o.Pause("job-1"))
	assert.False(t, o.Resume("job-1"))
	assert.False(t, o.Pause("missing"))
}

func TestListJobsFilterSortPaginate(t *testing.T) {
	o, advance := newTestOrchestrator(Config{}, newStubRegistry())

	_, err := o.CreateJob(testRequest("job-a", testTarget("wordpress", 5)))
	require.NoError(t, err)
	advance(time.Minute)
	_, err = o.CreateJob(testRequest("job-b", testTarget("shopify", 5)))
	require.NoError(t, err)
	advance(time.Minute)
	_, err = o.CreateJob(testRequest("job-c", testTarget("wordpress", 5), testTarget("hubspot", 5)))
	require.NoError(t, err)

	// Default sort: last updated, descending
	jobs := o.ListJobs(ListFilter{})
	require.Len(t, jobs, 3)
	assert.Equal(t, "job-c", jobs[0].JobID)
	assert.Equal(t, "job-a", jobs[2].JobID)

	// Platform filter
	jobs = o.ListJobs(ListFilter{Platforms: []string{"wordpress"}})
	require.Len(t, jobs, 2)

	// Status filter
	o.Cancel("job-b", "user-1")
	jobs = o.ListJobs(ListFilter{Statuses: []JobStatus{JobStatusCancelled}})
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-b", jobs[0].JobID)

	// Ascending by creation time with pagination
	jobs = o.ListJobs(ListFilter{SortBy: "created_at", SortOrder: "asc", Offset: 1, Limit: 1})
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-b", jobs[0].JobID)

	// Offset past the end
	assert.Empty(t, o.ListJobs(ListFilter{Offset: 10}))
}

func TestGetStatsAggregation(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	_, err := o.CreateJob(testRequest("job-a", testTarget("wordpress", 5)))
	require.NoError(t, err)
	_, err = o.CreateJob(testRequest("job-b", testTarget("wordpress", 5), testTarget("shopify", 5)))
	require.NoError(t, err)
	o.Cancel("job-b", "user-1")

	stats := o.GetStats("")
	assert.Equal(t, 2, stats.TotalJobs)
	assert.Equal(t, 1, stats.ActiveJobs)
	assert.Equal(t, 1, stats.JobsByStatus[JobStatusPending])
	assert.Equal(t, 1, stats.JobsByStatus[JobStatusCancelled])
	assert.Equal(t, 1, stats.QueueDepth)
	assert.Equal(t, 2, stats.PlatformBreakdown["wordpress"].Total)
	assert.Equal(t, 1, stats.PlatformBreakdown["shopify"].Total)
	assert.Zero(t, stats.SuccessRate)
}

func TestGetStatsScopedToUser(t *testing.T) {
	o, _ := newTestOrchestrator(Config{}, newStubRegistry())

	reqA := testRequest("job-a", testTarget("wordpress", 5))
	reqA.UserID = "user-1"
	reqB := testRequest("job-b", testTarget("shopify", 5))
	reqB.UserID = "user-2"

	_, err := o.CreateJob(reqA)
	require.NoError(t, err)
	_, err = o.CreateJob(reqB)
	require.NoError(t, err)

	stats := o.GetStats("user-1")
	assert.Equal(t, 1, stats.TotalJobs)
	assert.Equal(t, 1, stats.PlatformBreakdown["wordpress"].Total)
	assert.Empty(t, stats.PlatformBreakdown["shopify"])

	// Queue depth stays global.
	assert.Equal(t, 2, stats.QueueDepth)
}
