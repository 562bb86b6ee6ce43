package orchestrator

import (
	"fmt"
	"time"

	"github.com/rankforge/rankforge/internal/publisher"
)

// JobStatus is the aggregate status of a bulk publish job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusRunning   JobStatus = "running"
	JobStatusPaused    JobStatus = "paused"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusPartial   JobStatus = "partial"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further work will happen for a job in this
// status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusPartial, JobStatusCancelled:
		return true
	}
	return false
}

// PlatformStatus is the status of one platform's publish within a job.
type PlatformStatus string

const (
	PlatformStatusPending    PlatformStatus = "pending"
	PlatformStatusPublishing PlatformStatus = "publishing"
	PlatformStatusCompleted  PlatformStatus = "completed"
	PlatformStatusFailed     PlatformStatus = "failed"
)

type itemStatus string

const (
	itemStatusQueued     itemStatus = "queued"
	itemStatusProcessing itemStatus = "processing"
	itemStatusCompleted  itemStatus = "completed"
	itemStatusFailed     itemStatus = "failed"
)

// MaxPlatformsPerJob caps how many targets a single bulk request may carry.
const MaxPlatformsPerJob = 10

// PlatformTarget specifies one platform within a bulk publish request.
type PlatformTarget struct {
	Platform       string            `json:"platform"`
	Credentials    map[string]string `json:"credentials"`
	Customizations map[string]string `json:"customizations,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	Priority       int               `json:"priority"`
}

// BulkPublishRequest asks for one piece of content to be published to
// multiple target platforms. It is immutable once accepted.
type BulkPublishRequest struct {
	ID          string            `json:"id"`
	Content     publisher.Content `json:"content"`
	Platforms   []PlatformTarget  `json:"platforms"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
	MaxRetries  int               `json:"max_retries,omitempty"`
	UserID      string            `json:"user_id,omitempty"`
}

// PlatformPublishResult tracks one platform's slot inside a job's progress.
type PlatformPublishResult struct {
	Platform    string            `json:"platform"`
	Status      PlatformStatus    `json:"status"`
	RetryCount  int               `json:"retry_count"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Result      *publisher.Result `json:"result,omitempty"`
}

// BulkPublishError is one entry in a job's accumulated error log.
type BulkPublishError struct {
	Platform  string            `json:"platform"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Retryable bool              `json:"retryable"`
	Details   map[string]string `json:"details,omitempty"`
}

// BulkPublishProgress is the aggregate state of one bulk publish job. The
// job registry owns these; callers only ever see snapshots.
type BulkPublishProgress struct {
	JobID               string                            `json:"job_id"`
	UserID              string                            `json:"user_id,omitempty"`
	Status              JobStatus                         `json:"status"`
	TotalPlatforms      int                               `json:"total_platforms"`
	CompletedPlatforms  int                               `json:"completed_platforms"`
	FailedPlatforms     int                               `json:"failed_platforms"`
	Platforms           map[string]*PlatformPublishResult `json:"platforms"`
	Errors              []BulkPublishError                `json:"errors,omitempty"`
	CurrentPlatform     string                            `json:"current_platform,omitempty"`
	CreatedAt           time.Time                         `json:"created_at"`
	StartedAt           *time.Time                        `json:"started_at,omitempty"`
	CompletedAt         *time.Time                        `json:"completed_at,omitempty"`
	EstimatedCompletion *time.Time                        `json:"estimated_completion,omitempty"`
	UpdatedAt           time.Time                         `json:"updated_at"`
}

// schedulable reports whether the queue processor may run items for this
// job. Paused jobs are skipped but not terminal.
func (p *BulkPublishProgress) schedulable() bool {
	return !p.Status.Terminal() && p.Status != JobStatusPaused
}

func (p *BulkPublishProgress) clone() *BulkPublishProgress {
	out := *p
	out.Platforms = make(map[string]*PlatformPublishResult, len(p.Platforms))
	for name, res := range p.Platforms {
		cp := *res
		out.Platforms[name] = &cp
	}
	out.Errors = append([]BulkPublishError(nil), p.Errors...)
	return &out
}

// queueItem is one platform's pending publish work within a job. It holds a
// back-reference to the job by ID only; the registry owns the progress.
type queueItem struct {
	ID            string
	JobID         string
	Platform      string
	Content       publisher.Content
	Options       publisher.Options
	Priority      int
	ScheduledAt   time.Time
	Attempts      int
	MaxRetries    int
	Status        itemStatus
	CreatedAt     time.Time
	LastAttemptAt *time.Time
}

// ValidationError reports a malformed bulk publish request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid bulk publish request: %s: %s", e.Field, e.Reason)
}

// ListFilter narrows and orders the result of ListJobs.
type ListFilter struct {
	Statuses  []JobStatus
	Platforms []string
	SortBy    string // created_at | updated_at | status
	SortOrder string // asc | desc
	Offset    int
	Limit     int
}

// DefaultListLimit is used when a filter does not set one.
const DefaultListLimit = 50

// PlatformStats is the per-platform slice of the aggregate statistics.
type PlatformStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Stats is a derived snapshot over the whole job registry.
type Stats struct {
	TotalJobs            int                      `json:"total_jobs"`
	ActiveJobs           int                      `json:"active_jobs"`
	JobsByStatus         map[JobStatus]int        `json:"jobs_by_status"`
	PlatformBreakdown    map[string]PlatformStats `json:"platform_breakdown"`
	SuccessRate          float64                  `json:"success_rate"`
	AvgCompletionMinutes float64                  `json:"avg_completion_minutes"`
	QueueDepth           int                      `json:"queue_depth"`
}
