package orchestrator

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
	"github.com/rankforge/rankforge/pkg/util"
)

// AdapterRegistry resolves a platform name to its publish adapter.
type AdapterRegistry interface {
	Resolve(platform string) (publisher.Publisher, error)
}

// Config fixes the orchestrator's scheduling knobs at construction.
type Config struct {
	MaxConcurrentJobs int
	RetryDelay        time.Duration
	TickInterval      time.Duration
	MaxRetries        int
	EventBuffer       int
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentJobs <= 0 {
		c.MaxConcurrentJobs = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
	return c
}

// Orchestrator owns the job registry and the priority queue, and drives the
// queue processor. All public operations are safe to call concurrently with
// the processor tick: one mutex guards both shared structures.
type Orchestrator struct {
	cfg      Config
	logger   *zap.Logger
	adapters AdapterRegistry

	mu    sync.Mutex
	jobs  *jobRegistry
	queue *priorityQueue
	busy  bool // a tick's batch is still in flight

	events chan Event
	ticker *time.Ticker
	stopCh chan struct{}

	now func() time.Time
}

func New(cfg Config, adapters AdapterRegistry, logger *zap.Logger) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		adapters: adapters,
		jobs:     newJobRegistry(),
		queue:    newPriorityQueue(),
		events:   make(chan Event, cfg.EventBuffer),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// CreateJob validates and accepts a bulk publish request, enqueues one item
// per target platform and returns the job ID. Publishing itself happens
// asynchronously on the processor tick.
func (o *Orchestrator) CreateJob(req BulkPublishRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	now := o.now()

	status := JobStatusPending
	scheduledAt := now
	if req.ScheduledAt != nil && req.ScheduledAt.After(now) {
		status = JobStatusScheduled
		scheduledAt = *req.ScheduledAt
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = o.cfg.MaxRetries
	}

	prog := &BulkPublishProgress{
		JobID:          req.ID,
		UserID:         req.UserID,
		Status:         status,
		TotalPlatforms: len(req.Platforms),
		Platforms:      make(map[string]*PlatformPublishResult, len(req.Platforms)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]*queueItem, 0, len(req.Platforms))
	for _, target := range req.Platforms {
		prog.Platforms[target.Platform] = &PlatformPublishResult{
			Platform: target.Platform,
			Status:   PlatformStatusPending,
		}
		items = append(items, &queueItem{
			ID:          util.NewItemID(req.ID, target.Platform, now),
			JobID:       req.ID,
			Platform:    target.Platform,
			Content:     resolveContent(req.Content, target),
			Options:     resolveOptions(req.Options, target),
			Priority:    target.Priority,
			ScheduledAt: scheduledAt,
			MaxRetries:  maxRetries,
			Status:      itemStatusQueued,
			CreatedAt:   now,
		})
	}

	o.mu.Lock()
	if _, exists := o.jobs.get(req.ID); exists {
		o.mu.Unlock()
		return "", fmt.Errorf("bulk job %s already exists", req.ID)
	}
	o.jobs.put(prog)
	for _, item := range items {
		o.queue.insert(item)
	}
	o.mu.Unlock()

	o.logger.Info("Bulk publish job created",
		zap.String("job_id", req.ID),
		zap.Int("platforms", len(req.Platforms)),
		zap.String("status", string(status)))

	o.emit(Event{Type: EventJobCreated, JobID: req.ID, UserID: req.UserID, Request: &req, Timestamp: now})

	return req.ID, nil
}

// GetProgress returns a snapshot of the job's aggregate state.
func (o *Orchestrator) GetProgress(jobID string) (*BulkPublishProgress, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	prog, ok := o.jobs.get(jobID)
	if !ok {
		return nil, false
	}
	return prog.clone(), true
}

// Cancel moves a non-terminal job to cancelled and purges its queued items.
// Cancelling an unknown or already-terminal job returns false.
func (o *Orchestrator) Cancel(jobID, userID string) bool {
	now := o.now()

	o.mu.Lock()
	prog, ok := o.jobs.get(jobID)
	if !ok || prog.Status.Terminal() {
		o.mu.Unlock()
		return false
	}

	prog.Status = JobStatusCancelled
	prog.UpdatedAt = now
	removed := o.queue.removeJob(jobID)
	o.mu.Unlock()

	o.logger.Info("Bulk publish job cancelled",
		zap.String("job_id", jobID),
		zap.String("user_id", userID),
		zap.Int("items_removed", removed))

	o.emit(Event{Type: EventJobCancelled, JobID: jobID, UserID: userID, Timestamp: now})
	return true
}

// Pause suspends a running job. Its items stay queued but are skipped by
// the processor until Resume.
func (o *Orchestrator) Pause(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	prog, ok := o.jobs.get(jobID)
	if !ok || prog.Status != JobStatusRunning {
		return false
	}
	prog.Status = JobStatusPaused
	prog.UpdatedAt = o.now()
	return true
}

// Resume makes a paused job's items selectable again.
func (o *Orchestrator) Resume(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	prog, ok := o.jobs.get(jobID)
	if !ok || prog.Status != JobStatusPaused {
		return false
	}
	prog.Status = JobStatusRunning
	prog.UpdatedAt = o.now()
	return true
}

// ListJobs returns snapshots of jobs matching the filter, sorted and
// paginated. Default order is last-updated descending.
func (o *Orchestrator) ListJobs(filter ListFilter) []*BulkPublishProgress {
	o.mu.Lock()
	var matched []*BulkPublishProgress
	for _, prog := range o.jobs.all() {
		if matchesFilter(prog, filter) {
			matched = append(matched, prog.clone())
		}
	}
	o.mu.Unlock()

	sortJobs(matched, filter.SortBy, filter.SortOrder)

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := filter.Offset
	if offset >= len(matched) {
		return nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end]
}

// GetStats derives aggregate counts, a platform breakdown, the overall
// success rate and the average completion time over the full registry. A
// non-empty userID narrows the numbers to that user's jobs.
func (o *Orchestrator) GetStats(userID string) Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	stats := Stats{
		JobsByStatus:      make(map[JobStatus]int),
		PlatformBreakdown: make(map[string]PlatformStats),
		QueueDepth:        o.queue.len(),
	}

	var processed, completed int
	var completionTotal time.Duration
	var completionCount int

	for _, prog := range o.jobs.all() {
		if userID != "" && prog.UserID != userID {
			continue
		}
		stats.TotalJobs++
		stats.JobsByStatus[prog.Status]++
		if !prog.Status.Terminal() {
			stats.ActiveJobs++
		}

		for name, res := range prog.Platforms {
			entry := stats.PlatformBreakdown[name]
			entry.Total++
			switch res.Status {
			case PlatformStatusCompleted:
				entry.Completed++
			case PlatformStatusFailed:
				entry.Failed++
			}
			stats.PlatformBreakdown[name] = entry
		}

		processed += prog.CompletedPlatforms + prog.FailedPlatforms
		completed += prog.CompletedPlatforms

		if prog.CompletedAt != nil {
			completionTotal += prog.CompletedAt.Sub(prog.CreatedAt)
			completionCount++
		}
	}

	if processed > 0 {
		stats.SuccessRate = float64(completed) / float64(processed)
	}
	if completionCount > 0 {
		stats.AvgCompletionMinutes = completionTotal.Minutes() / float64(completionCount)
	}

	return stats
}

func validateRequest(req BulkPublishRequest) error {
	if req.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if req.Content.Title == "" {
		return &ValidationError{Field: "content.title", Reason: "must not be empty"}
	}
	if req.Content.Body == "" {
		return &ValidationError{Field: "content.body", Reason: "must not be empty"}
	}
	if len(req.Platforms) == 0 {
		return &ValidationError{Field: "platforms", Reason: "at least one platform is required"}
	}
	if len(req.Platforms) > MaxPlatformsPerJob {
		return &ValidationError{
			Field:  "platforms",
			Reason: fmt.Sprintf("at most %d platforms per job, got %d", MaxPlatformsPerJob, len(req.Platforms)),
		}
	}

	seen := make(map[string]bool, len(req.Platforms))
	for i, target := range req.Platforms {
		field := fmt.Sprintf("platforms[%d]", i)
		if target.Platform == "" {
			return &ValidationError{Field: field + ".platform", Reason: "must not be empty"}
		}
		if seen[target.Platform] {
			return &ValidationError{Field: field + ".platform", Reason: "duplicate platform " + target.Platform}
		}
		seen[target.Platform] = true
		if len(target.Credentials) == 0 {
			return &ValidationError{Field: field + ".credentials", Reason: "must not be empty"}
		}
		if target.Priority < 1 || target.Priority > 10 {
			return &ValidationError{Field: field + ".priority", Reason: "must be between 1 and 10"}
		}
	}
	return nil
}

// resolveContent merges per-platform customizations into a copy of the base
// content. Known keys override content fields, everything else lands in the
// metadata map.
func resolveContent(base publisher.Content, target PlatformTarget) publisher.Content {
	content := base.Clone()
	if len(target.Customizations) == 0 {
		return content
	}
	if content.Metadata == nil {
		content.Metadata = make(map[string]string)
	}
	for key, value := range target.Customizations {
		switch key {
		case "title":
			content.Title = value
		case "summary":
			content.Summary = value
		case "author":
			content.Author = value
		case "tags":
			content.Tags = util.ParseTags(value)
		default:
			content.Metadata[key] = value
		}
	}
	return content
}

// resolveOptions merges global request options with per-platform options;
// per-platform values win.
func resolveOptions(global map[string]string, target PlatformTarget) publisher.Options {
	settings := make(map[string]string, len(global)+len(target.Options))
	for k, v := range global {
		settings[k] = v
	}
	for k, v := range target.Options {
		settings[k] = v
	}
	return publisher.Options{
		Credentials: target.Credentials,
		Settings:    settings,
	}
}

func matchesFilter(prog *BulkPublishProgress, filter ListFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if prog.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Platforms) > 0 {
		found := false
		for _, platform := range filter.Platforms {
			if _, ok := prog.Platforms[platform]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortJobs(jobs []*BulkPublishProgress, sortBy, order string) {
	asc := order == "asc"
	less := func(a, b *BulkPublishProgress) bool {
		switch sortBy {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "status":
			return a.Status < b.Status
		default: // updated_at
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if asc {
			return less(jobs[i], jobs[j])
		}
		return less(jobs[j], jobs[i])
	})
}
