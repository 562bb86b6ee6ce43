package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
)

// Start launches the queue processor loop. Each tick drains ready items up
// to the concurrency cap and waits for the whole batch to settle before the
// next batch may start.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ticker = time.NewTicker(o.cfg.TickInterval)

	go func() {
		o.logger.Info("Starting bulk publish processor",
			zap.Duration("tick_interval", o.cfg.TickInterval),
			zap.Int("max_concurrent", o.cfg.MaxConcurrentJobs))
		for {
			select {
			case <-o.ticker.C:
				o.tick(ctx)
			case <-o.stopCh:
				o.logger.Info("Bulk publish processor stopped")
				return
			case <-ctx.Done():
				o.logger.Info("Bulk publish processor context cancelled")
				return
			}
		}
	}()
}

// Stop halts the processor loop. In-flight publish attempts are not
// interrupted.
func (o *Orchestrator) Stop() {
	if o.ticker != nil {
		o.ticker.Stop()
	}
	close(o.stopCh)
}

// tick runs one scheduling pass. A failure inside a tick is logged and
// swallowed so the next tick still runs.
func (o *Orchestrator) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Processor tick panicked", zap.Any("panic", r))
			o.mu.Lock()
			o.busy = false
			o.mu.Unlock()
		}
	}()

	o.mu.Lock()
	if o.busy || o.queue.len() == 0 {
		o.mu.Unlock()
		return
	}
	batch := o.selectReadyLocked(o.now())
	if len(batch) == 0 {
		o.mu.Unlock()
		return
	}
	o.busy = true
	o.mu.Unlock()

	var wg sync.WaitGroup
	for _, item := range batch {
		wg.Add(1)
		go func(item *queueItem) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("Publish attempt panicked",
						zap.String("job_id", item.JobID),
						zap.String("platform", item.Platform),
						zap.Any("panic", r))
					o.failItem(item, fmt.Sprintf("panic during publish: %v", r), false, nil)
				}
			}()
			o.executeItem(ctx, item)
		}(item)
	}
	wg.Wait()

	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// selectReadyLocked picks up to MaxConcurrentJobs queued items that are due
// and whose job is still schedulable, preserving queue order.
func (o *Orchestrator) selectReadyLocked(now time.Time) []*queueItem {
	var ready []*queueItem
	for _, item := range o.queue.items {
		if len(ready) == o.cfg.MaxConcurrentJobs {
			break
		}
		if item.Status != itemStatusQueued || item.ScheduledAt.After(now) {
			continue
		}
		prog, ok := o.jobs.get(item.JobID)
		if !ok || !prog.schedulable() {
			continue
		}
		ready = append(ready, item)
	}
	return ready
}

// executeItem runs one publish attempt for a selected queue item.
func (o *Orchestrator) executeItem(ctx context.Context, item *queueItem) {
	now := o.now()

	o.mu.Lock()
	prog, ok := o.jobs.get(item.JobID)
	if !ok || !prog.schedulable() {
		// The job was cancelled or paused between selection and
		// execution. Leave counters untouched.
		o.mu.Unlock()
		return
	}

	item.Status = itemStatusProcessing
	item.Attempts++
	item.LastAttemptAt = &now

	res := prog.Platforms[item.Platform]
	res.Status = PlatformStatusPublishing
	if res.StartedAt == nil {
		res.StartedAt = &now
	}
	prog.CurrentPlatform = item.Platform
	if prog.Status != JobStatusRunning {
		prog.Status = JobStatusRunning
		if prog.StartedAt == nil {
			prog.StartedAt = &now
		}
	}
	prog.UpdatedAt = now
	o.mu.Unlock()

	o.emit(Event{Type: EventPlatformStarted, JobID: item.JobID, Platform: item.Platform, Timestamp: now})

	adapter, err := o.adapters.Resolve(item.Platform)
	if err != nil {
		// Unknown platform is fatal, never retried.
		o.failItem(item, err.Error(), false, nil)
		return
	}

	result, err := adapter.Publish(ctx, item.Content, item.Options)
	if err != nil {
		o.handlePublishError(item, err)
		return
	}

	if result.Success {
		o.completeItem(item, result)
		return
	}

	// Platform-reported failures are terminal; only unexpected adapter
	// errors go through the retry path.
	o.failItem(item, result.Error, isRetryableMessage(result.Error), result.Details)
}

// handlePublishError routes an unexpected adapter error to either a
// backoff-and-requeue or a terminal platform failure.
func (o *Orchestrator) handlePublishError(item *queueItem, err error) {
	if item.Attempts < item.MaxRetries && IsRetryableError(err) {
		now := o.now()
		delay := o.cfg.RetryDelay * time.Duration(item.Attempts)

		o.mu.Lock()
		item.Status = itemStatusQueued
		item.ScheduledAt = now.Add(delay)
		if prog, ok := o.jobs.get(item.JobID); ok {
			if res, exists := prog.Platforms[item.Platform]; exists {
				res.RetryCount++
				res.Status = PlatformStatusPending
				res.Error = err.Error()
			}
			prog.UpdatedAt = now
		}
		o.mu.Unlock()

		o.logger.Warn("Publish attempt failed, retrying",
			zap.String("job_id", item.JobID),
			zap.String("platform", item.Platform),
			zap.Int("attempt", item.Attempts),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		return
	}

	o.failItem(item, err.Error(), false, nil)
}

// completeItem retires a queue item after a successful publish and
// re-evaluates job completion.
func (o *Orchestrator) completeItem(item *queueItem, result *publisher.Result) {
	now := o.now()

	o.mu.Lock()
	item.Status = itemStatusCompleted
	o.queue.remove(item.ID)
	prog, ok := o.jobs.get(item.JobID)
	if !ok || prog.Status.Terminal() {
		// Cancelled while the adapter call was in flight; do not
		// resurrect the job's statistics.
		o.mu.Unlock()
		return
	}

	res := prog.Platforms[item.Platform]
	res.Status = PlatformStatusCompleted
	res.CompletedAt = &now
	res.Error = ""
	res.Result = result
	prog.CompletedPlatforms++
	prog.UpdatedAt = now
	o.mu.Unlock()

	o.logger.Info("Platform publish completed",
		zap.String("job_id", item.JobID),
		zap.String("platform", item.Platform),
		zap.String("url", result.URL))

	o.emit(Event{Type: EventPlatformCompleted, JobID: item.JobID, Platform: item.Platform, Result: result, Timestamp: now})

	o.finalizeJob(item.JobID)
}

// failItem retires a queue item with a terminal platform failure, appends
// the error to the job's log and re-evaluates completion.
func (o *Orchestrator) failItem(item *queueItem, message string, retryable bool, details map[string]string) {
	now := o.now()

	o.mu.Lock()
	item.Status = itemStatusFailed
	o.queue.remove(item.ID)
	prog, ok := o.jobs.get(item.JobID)
	if !ok || prog.Status.Terminal() {
		o.mu.Unlock()
		return
	}

	res := prog.Platforms[item.Platform]
	res.Status = PlatformStatusFailed
	res.CompletedAt = &now
	res.Error = message
	prog.FailedPlatforms++
	prog.Errors = append(prog.Errors, BulkPublishError{
		Platform:  item.Platform,
		Message:   message,
		Timestamp: now,
		Retryable: retryable,
		Details:   details,
	})
	prog.UpdatedAt = now
	o.mu.Unlock()

	o.logger.Warn("Platform publish failed",
		zap.String("job_id", item.JobID),
		zap.String("platform", item.Platform),
		zap.Int("attempts", item.Attempts),
		zap.String("error", message))

	o.emit(Event{Type: EventPlatformFailed, JobID: item.JobID, Platform: item.Platform, Error: message, Timestamp: now})

	o.finalizeJob(item.JobID)
}

// finalizeJob re-evaluates aggregate completion after an item outcome. While
// platforms remain it refreshes the estimated completion time; once every
// platform is terminal it settles the job status and emits the matching
// notification.
func (o *Orchestrator) finalizeJob(jobID string) {
	now := o.now()

	o.mu.Lock()
	prog, ok := o.jobs.get(jobID)
	if !ok || prog.Status.Terminal() {
		o.mu.Unlock()
		return
	}

	processed := prog.CompletedPlatforms + prog.FailedPlatforms
	if processed < prog.TotalPlatforms {
		if prog.CompletedPlatforms > 0 && prog.StartedAt != nil {
			elapsed := now.Sub(*prog.StartedAt)
			perPlatform := elapsed / time.Duration(prog.CompletedPlatforms)
			remaining := prog.TotalPlatforms - processed
			eta := now.Add(perPlatform * time.Duration(remaining))
			prog.EstimatedCompletion = &eta
		}
		o.mu.Unlock()
		return
	}

	var event EventType
	switch {
	case prog.FailedPlatforms == 0:
		prog.Status = JobStatusCompleted
		event = EventJobCompleted
	case prog.CompletedPlatforms == 0:
		prog.Status = JobStatusFailed
		event = EventJobFailed
	default:
		prog.Status = JobStatusPartial
		event = EventJobPartial
	}
	prog.CurrentPlatform = ""
	prog.EstimatedCompletion = nil
	prog.CompletedAt = &now
	prog.UpdatedAt = now
	userID := prog.UserID
	o.mu.Unlock()

	o.logger.Info("Bulk publish job finished",
		zap.String("job_id", jobID),
		zap.String("status", string(event)))

	o.emit(Event{Type: event, JobID: jobID, UserID: userID, Timestamp: now})
}
