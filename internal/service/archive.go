package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/rankforge/rankforge/internal/models"
	"github.com/rankforge/rankforge/internal/orchestrator"
)

// ArchiveService persists terminal bulk publish outcomes and error logs for
// the dashboard. The orchestrator itself stays in-memory; this is the
// read-model behind publish history and the error feed.
type ArchiveService struct {
	db     *gorm.DB
	logger *zap.Logger

	mu      sync.Mutex
	content map[string]contentMeta // jobID -> content metadata, held until archival
}

type contentMeta struct {
	title string
	tags  []string
}

func NewArchiveService(db *gorm.DB, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{
		db:      db,
		logger:  logger,
		content: make(map[string]contentMeta),
	}
}

// Run consumes orchestrator notifications until the context is cancelled.
// Events are best-effort; a failed write is logged and dropped.
func (a *ArchiveService) Run(ctx context.Context, orch *orchestrator.Orchestrator) {
	go func() {
		a.logger.Info("Starting publish archive consumer")
		for {
			select {
			case <-ctx.Done():
				a.logger.Info("Publish archive consumer stopped")
				return
			case ev := <-orch.Events():
				a.handleEvent(orch, ev)
			}
		}
	}()
}

func (a *ArchiveService) handleEvent(orch *orchestrator.Orchestrator, ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventJobCreated:
		if ev.Request != nil {
			a.mu.Lock()
			a.content[ev.JobID] = contentMeta{
				title: ev.Request.Content.Title,
				tags:  ev.Request.Content.Tags,
			}
			a.mu.Unlock()
		}
	case orchestrator.EventJobCompleted,
		orchestrator.EventJobFailed,
		orchestrator.EventJobPartial,
		orchestrator.EventJobCancelled:
		prog, ok := orch.GetProgress(ev.JobID)
		if !ok {
			return
		}
		if err := a.ArchiveJob(prog); err != nil {
			a.logger.Error("Failed to archive bulk publish job",
				zap.String("job_id", ev.JobID),
				zap.Error(err))
		}
	case orchestrator.EventPlatformFailed:
		if err := a.RecordError("ERROR", "orchestrator", "Platform publish failed", ev.Error,
			WithPlatform(ev.Platform),
			WithJob(ev.JobID)); err != nil {
			a.logger.Error("Failed to record error log", zap.Error(err))
		}
	}
}

// ArchiveJob writes one PublishRecord row per platform of a finished job.
func (a *ArchiveService) ArchiveJob(prog *orchestrator.BulkPublishProgress) error {
	a.mu.Lock()
	meta := a.content[prog.JobID]
	delete(a.content, prog.JobID)
	a.mu.Unlock()

	for _, res := range prog.Platforms {
		record := &models.PublishRecord{
			JobID:        prog.JobID,
			Platform:     res.Platform,
			Status:       string(res.Status),
			ContentTitle: meta.title,
			ContentTags:  meta.tags,
			RetryCount:   res.RetryCount,
			Error:        res.Error,
		}
		if res.Result != nil {
			record.PlatformContentID = res.Result.PlatformContentID
			record.URL = res.Result.URL
			if !res.Result.PublishedAt.IsZero() {
				publishedAt := res.Result.PublishedAt
				record.PublishedAt = &publishedAt
			}
		}
		if err := a.db.Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetHistory returns the archived per-platform outcomes for a job.
func (a *ArchiveService) GetHistory(jobID string) ([]*models.PublishRecord, error) {
	var records []*models.PublishRecord
	if err := a.db.Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SyncPlatformCatalogue makes sure every registered platform has a row in
// the platform table.
func (a *ArchiveService) SyncPlatformCatalogue(names []string) {
	for _, name := range names {
		var platform models.Platform
		if err := a.db.Where("name = ?", name).First(&platform).Error; err == nil {
			continue
		}
		platform = models.Platform{
			Name:        name,
			DisplayName: displayName(name),
			Config:      "{}",
			Enabled:     true,
		}
		if err := a.db.Create(&platform).Error; err != nil {
			a.logger.Error("Failed to create platform row",
				zap.String("platform", name),
				zap.Error(err))
		}
	}
}

// displayName derives a human-readable platform label. A cases.Caser is
// stateful, so build one per call.
func displayName(name string) string {
	return cases.Title(language.English).String(name)
}

// RecordError appends a row to the error log.
func (a *ArchiveService) RecordError(level, source, title, message string, options ...ErrorLogOption) error {
	errorLog := &models.ErrorLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(errorLog)
	}

	return a.db.Create(errorLog).Error
}

// ErrorLogOption customizes an error log row.
type ErrorLogOption func(*models.ErrorLog)

// WithPlatform sets the platform the error belongs to.
func WithPlatform(platform string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.Platform = platform
	}
}

// WithJob sets the related bulk job.
func WithJob(jobID string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.JobID = jobID
	}
}

// WithRetryable marks whether the recorded failure was transient.
func WithRetryable(retryable bool) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.Retryable = retryable
	}
}

// WithContext attaches arbitrary context as JSON.
func WithContext(context map[string]interface{}) ErrorLogOption {
	return func(e *models.ErrorLog) {
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

// UpdateSystemStats upserts today's statistics row from an orchestrator
// snapshot.
func (a *ArchiveService) UpdateSystemStats(stats orchestrator.Stats) error {
	today := time.Now().Truncate(24 * time.Hour)

	var row models.SystemStats
	result := a.db.Where("date = ?", today).First(&row)

	if result.Error == gorm.ErrRecordNotFound {
		row = models.SystemStats{
			Date:                 today,
			TotalJobs:            stats.TotalJobs,
			ActiveJobs:           stats.ActiveJobs,
			CompletedJobs:        stats.JobsByStatus[orchestrator.JobStatusCompleted],
			FailedJobs:           stats.JobsByStatus[orchestrator.JobStatusFailed],
			PartialJobs:          stats.JobsByStatus[orchestrator.JobStatusPartial],
			CancelledJobs:        stats.JobsByStatus[orchestrator.JobStatusCancelled],
			QueueDepth:           stats.QueueDepth,
			SuccessRate:          stats.SuccessRate,
			AvgCompletionMinutes: stats.AvgCompletionMinutes,
		}
		return a.db.Create(&row).Error
	}

	return a.db.Model(&row).Updates(map[string]interface{}{
		"total_jobs":             stats.TotalJobs,
		"active_jobs":            stats.ActiveJobs,
		"completed_jobs":         stats.JobsByStatus[orchestrator.JobStatusCompleted],
		"failed_jobs":            stats.JobsByStatus[orchestrator.JobStatusFailed],
		"partial_jobs":           stats.JobsByStatus[orchestrator.JobStatusPartial],
		"cancelled_jobs":         stats.JobsByStatus[orchestrator.JobStatusCancelled],
		"queue_depth":            stats.QueueDepth,
		"success_rate":           stats.SuccessRate,
		"avg_completion_minutes": stats.AvgCompletionMinutes,
	}).Error
}
