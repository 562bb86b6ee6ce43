package models

import (
	"time"
)

// ErrorLog stores publish errors for the dashboard error feed.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;not null;index" json:"level"`
	Source    string    `gorm:"size:100;not null;index" json:"source"`
	Platform  string    `gorm:"size:100;index" json:"platform"`
	JobID     string    `gorm:"size:255;index" json:"job_id"`
	Title     string    `gorm:"size:500;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Context   string    `gorm:"type:jsonb" json:"context"`
	Retryable bool      `gorm:"default:false" json:"retryable"`
	Resolved  bool      `gorm:"default:false;index" json:"resolved"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SystemStats keeps one row of publish statistics per day.
type SystemStats struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Date                 time.Time `gorm:"uniqueIndex;not null" json:"date"`
	TotalJobs            int       `gorm:"default:0" json:"total_jobs"`
	ActiveJobs           int       `gorm:"default:0" json:"active_jobs"`
	CompletedJobs        int       `gorm:"default:0" json:"completed_jobs"`
	FailedJobs           int       `gorm:"default:0" json:"failed_jobs"`
	PartialJobs          int       `gorm:"default:0" json:"partial_jobs"`
	CancelledJobs        int       `gorm:"default:0" json:"cancelled_jobs"`
	QueueDepth           int       `gorm:"default:0" json:"queue_depth"`
	SuccessRate          float64   `gorm:"default:0" json:"success_rate"`
	AvgCompletionMinutes float64   `gorm:"default:0" json:"avg_completion_minutes"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
