package models

import (
	"time"

	"gorm.io/gorm"
)

// PublishRecord archives one platform's outcome of a bulk publish job once
// the job reaches a terminal state.
type PublishRecord struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	JobID             string         `gorm:"not null;index;size:255" json:"job_id"`
	Platform          string         `gorm:"not null;index;size:100" json:"platform"`
	Status            string         `gorm:"size:50;not null" json:"status"`
	ContentTitle      string         `gorm:"size:500" json:"content_title"`
	ContentTags       StringArray    `gorm:"type:text[]" json:"content_tags"`
	PlatformContentID string         `gorm:"size:255" json:"platform_content_id"`
	URL               string         `gorm:"size:1000" json:"url"`
	Error             string         `gorm:"type:text" json:"error"`
	RetryCount        int            `gorm:"default:0" json:"retry_count"`
	PublishedAt       *time.Time     `json:"published_at"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Platform is a row in the platform catalogue shown on the dashboard.
type Platform struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	DisplayName string         `gorm:"not null;size:100" json:"display_name"`
	Config      string         `gorm:"type:jsonb" json:"config"`
	Enabled     bool           `gorm:"default:true" json:"enabled"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
