package publisher

import (
	"context"
	"time"
)

// Content represents a piece of content to be published to a platform.
type Content struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Summary     string            `json:"summary"`
	Tags        []string          `json:"tags"`
	Author      string            `json:"author"`
	PublishDate *time.Time        `json:"publish_date"`
	Metadata    map[string]string `json:"metadata"`
}

// Clone returns a deep copy of the content. Per-platform customizations are
// applied to the copy so the base content stays untouched.
func (c Content) Clone() Content {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Options carries everything a publish attempt needs beyond the content
// itself: platform credentials and resolved publish settings.
type Options struct {
	Credentials map[string]string `json:"credentials"`
	Settings    map[string]string `json:"settings"`
}

// Result represents the outcome of a single publish attempt. Success=false
// with a nil error is a platform-reported failure; transport-level problems
// come back as Go errors from Publish instead.
type Result struct {
	Success           bool              `json:"success"`
	PlatformContentID string            `json:"platform_content_id,omitempty"`
	URL               string            `json:"url,omitempty"`
	Error             string            `json:"error,omitempty"`
	Details           map[string]string `json:"details,omitempty"`
	PublishedAt       time.Time         `json:"published_at"`
}

// Publisher is the unified interface every platform adapter implements.
type Publisher interface {
	Name() string

	Publish(ctx context.Context, content Content, opts Options) (*Result, error)
}
