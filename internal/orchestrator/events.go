package orchestrator

import (
	"time"

	"go.uber.org/zap"

	"github.com/rankforge/rankforge/internal/publisher"
)

// EventType identifies a lifecycle notification.
type EventType string

const (
	EventJobCreated        EventType = "job.created"
	EventJobCancelled      EventType = "job.cancelled"
	EventJobCompleted      EventType = "job.completed"
	EventJobFailed         EventType = "job.failed"
	EventJobPartial        EventType = "job.partial"
	EventPlatformStarted   EventType = "platform.started"
	EventPlatformCompleted EventType = "platform.completed"
	EventPlatformFailed    EventType = "platform.failed"
)

// Event is a fire-and-forget lifecycle notification for external observers.
// Delivery is at-most-once; a slow consumer loses events rather than
// stalling scheduling.
type Event struct {
	Type      EventType           `json:"type"`
	JobID     string              `json:"job_id"`
	Platform  string              `json:"platform,omitempty"`
	UserID    string              `json:"user_id,omitempty"`
	Request   *BulkPublishRequest `json:"request,omitempty"`
	Result    *publisher.Result   `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Events exposes the outbound notification channel.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// emit performs a non-blocking send; when the buffer is full the newest
// event is dropped.
func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
		o.logger.Warn("Event buffer full, dropping notification",
			zap.String("type", string(ev.Type)),
			zap.String("job_id", ev.JobID))
	}
}
