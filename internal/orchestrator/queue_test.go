package orchestrator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id, jobID string, priority int) *queueItem {
	return &queueItem{
		ID:       id,
		JobID:    jobID,
		Platform: "wordpress",
		Priority: priority,
		Status:   itemStatusQueued,
	}
}

func queueOrder(q *priorityQueue) []string {
	ids := make([]string, 0, len(q.items))
	for _, item := range q.items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestPriorityQueueOrdersByDescendingPriority(t *testing.T) {
	q := newPriorityQueue()
	q.insert(newItem("low", "job-1", 1))
	q.insert(newItem("high", "job-1", 10))
	q.insert(newItem("mid", "job-1", 5))

	assert.Equal(t, []string{"high", "mid", "low"}, queueOrder(q))
}

func TestPriorityQueueIsStableForEqualPriorities(t *testing.T) {
	q := newPriorityQueue()
	for i := 0; i < 5; i++ {
		q.insert(newItem(fmt.Sprintf("item-%d", i), "job-1", 5))
	}
	q.insert(newItem("urgent", "job-1", 9))

	want := []string{"urgent", "item-0", "item-1", "item-2", "item-3", "item-4"}
	assert.Equal(t, want, queueOrder(q))
}

func TestPriorityQueueRemove(t *testing.T) {
	q := newPriorityQueue()
	q.insert(newItem("a", "job-1", 5))
	q.insert(newItem("b", "job-1", 5))

	q.remove("a")
	assert.Equal(t, []string{"b"}, queueOrder(q))

	// Removing an unknown ID is a no-op
	q.remove("missing")
	assert.Equal(t, 1, q.len())
}

func TestPriorityQueueRemoveJob(t *testing.T) {
	q := newPriorityQueue()
	q.insert(newItem("a1", "job-a", 5))
	q.insert(newItem("b1", "job-b", 7))
	q.insert(newItem("a2", "job-a", 3))

	removed := q.removeJob("job-a")
	require.Equal(t, 2, removed)
	assert.Equal(t, []string{"b1"}, queueOrder(q))

	assert.Equal(t, 0, q.removeJob("job-a"))
}

func TestPriorityQueueInsertAfterRetainsSchedule(t *testing.T) {
	q := newPriorityQueue()
	item := newItem("a", "job-1", 5)
	item.ScheduledAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q.insert(item)

	require.Equal(t, 1, q.len())
	assert.Equal(t, item.ScheduledAt, q.items[0].ScheduledAt)
}
