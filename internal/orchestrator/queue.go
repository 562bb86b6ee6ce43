package orchestrator

// priorityQueue is an ordered list of pending queue items: descending
// priority, FIFO among equal priorities. Sizes here are small (at most ten
// items per job), so a linear scan on insert is fine.
type priorityQueue struct {
	items []*queueItem
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{}
}

// insert places the item immediately before the first existing item with a
// strictly lower priority, keeping insertion order among equals.
func (q *priorityQueue) insert(item *queueItem) {
	pos := len(q.items)
	for i, existing := range q.items {
		if existing.Priority < item.Priority {
			pos = i
			break
		}
	}

	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item
}

// remove drops the item with the given ID, if present.
func (q *priorityQueue) remove(itemID string) {
	for i, item := range q.items {
		if item.ID == itemID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// removeJob drops every item belonging to the job and reports how many were
// removed.
func (q *priorityQueue) removeJob(jobID string) int {
	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.JobID == jobID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = nil
	}
	q.items = kept
	return removed
}

func (q *priorityQueue) len() int {
	return len(q.items)
}
