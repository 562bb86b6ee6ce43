package orchestrator

// jobRegistry is the in-memory map from job ID to aggregate progress. It is
// not safe for concurrent use on its own; the orchestrator's mutex guards
// it together with the priority queue.
type jobRegistry struct {
	jobs map[string]*BulkPublishProgress
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*BulkPublishProgress)}
}

func (r *jobRegistry) get(jobID string) (*BulkPublishProgress, bool) {
	prog, ok := r.jobs[jobID]
	return prog, ok
}

func (r *jobRegistry) put(prog *BulkPublishProgress) {
	r.jobs[prog.JobID] = prog
}

func (r *jobRegistry) all() []*BulkPublishProgress {
	out := make([]*BulkPublishProgress, 0, len(r.jobs))
	for _, prog := range r.jobs {
		out = append(out, prog)
	}
	return out
}

func (r *jobRegistry) len() int {
	return len(r.jobs)
}
