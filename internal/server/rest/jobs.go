package rest

import (
	"context"
	"sync"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
)

// jobStatus mirrors GET /workflows/status/{job_id}'s status field (§6.2).
type jobStatus string

const (
	jobRunning   jobStatus = "running"
	jobCompleted jobStatus = "completed"
	jobFailed    jobStatus = "failed"
)

// job tracks one /ingest/start run for workflowStatus to report against.
type job struct {
	mu     sync.Mutex
	JobID  string
	Status jobStatus
	Phase  string
	Err    string
	Index  *graph.Index
	cancel context.CancelFunc
}

func (j *job) snapshot() job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return job{JobID: j.JobID, Status: j.Status, Phase: j.Phase, Err: j.Err}
}

func (j *job) setDone(idx *graph.Index, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err != nil {
		j.Status = jobFailed
		j.Err = err.Error()
		return
	}
	j.Status = jobCompleted
	j.Index = idx
}

// jobTracker is process-local; see internal/server/mcp/jobs.go for the
// identical tradeoff (job status does not survive a restart, workflow state
// does via the durable checkpoint store).
type jobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

func newJobTracker() *jobTracker {
	return &jobTracker{jobs: map[string]*job{}}
}

func (t *jobTracker) put(j *job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[j.JobID] = j
}

func (t *jobTracker) get(jobID string) (*job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[jobID]
	return j, ok
}
