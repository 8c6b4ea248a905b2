package mcp

import (
	"context"
	"sync"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
)

// jobStatus mirrors the status values surfaced by get_exploration_status
// and GET /workflows/status/{job_id} (§6.1, §6.2).
type jobStatus string

const (
	jobRunning   jobStatus = "running"
	jobCompleted jobStatus = "completed"
	jobFailed    jobStatus = "failed"
	jobCancelled jobStatus = "cancelled"
)

// explorationJob tracks one in-flight or finished Knowledge Extraction
// Workflow run, keyed by job_id for the knowledge tool group.
type explorationJob struct {
	mu          sync.Mutex
	JobID       string
	KnowledgeID string
	Status      jobStatus
	Phase       string
	Err         string
	Index       *graph.Index
	cancel      context.CancelFunc
}

func (j *explorationJob) snapshot() explorationJob {
	j.mu.Lock()
	defer j.mu.Unlock()
	return explorationJob{JobID: j.JobID, KnowledgeID: j.KnowledgeID, Status: j.Status, Phase: j.Phase, Err: j.Err}
}

func (j *explorationJob) setDone(idx *graph.Index, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == jobCancelled {
		return
	}
	if err != nil {
		j.Status = jobFailed
		j.Err = err.Error()
		return
	}
	j.Status = jobCompleted
	j.Index = idx
}

// jobTracker is the in-memory registry of exploration jobs. It is process-
// local: a restart loses job status, but the underlying workflow state
// (document store, checkpoints) survives via the durable WorkflowRuntime,
// consistent with §4.8's checkpoint-resume guarantee.
type jobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*explorationJob
}

func newJobTracker() *jobTracker {
	return &jobTracker{jobs: map[string]*explorationJob{}}
}

func (t *jobTracker) put(j *explorationJob) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[j.JobID] = j
}

func (t *jobTracker) get(jobID string) (*explorationJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[jobID]
	return j, ok
}
