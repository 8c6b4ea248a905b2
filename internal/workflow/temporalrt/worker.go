package temporalrt

import (
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// WorkerConfig names the Temporal connection and task queue used by both
// the workflow starter and the worker process (SPEC_FULL.md §2 ambient
// config: "Temporal host:port and task queue").
type WorkerConfig struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// Dial connects a Temporal client for the given config.
func Dial(cfg WorkerConfig) (client.Client, error) {
	return client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
	})
}

// NewWorker constructs a worker.Worker bound to cfg.TaskQueue. Callers
// register the knowledge-extraction workflow function and its activities
// on the returned worker before calling Run.
func NewWorker(c client.Client, cfg WorkerConfig) worker.Worker {
	return worker.New(c, cfg.TaskQueue, worker.Options{})
}
