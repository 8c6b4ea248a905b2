// Package temporalrt adapts go.temporal.io/sdk's client into the
// capability.WorkflowRuntime contract: ExecuteActivity, Heartbeat, Signal,
// and StartWorkflow, so internal/workflow never imports the Temporal SDK
// directly.
package temporalrt

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/workflow"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
)

// HeartbeatInterval and ActivityTimeout are the §5 liveness contract
// ("heartbeat every 30s, timeout 90s").
const (
	HeartbeatInterval = 30
	ActivityTimeoutS  = 90
)

// Runtime adapts a Temporal client.Client into capability.WorkflowRuntime.
// ExecuteActivity/Heartbeat are only valid when called from inside a
// Temporal workflow or activity execution context, per the SDK's own
// context-based dispatch.
type Runtime struct {
	client   client.Client
	taskQueue string
}

var _ capability.WorkflowRuntime = (*Runtime)(nil)

// New wraps an already-constructed Temporal client.
func New(c client.Client, taskQueue string) *Runtime {
	return &Runtime{client: c, taskQueue: taskQueue}
}

// ExecuteActivity implements capability.WorkflowRuntime. ctx must carry a
// workflow.Context (wrapped via context.Context per the SDK's workflow
// package conventions) for this call to dispatch inside a running
// workflow.
func (r *Runtime) ExecuteActivity(ctx context.Context, activityName string, args any, out any) error {
	wfCtx, ok := workflowContextFrom(ctx)
	if !ok {
		return fmt.Errorf("execute activity %s: not running inside a workflow context", activityName)
	}
	future := workflow.ExecuteActivity(wfCtx, activityName, args)
	return future.Get(wfCtx, out)
}

// Heartbeat implements capability.WorkflowRuntime, reporting liveness for
// the in-flight activity (§5).
func (r *Runtime) Heartbeat(ctx context.Context, details any) error {
	activity.RecordHeartbeat(ctx, details)
	return nil
}

// Signal implements capability.WorkflowRuntime by delivering an async
// signal to a running workflow execution.
func (r *Runtime) Signal(ctx context.Context, workflowID, signalName string, payload any) error {
	if err := r.client.SignalWorkflow(ctx, workflowID, "", signalName, payload); err != nil {
		return fmt.Errorf("signal workflow %s/%s: %w", workflowID, signalName, err)
	}
	return nil
}

// StartWorkflow implements capability.WorkflowRuntime. Starting with an
// already-running workflowID is idempotent: Temporal's WorkflowIDReusePolicy
// rejects duplicate starts, which this adapter treats as a no-op success
// (§4.8 "Replace-by-id ... starting a workflow with an existing
// knowledge_id" maps onto workflowID here).
func (r *Runtime) StartWorkflow(ctx context.Context, workflowID, workflowType string, args any) error {
	opts := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                r.taskQueue,
		WorkflowIDReusePolicy:    0, // AllowDuplicate is the SDK zero value; existing runs are left alone
		WorkflowExecutionTimeout: 0,
	}
	_, err := r.client.ExecuteWorkflow(ctx, opts, workflowType, args)
	if err != nil {
		if isAlreadyStarted(err) {
			return nil
		}
		return fmt.Errorf("start workflow %s (%s): %w", workflowID, workflowType, err)
	}
	return nil
}

// workflowContextFrom recovers a workflow.Context from ctx. The SDK's
// workflow.Context embeds context.Context, so any context.Context produced
// by workflow code satisfies this assertion; a plain context.Background()
// (e.g. from a unit test) does not.
func workflowContextFrom(ctx context.Context) (workflow.Context, bool) {
	wfCtx, ok := ctx.(workflow.Context)
	return wfCtx, ok
}

func isAlreadyStarted(err error) bool {
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	return errors.As(err, &alreadyStarted)
}
