package temporalrt

import (
	"context"
	"testing"
	"time"

	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

// probeWorkflow exercises Runtime.ExecuteActivity and Runtime.Heartbeat
// through a real Temporal workflow.Context, supplied by the SDK's test
// environment rather than a live server.
func probeWorkflow(ctx workflow.Context) (string, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ActivityTimeoutS * time.Second,
	})
	rt := &Runtime{}
	var out string
	if err := rt.ExecuteActivity(ctx, "echoActivity", "hello", &out); err != nil {
		return "", err
	}
	return out, nil
}

func echoActivity(_ context.Context, in string) (string, error) {
	return in, nil
}

func TestRuntime_ExecuteActivity_WithinWorkflowContext(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivity(echoActivity)

	env.ExecuteWorkflow(probeWorkflow)

	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var result string
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatalf("GetWorkflowResult: %v", err)
	}
	if result != "hello" {
		t.Fatalf("got %q, want %q", result, "hello")
	}
}

func TestRuntime_ExecuteActivity_RejectsNonWorkflowContext(t *testing.T) {
	rt := &Runtime{}
	var out string
	err := rt.ExecuteActivity(context.Background(), "echoActivity", "hello", &out)
	if err == nil {
		t.Fatal("expected an error when ctx does not carry a workflow.Context")
	}
}
