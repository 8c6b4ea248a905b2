// Package workflow orchestrates the 10 ordered phases of the Knowledge
// Extraction Workflow (spec.md §4.8) against the external
// capability.WorkflowRuntime (internal/workflow/temporalrt is the Temporal
// adapter). Each phase is a retriable activity with a content-addressed
// idempotency key and periodic checkpointing.
package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// PhaseName enumerates the 10 ordered phases of §4.8.
type PhaseName string

const (
	PhaseIngestSource       PhaseName = "ingest_source"
	PhaseExtractScreens     PhaseName = "extract_screens"
	PhaseExtractTasks       PhaseName = "extract_tasks"
	PhaseExtractActions     PhaseName = "extract_actions"
	PhaseExtractTransitions PhaseName = "extract_transitions"
	PhaseExtractBusiness    PhaseName = "extract_business_entities"
	PhaseLink               PhaseName = "post_extraction_linking"
	PhaseBuildGraphIndex    PhaseName = "build_graph_index"
	PhaseValidate           PhaseName = "validate"
	PhaseVerify             PhaseName = "verify"
)

// OrderedPhases is the fixed phase execution order of §4.8.
var OrderedPhases = []PhaseName{
	PhaseIngestSource,
	PhaseExtractScreens,
	PhaseExtractTasks,
	PhaseExtractActions,
	PhaseExtractTransitions,
	PhaseExtractBusiness,
	PhaseLink,
	PhaseBuildGraphIndex,
	PhaseValidate,
	PhaseVerify,
}

// CheckpointInterval is the §4.8 checkpoint cadence ("every 100 items
// processed").
const CheckpointInterval = 100

// ExecutionLogRetentionDays is the 30-day execution log retention of §4.8.
const ExecutionLogRetentionDays = 30

// IdempotencyKey computes SHA256(workflow_id || activity_name ||
// content_hash), the per-activity idempotency key required by §4.8.
func IdempotencyKey(workflowID string, activity PhaseName, contentHash string) string {
	sum := sha256.Sum256([]byte(workflowID + string(activity) + contentHash))
	return hex.EncodeToString(sum[:])
}

// CheckpointStore is the narrow slice of internal/knowledge/store's
// persistence the Orchestrator needs for §4.8 checkpointing and resume.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, workflowID, activityName string, itemsProcessed int, lastItemID string) error
	LoadCheckpoint(ctx context.Context, workflowID, activityName string) (itemsProcessed int, lastItemID string, ok bool, err error)
}

// ItemCheckpointer tracks progress within one phase's item loop and flushes
// a checkpoint every CheckpointInterval items, skipping items already
// processed on resume (§4.8: "On resume, skip already-processed items").
type ItemCheckpointer struct {
	store        CheckpointStore
	workflowID   string
	activityName string
	processed    int
	resumeFrom   string
	resuming     bool
}

// NewItemCheckpointer loads any prior checkpoint for (workflowID,
// activityName) and returns a checkpointer primed to resume from it.
func NewItemCheckpointer(ctx context.Context, store CheckpointStore, workflowID string, activity PhaseName) (*ItemCheckpointer, error) {
	items, lastID, ok, err := store.LoadCheckpoint(ctx, workflowID, string(activity))
	if err != nil {
		return nil, fmt.Errorf("load checkpoint for %s/%s: %w", workflowID, activity, err)
	}
	return &ItemCheckpointer{
		store: store, workflowID: workflowID, activityName: string(activity),
		processed: items, resumeFrom: lastID, resuming: ok,
	}, nil
}

// ShouldSkip reports whether itemID was already processed in a prior run
// and should be skipped (§4.8 resume semantics). Once the resume cursor is
// passed, every subsequent item is new.
func (c *ItemCheckpointer) ShouldSkip(itemID string) bool {
	if !c.resuming {
		return false
	}
	if itemID == c.resumeFrom {
		c.resuming = false
	}
	return c.resuming
}

// Advance records one processed item and flushes a checkpoint every
// CheckpointInterval items.
func (c *ItemCheckpointer) Advance(ctx context.Context, itemID string) error {
	c.processed++
	if c.processed%CheckpointInterval != 0 {
		return nil
	}
	return c.store.SaveCheckpoint(ctx, c.workflowID, c.activityName, c.processed, itemID)
}

// Flush force-writes the current progress, used at phase completion so a
// partial final batch (not a multiple of CheckpointInterval) is still
// durable.
func (c *ItemCheckpointer) Flush(ctx context.Context, lastItemID string) error {
	return c.store.SaveCheckpoint(ctx, c.workflowID, c.activityName, c.processed, lastItemID)
}
