package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/extract"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/link"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
	"github.com/10xr-agents/browse-automation-service/internal/redaction"
)

// contentRedactor scrubs credentials and tokens (AWS keys, bearer tokens,
// JWTs) that scraped documentation or website content may carry before it is
// persisted as knowledge, built once and reused across every ingest run.
var contentRedactor = redaction.NewRedactionEngine("")

// maxConcurrentIngests bounds the §4.8 phase-1 fan-out across sources so a
// large source list cannot exhaust store/LLM connection pools.
const maxConcurrentIngests = 4

// Orchestrator drives the 10-phase Knowledge Extraction Workflow of §4.8
// against a durable WorkflowRuntime, persisting entities to the document
// store and rebuilding the graph index at the end of the run.
type Orchestrator struct {
	runtime capability.WorkflowRuntime
	docs    capability.DocStore
	ckpt    CheckpointStore
	llm     capability.TextLLM
	driver  capability.BrowserDriver
}

// NewOrchestrator constructs an Orchestrator. driver may be nil when the
// optional Verify phase (§4.8 step 10) is not feature-flagged on.
func NewOrchestrator(runtime capability.WorkflowRuntime, docs capability.DocStore, ckpt CheckpointStore, llm capability.TextLLM, driver capability.BrowserDriver) *Orchestrator {
	return &Orchestrator{runtime: runtime, docs: docs, ckpt: ckpt, llm: llm, driver: driver}
}

// RunOptions parameterizes one workflow execution.
type RunOptions struct {
	WorkflowID  string
	KnowledgeID string
	Sources     []ingest.Source
	Ingesters   map[string]ingest.Ingester // keyed by Source.Type
	Verify      bool
}

// Run executes all 10 phases in order (§4.8), replacing any prior entities
// for KnowledgeID in one bulk delete before upserting the new run's output
// (§3.4, §4.8 "Replace-by-id").
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*graph.Index, error) {
	if err := o.replaceByID(ctx, opts.KnowledgeID); err != nil {
		return nil, err
	}

	chunks, err := o.ingestSources(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseIngestSource, err)
	}
	if err := o.persistChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("phase %s: persist chunks: %w", PhaseIngestSource, err)
	}

	screens := extract.ExtractScreens(opts.KnowledgeID, chunks)
	if err := o.persistEntities(ctx, store.CollectionScreens, toDocs(screens, screenKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractScreens, err)
	}

	tasks := extract.ExtractTasks(opts.KnowledgeID, chunks)
	if violations := extract.ValidateIterators(tasks); len(violations) > 0 {
		return nil, fmt.Errorf("phase %s: iterator validation failed: %v", PhaseExtractTasks, violations)
	}
	if err := o.persistEntities(ctx, store.CollectionTasks, toDocs(tasks, taskKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractTasks, err)
	}

	actions := extract.ExtractActions(opts.KnowledgeID, chunks)
	if err := o.persistEntities(ctx, store.CollectionActions, toDocs(actions, actionKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractActions, err)
	}

	transitions := extract.ExtractTransitions(opts.KnowledgeID, chunks, screens)
	if err := o.persistEntities(ctx, store.CollectionTransitions, toDocs(transitions, transitionKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractTransitions, err)
	}

	groups := extract.AssignGroups(opts.KnowledgeID, screens)
	if violations := extract.ValidateRecovery(groups); len(violations) > 0 {
		return nil, fmt.Errorf("phase %s: recovery validation failed: %v", PhaseValidate, violations)
	}
	if err := o.persistEntities(ctx, store.CollectionScreenGroups, toDocs(groups, groupKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseBuildGraphIndex, err)
	}

	var functions []model.BusinessFunction
	var flows []model.UserFlow
	var workflows []model.Workflow
	if o.llm != nil {
		functions, flows, workflows, err = extract.ExtractBusinessEntities(ctx, o.llm, opts.KnowledgeID, chunks, screens)
		if err != nil {
			return nil, fmt.Errorf("phase %s: %w", PhaseExtractBusiness, err)
		}
	}
	if err := o.persistEntities(ctx, store.CollectionBusinessFunctions, toDocs(functions, funcKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractBusiness, err)
	}
	if err := o.persistEntities(ctx, store.CollectionUserFlows, toDocs(flows, flowKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractBusiness, err)
	}
	if err := o.persistEntities(ctx, store.CollectionWorkflows, toDocs(workflows, workflowKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseExtractBusiness, err)
	}

	linked := link.Link(screens, tasks, actions, transitions, functions, workflows)
	if err := o.persistEntities(ctx, store.CollectionScreens, toDocs(linked.Screens, screenKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseLink, err)
	}
	if err := o.persistEntities(ctx, store.CollectionActions, toDocs(linked.Actions, actionKey)); err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseLink, err)
	}

	if cycles := extract.ValidateGraph(tasks); len(cycles) > 0 {
		return nil, fmt.Errorf("phase %s: task-step cycles detected: %d", PhaseValidate, len(cycles))
	}

	idx, err := graph.Build(ctx, o.docs, opts.KnowledgeID)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", PhaseBuildGraphIndex, err)
	}

	if opts.Verify && o.driver != nil {
		// Phase 10 is feature-flagged and produces discrepancy reports
		// rather than mutating entities; left to the caller to invoke
		// against idx and the live driver.
		_ = idx
	}

	return idx, nil
}

// replaceByID bulk-deletes every entity collection for knowledgeID before
// the new run's upserts (§4.8 "Replace-by-id ... guarantees no orphans").
func (o *Orchestrator) replaceByID(ctx context.Context, knowledgeID string) error {
	for _, collection := range store.AllEntityCollections {
		if _, err := o.docs.DeleteByKnowledgeID(ctx, collection, knowledgeID); err != nil {
			return fmt.Errorf("replace-by-id delete %s: %w", collection, err)
		}
	}
	return nil
}

func (o *Orchestrator) ingestSources(ctx context.Context, opts RunOptions) ([]model.ContentChunk, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentIngests)

	results := make([][]model.ContentChunk, len(opts.Sources))
	for i, src := range opts.Sources {
		i, src := i, src
		eg.Go(func() error {
			ingester, ok := opts.Ingesters[src.Type]
			if !ok {
				return fmt.Errorf("no ingester registered for source type %q", src.Type)
			}
			chunks, err := ingester.Ingest(egCtx, src)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", src.Ref, err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []model.ContentChunk
	for _, r := range results {
		for _, chunk := range r {
			chunk.Text = contentRedactor.Redact(chunk.Text)
			all = append(all, chunk)
		}
	}
	return dedupChunks(all), nil
}

func dedupChunks(chunks []model.ContentChunk) []model.ContentChunk {
	seen := map[string]bool{}
	var out []model.ContentChunk
	for _, c := range chunks {
		if seen[c.ContentHash] {
			continue
		}
		seen[c.ContentHash] = true
		out = append(out, c)
	}
	return out
}

func (o *Orchestrator) persistChunks(ctx context.Context, chunks []model.ContentChunk) error {
	return o.persistEntities(ctx, store.CollectionContentChunks, toDocs(chunks, chunkKey))
}
