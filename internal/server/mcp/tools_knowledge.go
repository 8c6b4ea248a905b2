package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
	"github.com/10xr-agents/browse-automation-service/internal/mcp"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
	"github.com/10xr-agents/browse-automation-service/internal/workflow"
)

type sourceArg struct {
	Type string `json:"type"`
	Ref  string `json:"ref"`
}

type startExplorationArgs struct {
	KnowledgeID string      `json:"knowledge_id"`
	Sources     []sourceArg `json:"sources"`
	Verify      bool        `json:"verify"`
}

type jobIDArgs struct {
	JobID string `json:"job_id"`
}

func registerKnowledgeTools(r *registry, deps Deps, log *slog.Logger) {
	jobs := newJobTracker()

	r.register(toolDef{
		Name:        "start_knowledge_exploration",
		Description: "Begin the knowledge extraction workflow over one or more sources (documentation, website, video). An existing knowledge_id triggers replace-by-id resync.",
		InputSchema: objectSchema(map[string]any{
			"knowledge_id": stringProp("knowledge graph id; a fresh id is generated if omitted"),
			"sources": map[string]any{
				"type": "array",
				"items": objectSchema(map[string]any{
					"type": stringProp("documentation | website | video"),
					"ref":  stringProp("file path, URL, or media reference"),
				}, "type", "ref"),
			},
			"verify": map[string]any{"type": "boolean", "description": "run the feature-flagged browser verification phase"},
		}, "sources"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a startExplorationArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			if len(a.Sources) == 0 {
				return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "at least one source is required", "add a sources entry")
			}
			knowledgeID := a.KnowledgeID
			if knowledgeID == "" {
				knowledgeID = wire.NewID()
			}
			jobID := wire.NewID()

			sources := make([]ingest.Source, 0, len(a.Sources))
			for _, s := range a.Sources {
				sources = append(sources, ingest.Source{KnowledgeID: knowledgeID, Type: s.Type, Ref: s.Ref})
			}

			runCtx, cancel := context.WithCancel(context.Background())
			job := &explorationJob{JobID: jobID, KnowledgeID: knowledgeID, Status: jobRunning, Phase: string(workflow.PhaseIngestSource), cancel: cancel}
			jobs.put(job)

			go func() {
				idx, err := deps.Orchestrator.Run(runCtx, workflow.RunOptions{
					WorkflowID:  jobID,
					KnowledgeID: knowledgeID,
					Sources:     sources,
					Ingesters:   deps.Ingesters,
					Verify:      a.Verify,
				})
				if err != nil && runCtx.Err() != nil {
					return // cancelled, setDone already short-circuits on jobCancelled
				}
				job.setDone(idx, err)
			}()

			return mcp.JSONResponse("exploration started", map[string]any{"job_id": jobID, "knowledge_id": knowledgeID})
		},
	})

	r.register(toolDef{
		Name:        "get_exploration_status",
		Description: "Return status, phase, and error (if any) for a running or finished exploration job.",
		InputSchema: objectSchema(map[string]any{"job_id": stringProp("job id returned by start_knowledge_exploration")}, "job_id"),
		fn:          jobStatusTool(jobs),
	})

	r.register(toolDef{
		Name:        "pause_exploration",
		Description: "Pause a running exploration job. Not currently supported by the underlying workflow runtime; returns an explicit not-retryable error.",
		InputSchema: objectSchema(map[string]any{"job_id": stringProp("job id")}, "job_id"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			return mcp.StructuredErrorResponse(mcp.ErrUnknownMode, "pause is not supported: the workflow runtime has no mid-phase suspend point", "let the job run to completion or cancel it")
		},
	})
	r.register(toolDef{
		Name:        "resume_exploration",
		Description: "Resume a paused exploration job. Not currently supported by the underlying workflow runtime; returns an explicit not-retryable error.",
		InputSchema: objectSchema(map[string]any{"job_id": stringProp("job id")}, "job_id"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			return mcp.StructuredErrorResponse(mcp.ErrUnknownMode, "resume is not supported: exploration jobs cannot be paused", "start a new exploration or rely on checkpoint-resume after a crash")
		},
	})
	r.register(toolDef{
		Name:        "cancel_exploration",
		Description: "Cancel a running exploration job. Already-persisted entities from completed phases are not rolled back.",
		InputSchema: objectSchema(map[string]any{"job_id": stringProp("job id")}, "job_id"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a jobIDArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			job, ok := jobs.get(a.JobID)
			if !ok {
				return mcp.StructuredErrorResponse(mcp.ErrNoData, "unknown job_id", "call start_knowledge_exploration first")
			}
			job.mu.Lock()
			job.Status = jobCancelled
			cancel := job.cancel
			job.mu.Unlock()
			if cancel != nil {
				cancel()
			}
			return mcp.JSONResponse("exploration cancelled", map[string]any{"job_id": a.JobID})
		},
	})

	r.register(toolDef{
		Name:        "get_knowledge_results",
		Description: "Return entity counts for a knowledge_id across every collection (screens, tasks, actions, transitions, ...).",
		InputSchema: objectSchema(map[string]any{"knowledge_id": stringProp("knowledge graph id")}, "knowledge_id"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a struct {
				KnowledgeID string `json:"knowledge_id"`
			}
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			counts := map[string]int{}
			for _, collection := range store.AllEntityCollections {
				docs, err := deps.Docs.ListByKnowledgeID(ctx, collection, a.KnowledgeID)
				if err != nil {
					return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry; this is a store-level failure")
				}
				counts[collection] = len(docs)
			}
			return mcp.JSONResponse("", map[string]any{"knowledge_id": a.KnowledgeID, "counts": counts})
		},
	})

	r.register(toolDef{
		Name:        "query_knowledge",
		Description: "Query the knowledge graph: query_type one of page, search, links, sitemap_semantic, sitemap_functional.",
		InputSchema: objectSchema(map[string]any{
			"knowledge_id": stringProp("knowledge graph id"),
			"query_type":   stringProp("page | search | links | sitemap_semantic | sitemap_functional"),
			"screen_id":    stringProp("screen id, for page/links queries"),
			"q":            stringProp("search text, for search queries"),
		}, "knowledge_id", "query_type"),
		fn: queryKnowledgeTool(deps),
	})
}

func jobStatusTool(jobs *jobTracker) toolFunc {
	return func(ctx context.Context, raw json.RawMessage) json.RawMessage {
		var a jobIDArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
		}
		job, ok := jobs.get(a.JobID)
		if !ok {
			return mcp.StructuredErrorResponse(mcp.ErrNoData, "unknown job_id", "call start_knowledge_exploration first")
		}
		return mcp.JSONResponse("", job.snapshot())
	}
}

type queryArgs struct {
	KnowledgeID string `json:"knowledge_id"`
	QueryType   string `json:"query_type"`
	ScreenID    string `json:"screen_id"`
	Q           string `json:"q"`
}

func queryKnowledgeTool(deps Deps) toolFunc {
	return func(ctx context.Context, raw json.RawMessage) json.RawMessage {
		var a queryArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
		}
		if a.KnowledgeID == "" || a.QueryType == "" {
			return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "knowledge_id and query_type are required", "add the missing field")
		}

		switch a.QueryType {
		case "page":
			return queryPage(ctx, deps, a)
		case "search":
			return querySearch(ctx, deps, a)
		case "links":
			return queryLinks(ctx, deps, a)
		case "sitemap_semantic":
			return querySitemapSemantic(ctx, deps, a)
		case "sitemap_functional":
			return querySitemapFunctional(ctx, deps, a)
		default:
			return mcp.StructuredErrorResponse(mcp.ErrUnknownMode, "unknown query_type: "+a.QueryType, "use page, search, links, sitemap_semantic, or sitemap_functional")
		}
	}
}

func loadScreens(ctx context.Context, deps Deps, knowledgeID string) ([]model.Screen, error) {
	raw, err := deps.Docs.ListByKnowledgeID(ctx, store.CollectionScreens, knowledgeID)
	if err != nil {
		return nil, err
	}
	screens := make([]model.Screen, 0, len(raw))
	for _, r := range raw {
		var s model.Screen
		if json.Unmarshal(r, &s) == nil {
			screens = append(screens, s)
		}
	}
	return screens, nil
}

func queryPage(ctx context.Context, deps Deps, a queryArgs) json.RawMessage {
	if a.ScreenID == "" {
		return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "screen_id is required for page queries", "add screen_id")
	}
	doc, ok, err := deps.Docs.Get(ctx, store.CollectionScreens, a.ScreenID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	if !ok {
		return mcp.StructuredErrorResponse(mcp.ErrNoData, "no screen with that id", "check get_knowledge_results for valid ids")
	}
	var screen model.Screen
	_ = json.Unmarshal(doc, &screen)
	return mcp.JSONResponse("", screen)
}

func querySearch(ctx context.Context, deps Deps, a queryArgs) json.RawMessage {
	screens, err := loadScreens(ctx, deps, a.KnowledgeID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	q := strings.ToLower(a.Q)
	var matches []model.Screen
	for _, s := range screens {
		if strings.Contains(strings.ToLower(s.Name), q) {
			matches = append(matches, s)
			continue
		}
		for _, p := range s.URLPatterns {
			if strings.Contains(strings.ToLower(p), q) {
				matches = append(matches, s)
				break
			}
		}
	}
	return mcp.JSONResponse(fmt.Sprintf("%d match(es)", len(matches)), matches)
}

func queryLinks(ctx context.Context, deps Deps, a queryArgs) json.RawMessage {
	if a.ScreenID == "" {
		return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "screen_id is required for links queries", "add screen_id")
	}
	idx, err := graph.Build(ctx, deps.Docs, a.KnowledgeID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	return mcp.JSONResponse("", idx.Neighbors(a.ScreenID))
}

func querySitemapSemantic(ctx context.Context, deps Deps, a queryArgs) json.RawMessage {
	raw, err := deps.Docs.ListByKnowledgeID(ctx, store.CollectionBusinessFunctions, a.KnowledgeID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	functions := make([]model.BusinessFunction, 0, len(raw))
	for _, r := range raw {
		var f model.BusinessFunction
		if json.Unmarshal(r, &f) == nil {
			functions = append(functions, f)
		}
	}
	return mcp.JSONResponse("semantic sitemap grouped by business function", functions)
}

func querySitemapFunctional(ctx context.Context, deps Deps, a queryArgs) json.RawMessage {
	idx, err := graph.Build(ctx, deps.Docs, a.KnowledgeID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	functions, flows, workflows, err := loadBusinessEntities(ctx, deps, a.KnowledgeID)
	if err != nil {
		return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "retry")
	}
	return mcp.JSONResponse("functional sitemap grouped by screen group", graph.BusinessFeatures(idx.Groups, functions, flows, workflows))
}

func loadBusinessEntities(ctx context.Context, deps Deps, knowledgeID string) ([]model.BusinessFunction, []model.UserFlow, []model.Workflow, error) {
	rawFuncs, err := deps.Docs.ListByKnowledgeID(ctx, store.CollectionBusinessFunctions, knowledgeID)
	if err != nil {
		return nil, nil, nil, err
	}
	rawFlows, err := deps.Docs.ListByKnowledgeID(ctx, store.CollectionUserFlows, knowledgeID)
	if err != nil {
		return nil, nil, nil, err
	}
	rawWorkflows, err := deps.Docs.ListByKnowledgeID(ctx, store.CollectionWorkflows, knowledgeID)
	if err != nil {
		return nil, nil, nil, err
	}
	var functions []model.BusinessFunction
	for _, r := range rawFuncs {
		var f model.BusinessFunction
		if json.Unmarshal(r, &f) == nil {
			functions = append(functions, f)
		}
	}
	var flows []model.UserFlow
	for _, r := range rawFlows {
		var f model.UserFlow
		if json.Unmarshal(r, &f) == nil {
			flows = append(flows, f)
		}
	}
	var workflows []model.Workflow
	for _, r := range rawWorkflows {
		var w model.Workflow
		if json.Unmarshal(r, &w) == nil {
			workflows = append(workflows, w)
		}
	}
	return functions, flows, workflows, nil
}
