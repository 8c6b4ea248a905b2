package extract

import (
	"context"
	"fmt"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

// businessEntitySchema is the JSON-Schema-shaped structured-output contract
// for the text-LLM business extraction activities of §4.8 step 6.
var businessEntitySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"functions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"flows":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"workflows": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"functions", "flows", "workflows"},
}

type businessEntityResult struct {
	Functions []string `json:"functions"`
	Flows     []string `json:"flows"`
	Workflows []string `json:"workflows"`
}

// ExtractBusinessEntities implements §4.8 step 6: text-LLM activities with
// structured-output validation, producing BusinessFunction/UserFlow/
// Workflow entities scoped to the screens a chunk set describes.
func ExtractBusinessEntities(ctx context.Context, llm capability.TextLLM, knowledgeID string, chunks []model.ContentChunk, screens []model.Screen) ([]model.BusinessFunction, []model.UserFlow, []model.Workflow, error) {
	prompt := buildBusinessPrompt(chunks)
	var result businessEntityResult
	if err := llm.CompleteJSON(ctx, prompt, businessEntitySchema, &result); err != nil {
		return nil, nil, nil, fmt.Errorf("extract business entities: %w", err)
	}

	screenIDs := make([]string, 0, len(screens))
	for _, s := range screens {
		screenIDs = append(screenIDs, s.ScreenID)
	}

	functions := make([]model.BusinessFunction, 0, len(result.Functions))
	for _, name := range result.Functions {
		functions = append(functions, model.BusinessFunction{KnowledgeID: knowledgeID, FunctionID: wire.NewID(), Name: name, ScreenIDs: screenIDs})
	}
	flows := make([]model.UserFlow, 0, len(result.Flows))
	for _, name := range result.Flows {
		flows = append(flows, model.UserFlow{KnowledgeID: knowledgeID, FlowID: wire.NewID(), Name: name, ScreenIDs: screenIDs})
	}
	workflows := make([]model.Workflow, 0, len(result.Workflows))
	for _, name := range result.Workflows {
		workflows = append(workflows, model.Workflow{KnowledgeID: knowledgeID, WorkflowID: wire.NewID(), Name: name, ScreenIDs: screenIDs})
	}
	return functions, flows, workflows, nil
}

func buildBusinessPrompt(chunks []model.ContentChunk) string {
	prompt := "Identify the business functions, user flows, and workflows described by the following content. " +
		"Return strict JSON with keys functions, flows, workflows, each a list of short names.\n\n"
	for _, c := range chunks {
		prompt += c.Text + "\n\n"
	}
	return prompt
}
