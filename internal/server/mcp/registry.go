package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/10xr-agents/browse-automation-service/internal/mcp"
)

// toolFunc executes one tool call and returns an already-marshaled MCP
// tool result (built with mcp.TextResponse/JSONResponse/StructuredErrorResponse).
type toolFunc func(ctx context.Context, args json.RawMessage) json.RawMessage

// toolDef is one tool's registration: its MCP listing plus the function
// that executes a call to it.
type toolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
	fn          toolFunc
}

// registry is the tool-name-keyed dispatch table, generalized from a
// five-module registry to one entry per §6.1 tool.
type registry struct {
	entries map[string]toolDef
}

func newRegistry() *registry {
	return &registry{entries: map[string]toolDef{}}
}

func (r *registry) register(def toolDef) {
	r.entries[def.Name] = def
}

func (r *registry) get(name string) (toolFunc, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.fn, true
}

// getDef returns the full registration for name, including its InputSchema,
// so the dispatch layer can flag unknown parameters before invoking fn.
func (r *registry) getDef(name string) (toolDef, bool) {
	e, ok := r.entries[name]
	return e, ok
}

func (r *registry) list() []mcp.MCPTool {
	tools := make([]mcp.MCPTool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, mcp.MCPTool{Name: e.Name, Description: e.Description, InputSchema: e.InputSchema})
	}
	return tools
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func buildRegistry(deps Deps, log *slog.Logger) *registry {
	r := newRegistry()
	registerSessionTools(r, deps, log)
	registerStateTools(r, deps)
	registerDispatchTools(r, deps)
	registerKnowledgeTools(r, deps, log)
	return r
}
