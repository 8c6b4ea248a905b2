// Package mcp is the agent-facing RPC surface of spec.md §6.1: a JSON-RPC
// 2.0 tool-call transport over HTTP POST, built on the shared internal/mcp
// protocol types (JSONRPCRequest/Response, MCPTool, StructuredError) and a
// tool-module registry pattern, generalized from a fixed five-tool set
// (observe, analyze, generate, configure, interact) to the session/state/
// dispatch/knowledge tool groups named in §6.1.
package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/audit"
	"github.com/10xr-agents/browse-automation-service/internal/bridge"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/mcp"
	"github.com/10xr-agents/browse-automation-service/internal/session"
	"github.com/10xr-agents/browse-automation-service/internal/workflow"
)

const protocolVersion = "2024-11-05"
const serverName = "browse-automation-service"

const serverInstructions = `Browse automation exposes session, state, dispatch and knowledge tools.

Workflow:
- start_browser_session opens a room; execute_action drives it one command at a time.
- get_browser_context / get_screen_content / find_form_fields read current DOM state without mutating it.
- start_knowledge_exploration ingests documentation/site/video sources into the knowledge tier; poll get_exploration_status, then query_knowledge once complete.`

// maxPostBodySize bounds a single JSON-RPC POST body.
const maxPostBodySize = 4 << 20

// Handler serves the §6.1 MCP-style tool surface.
type Handler struct {
	tools *registry
	log   *slog.Logger
	audit *audit.AuditTrail
}

// Audit returns the handler's tool-invocation audit log, for the REST
// surface's GET /audit endpoint.
func (h *Handler) Audit() *audit.AuditTrail {
	return h.audit
}

// Deps are the capabilities the tool surface dispatches into.
type Deps struct {
	Sessions     *session.Manager
	Dispatcher   *action.Dispatcher
	Docs         capability.DocStore
	Orchestrator *workflow.Orchestrator
	Ingesters    map[string]ingest.Ingester
	Log          *slog.Logger
}

// New constructs a Handler wired against deps.
func New(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{log: log, audit: audit.NewAuditTrail(audit.AuditConfig{})}
	h.tools = buildRegistry(deps, log)
	return h
}

// ServeHTTP implements the single HTTP POST tool-call transport.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPostBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, nil, -32700, "read error: "+err.Error())
		return
	}

	var req mcp.JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, nil, -32700, "parse error: "+err.Error())
		return
	}

	tool, toolAction := bridge.ExtractToolAction(req.Method, req.Params)
	if tool != "" {
		h.log.Debug("tool call", "tool", tool, "action", toolAction)
	}

	ctx, cancel := context.WithTimeout(r.Context(), bridge.ToolCallTimeout(req.Method, req.Params))
	defer cancel()

	start := time.Now()
	resp := h.handleRequest(ctx, req)
	if tool != "" {
		h.recordAudit(req, tool, resp, time.Since(start))
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// recordAudit appends one AuditEntry for a completed tools/call request.
// room_name/session_id are read best-effort from the tool's arguments since
// the JSON-RPC envelope itself carries no session identifier.
func (h *Handler) recordAudit(req mcp.JSONRPCRequest, tool string, resp *mcp.JSONRPCResponse, dur time.Duration) {
	var p struct {
		Arguments json.RawMessage `json:"arguments"`
	}
	_ = json.Unmarshal(req.Params, &p)
	var args struct {
		RoomName  string `json:"room_name"`
		SessionID string `json:"session_id"`
	}
	_ = json.Unmarshal(p.Arguments, &args)
	sessionID := args.SessionID
	if sessionID == "" {
		sessionID = args.RoomName
	}

	entry := audit.AuditEntry{
		SessionID: sessionID,
		ClientID:  req.ClientID,
		ToolName:  tool,
		Duration:  dur.Milliseconds(),
		Success:   resp == nil || resp.Error == nil,
	}
	if resp != nil && resp.Error != nil {
		entry.ErrorMessage = resp.Error.Message
	}
	h.audit.Record(entry)
}

func (h *Handler) handleRequest(ctx context.Context, req mcp.JSONRPCRequest) *mcp.JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return nil
	case "tools/list":
		return h.handleToolsList(req)
	case "tools/call":
		return h.handleToolsCall(ctx, req)
	default:
		return &mcp.JSONRPCResponse{
			JSONRPC: "2.0", ID: req.ID,
			Error: &mcp.JSONRPCError{Code: -32601, Message: "method not found: " + req.Method},
		}
	}
}

func (h *Handler) handleInitialize(req mcp.JSONRPCRequest) *mcp.JSONRPCResponse {
	result := mcp.MCPInitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      mcp.MCPServerInfo{Name: serverName, Version: "1.0.0"},
		Capabilities:    mcp.MCPCapabilities{},
		Instructions:    serverInstructions,
	}
	return &mcp.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: mcp.SafeMarshal(result, `{}`)}
}

func (h *Handler) handleToolsList(req mcp.JSONRPCRequest) *mcp.JSONRPCResponse {
	result := mcp.MCPToolsListResult{Tools: h.tools.list()}
	return &mcp.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: mcp.SafeMarshal(result, `{"tools":[]}`)}
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (h *Handler) handleToolsCall(ctx context.Context, req mcp.JSONRPCRequest) *mcp.JSONRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &mcp.JSONRPCResponse{
			JSONRPC: "2.0", ID: req.ID,
			Result: mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, "could not parse tool-call params", "resend {name, arguments}"),
		}
	}

	def, ok := h.tools.getDef(params.Name)
	if !ok {
		return &mcp.JSONRPCResponse{
			JSONRPC: "2.0", ID: req.ID,
			Result: mcp.StructuredErrorResponse(mcp.ErrUnknownMode, "unknown tool: "+params.Name, "call tools/list to see available tools"),
		}
	}

	// Flag unknown/misspelled parameters against the tool's own schema before
	// invoking it, so the LLM sees the typo instead of a silently-ignored field.
	warnings := mcp.ValidateParamsAgainstSchema(params.Arguments, def.InputSchema)

	result := def.fn(ctx, params.Arguments)
	resp := mcp.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	resp = mcp.AppendWarningsToResponse(resp, warnings)
	return &resp
}

func (h *Handler) writeError(w http.ResponseWriter, id any, code int, message string) {
	resp := mcp.JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &mcp.JSONRPCError{Code: code, Message: message}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
