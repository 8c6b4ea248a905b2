// timeout.go — Per-request timeout logic for MCP tool calls.
package bridge

import (
	"encoding/json"
	"time"
)

// Timeout constants for different tool categories.
const (
	FastTimeout    = 10 * time.Second
	SlowTimeout    = 35 * time.Second
	BlockingPoll   = 65 * time.Second
)

// ToolCallTimeout returns the per-request timeout based on the MCP method and tool name.
// Fast tools (session/state reads, start_browser_session) get 10s; execute_action
// and start_knowledge_exploration, which round-trip to the browser driver or an
// ingest source, get 35s. get_exploration_status polls a long-running workflow
// and gets the 65s blocking-poll budget.
//
// method is the JSON-RPC method (e.g. "tools/call", "resources/read").
// params is the raw JSON of the request params.
func ToolCallTimeout(method string, params json.RawMessage) time.Duration {
	if method == "resources/read" {
		return FastTimeout
	}
	if method != "tools/call" {
		return FastTimeout
	}

	var p struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if json.Unmarshal(params, &p) != nil {
		return FastTimeout
	}

	switch p.Name {
	case "execute_action", "start_knowledge_exploration", "query_knowledge":
		return SlowTimeout
	case "get_exploration_status":
		return BlockingPoll
	default:
		return FastTimeout
	}
}

// ExtractToolAction extracts the tool name and action parameter from a tools/call request.
// Returns empty strings for non-tools/call methods or if parsing fails.
func ExtractToolAction(method string, params json.RawMessage) (toolName, action string) {
	if method != "tools/call" {
		return "", ""
	}
	var p struct {
		Name string          `json:"name"`
		Args json.RawMessage `json:"arguments"`
	}
	if json.Unmarshal(params, &p) != nil {
		return "", ""
	}
	var a struct {
		Action string `json:"action"`
	}
	_ = json.Unmarshal(p.Args, &a)
	return p.Name, a.Action
}
