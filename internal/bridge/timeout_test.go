// timeout_test.go — Tests for ToolCallTimeout and ExtractToolAction.
package bridge

import (
	"encoding/json"
	"testing"
	"time"
)

func TestToolCallTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		params   string
		expected time.Duration
	}{
		{"ping gets fast timeout", "ping", `{}`, FastTimeout},
		{"resources/read gets fast timeout", "resources/read", `{}`, FastTimeout},
		{"tools/list gets fast timeout", "tools/list", `{}`, FastTimeout},
		{"start_browser_session gets fast timeout", "tools/call", `{"name":"start_browser_session","arguments":{"room_name":"r1"}}`, FastTimeout},
		{"get_browser_context gets fast timeout", "tools/call", `{"name":"get_browser_context","arguments":{}}`, FastTimeout},
		{"execute_action gets slow timeout", "tools/call", `{"name":"execute_action","arguments":{"tag":"click","index":3}}`, SlowTimeout},
		{"start_knowledge_exploration gets slow timeout", "tools/call", `{"name":"start_knowledge_exploration","arguments":{"source":"https://example.com"}}`, SlowTimeout},
		{"query_knowledge gets slow timeout", "tools/call", `{"name":"query_knowledge","arguments":{"query":"how do I log in"}}`, SlowTimeout},
		{"get_exploration_status gets blocking poll", "tools/call", `{"name":"get_exploration_status","arguments":{"job_id":"job_123"}}`, BlockingPoll},
		{"malformed params gets fast timeout", "tools/call", `{bad json}`, FastTimeout},
		{"unknown tool gets fast timeout", "tools/call", `{"name":"unknown_tool","arguments":{}}`, FastTimeout},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ToolCallTimeout(tc.method, json.RawMessage(tc.params))
			if got != tc.expected {
				t.Errorf("ToolCallTimeout(%s, %s) = %v, want %v", tc.method, tc.params, got, tc.expected)
			}
		})
	}
}

func TestExtractToolAction(t *testing.T) {
	t.Parallel()

	t.Run("non-tools/call returns empty", func(t *testing.T) {
		name, action := ExtractToolAction("ping", json.RawMessage(`{}`))
		if name != "" || action != "" {
			t.Errorf("expected empty, got name=%q action=%q", name, action)
		}
	})

	t.Run("tools/call with action", func(t *testing.T) {
		name, action := ExtractToolAction("tools/call", json.RawMessage(`{"name":"execute_action","arguments":{"action":"click"}}`))
		if name != "execute_action" || action != "click" {
			t.Errorf("expected execute_action/click, got name=%q action=%q", name, action)
		}
	})

	t.Run("tools/call without action", func(t *testing.T) {
		name, action := ExtractToolAction("tools/call", json.RawMessage(`{"name":"get_browser_context","arguments":{}}`))
		if name != "get_browser_context" || action != "" {
			t.Errorf("expected get_browser_context/empty, got name=%q action=%q", name, action)
		}
	})

	t.Run("malformed params", func(t *testing.T) {
		name, action := ExtractToolAction("tools/call", json.RawMessage(`{bad`))
		if name != "" || action != "" {
			t.Errorf("expected empty for malformed, got name=%q action=%q", name, action)
		}
	})
}
