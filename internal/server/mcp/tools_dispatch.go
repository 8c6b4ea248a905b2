package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/mcp"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

type executeActionArgs struct {
	RoomName   string          `json:"room_name"`
	ActionType string          `json:"action_type"`
	Params     action.Params   `json:"params"`
	CommandID  string          `json:"command_id"`
	TimeoutMs  int             `json:"timeout_ms"`
	Sequence   int64           `json:"sequence_number"`
}

func registerDispatchTools(r *registry, deps Deps) {
	r.register(toolDef{
		Name:        "execute_action",
		Description: "Dispatch one browser action (click, type, navigate, scroll, ...) against a session and return the resulting state diff.",
		InputSchema: objectSchema(map[string]any{
			"room_name":   stringProp("session to act on"),
			"action_type": stringProp("one of the canonical action tags, e.g. click, type, navigate"),
			"params":      map[string]any{"type": "object", "description": "tag-specific parameters"},
		}, "room_name", "action_type"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a executeActionArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			if a.RoomName == "" || a.ActionType == "" {
				return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "room_name and action_type are required", "add the missing field")
			}
			sess, ok := deps.Sessions.Get(a.RoomName)
			if !ok {
				return braerrResponse(braerr.New(braerr.SessionNotFound, "no session for room "+a.RoomName))
			}

			commandID := a.CommandID
			if commandID == "" {
				commandID = wire.NewID()
			}
			timeoutMs := a.TimeoutMs
			if timeoutMs == 0 {
				timeoutMs = 10_000
			}

			envelope := action.Envelope{
				CommandID:      commandID,
				RoomName:       a.RoomName,
				SequenceNumber: a.Sequence,
				ActionType:     action.Tag(a.ActionType),
				Params:         a.Params,
				TimeoutMs:      timeoutMs,
				IssuedAtMs:     time.Now().UnixMilli(),
			}
			result := sess.ExecuteAction(ctx, envelope)
			if !result.Success && result.Error != nil {
				return braerrResponse(result.Error)
			}
			return mcp.JSONResponse("", result)
		},
	})
}
