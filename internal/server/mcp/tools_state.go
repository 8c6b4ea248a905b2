package mcp

import (
	"context"
	"encoding/json"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/mcp"
)

func registerStateTools(r *registry, deps Deps) {
	r.register(toolDef{
		Name:        "get_browser_context",
		Description: "Return the current immutable DOM snapshot for a session (url, title, dense elements).",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to read")}, "room_name"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a roomArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			sess, ok := deps.Sessions.Get(a.RoomName)
			if !ok {
				return braerrResponse(braerr.New(braerr.SessionNotFound, "no session for room "+a.RoomName))
			}
			snap := sess.GetContext()
			if snap == nil {
				return mcp.StructuredErrorResponse(mcp.ErrNoData, "no snapshot captured yet", "execute an action or wait for the session to settle")
			}
			return mcp.JSONResponse("", snap)
		},
	})

	r.register(toolDef{
		Name:        "get_screen_content",
		Description: "Return the current url, title, and element count for a session.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to read")}, "room_name"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a roomArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			sess, ok := deps.Sessions.Get(a.RoomName)
			if !ok {
				return braerrResponse(braerr.New(braerr.SessionNotFound, "no session for room "+a.RoomName))
			}
			url, title, elementCount := sess.GetScreenContent()
			return mcp.JSONResponse("", map[string]any{"url": url, "title": title, "element_count": elementCount})
		},
	})

	r.register(toolDef{
		Name:        "find_form_fields",
		Description: "Auto-discover username/password/submit element indices on the current screen.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to read")}, "room_name"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a roomArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			sess, ok := deps.Sessions.Get(a.RoomName)
			if !ok {
				return braerrResponse(braerr.New(braerr.SessionNotFound, "no session for room "+a.RoomName))
			}
			return mcp.JSONResponse("", sess.FindFormFields())
		},
	})
}
