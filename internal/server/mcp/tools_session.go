package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/10xr-agents/browse-automation-service/internal/mcp"
	"github.com/10xr-agents/browse-automation-service/internal/session"
)

type startSessionArgs struct {
	RoomName      string `json:"room_name"`
	ParticipantID string `json:"participant_id"`
	InitialURL    string `json:"initial_url"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FPS           int    `json:"fps"`
}

type roomArgs struct {
	RoomName string `json:"room_name"`
}

func registerSessionTools(r *registry, deps Deps, log *slog.Logger) {
	r.register(toolDef{
		Name:        "start_browser_session",
		Description: "Start a new browser session bound to room_name and navigate to initial_url.",
		InputSchema: objectSchema(map[string]any{
			"room_name":      stringProp("unique session identifier"),
			"participant_id": stringProp("voice/LLM agent participant id"),
			"initial_url":    stringProp("URL to navigate to once the session starts"),
			"width":          map[string]any{"type": "number", "description": "viewport width, default 1280"},
			"height":         map[string]any{"type": "number", "description": "viewport height, default 800"},
			"fps":            map[string]any{"type": "number", "description": "video track frame rate, default 10"},
		}, "room_name"),
		fn: func(ctx context.Context, raw json.RawMessage) json.RawMessage {
			var a startSessionArgs
			if err := json.Unmarshal(raw, &a); err != nil {
				return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
			}
			if a.RoomName == "" {
				return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "room_name is required", "add room_name")
			}
			width, height, fps := a.Width, a.Height, a.FPS
			if width == 0 {
				width = 1280
			}
			if height == 0 {
				height = 800
			}
			if fps == 0 {
				fps = 10
			}
			sess, err := deps.Sessions.StartSession(ctx, session.StartConfig{
				RoomName:      a.RoomName,
				ParticipantID: a.ParticipantID,
				InitialURL:    a.InitialURL,
				Viewport:      session.Viewport{Width: width, Height: height, FPS: fps},
			})
			if err != nil {
				return braerrResponse(err)
			}
			return mcp.JSONResponse("session started", map[string]any{"room_name": a.RoomName, "phase": sess.Phase()})
		},
	})

	r.register(toolDef{
		Name:        "pause_browser_session",
		Description: "Pause an active browser session, releasing the driver while retaining DOM cache.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to pause")}, "room_name"),
		fn:          roomTool(deps, func(ctx context.Context, roomName string) error { return deps.Sessions.PauseSession(ctx, roomName) }, "session paused"),
	})

	r.register(toolDef{
		Name:        "resume_browser_session",
		Description: "Resume a paused browser session at its last known URL.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to resume")}, "room_name"),
		fn:          roomTool(deps, func(ctx context.Context, roomName string) error { return deps.Sessions.ResumeSession(ctx, roomName) }, "session resumed"),
	})

	r.register(toolDef{
		Name:        "close_browser_session",
		Description: "Close a browser session and release its driver and video track.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to close")}, "room_name"),
		fn:          roomTool(deps, func(ctx context.Context, roomName string) error { return deps.Sessions.CloseSession(ctx, roomName) }, "session closed"),
	})

	r.register(toolDef{
		Name:        "recover_browser_session",
		Description: "Recover a Failed session after a driver crash: allocate a fresh driver and restore the last known URL.",
		InputSchema: objectSchema(map[string]any{"room_name": stringProp("session to recover")}, "room_name"),
		fn:          roomTool(deps, func(ctx context.Context, roomName string) error { return deps.Sessions.RecoverSession(ctx, roomName) }, "session recovered"),
	})
}

// roomTool adapts a Manager method taking only a room_name into a toolFunc.
func roomTool(deps Deps, call func(ctx context.Context, roomName string) error, okSummary string) toolFunc {
	return func(ctx context.Context, raw json.RawMessage) json.RawMessage {
		var a roomArgs
		if err := json.Unmarshal(raw, &a); err != nil {
			return mcp.StructuredErrorResponse(mcp.ErrInvalidJSON, err.Error(), "fix the JSON body and retry")
		}
		if a.RoomName == "" {
			return mcp.StructuredErrorResponse(mcp.ErrMissingParam, "room_name is required", "add room_name")
		}
		if err := call(ctx, a.RoomName); err != nil {
			return braerrResponse(err)
		}
		return mcp.JSONResponse(okSummary, map[string]any{"room_name": a.RoomName})
	}
}
