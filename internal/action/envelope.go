package action

import (
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// TraceContext carries distributed-tracing correlation ids alongside an
// envelope; fields are opaque pass-through (§3.1).
type TraceContext map[string]string

// Envelope is an ActionEnvelope (spec.md §3.1): created by the upstream
// agent, consumed exactly once per session.
type Envelope struct {
	CommandID      string       `json:"command_id"`
	RoomName       string       `json:"room_name"`
	SequenceNumber int64        `json:"sequence_number"`
	ActionType     Tag          `json:"action_type"`
	Params         Params       `json:"params"`
	TimeoutMs      int          `json:"timeout_ms"`
	IssuedAtMs     int64        `json:"issued_at_ms"`
	TraceContext   TraceContext `json:"trace_context,omitempty"`
}

// ObservedEffects is the Dispatcher's best-effort summary of what changed,
// carried on ActionResult (§3.1).
type ObservedEffects struct {
	Navigated        bool `json:"navigated,omitempty"`
	VisibilityChange bool `json:"visibility_change,omitempty"`
	FormFieldChange  bool `json:"form_field_change,omitempty"`
}

// Result is an ActionResult (spec.md §3.1).
type Result struct {
	Success         bool             `json:"success"`
	Error           *braerr.Error    `json:"error,omitempty"`
	DurationMs      int64            `json:"duration_ms"`
	ObservedEffects ObservedEffects  `json:"observed_effects"`
	StateDiff       *dom.StateDiff   `json:"state_diff,omitempty"`
	PreSnapshot     *dom.Snapshot    `json:"-"`
	PostSnapshot    *dom.Snapshot    `json:"-"`
}
