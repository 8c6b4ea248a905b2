// Package stream wires the SQLite-backed store to the per-session consumer
// loop and the synchronous StateUpdate publisher of spec.md §4.6.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

// CommandStreamKey returns the stream key for room's command log (§3.2).
func CommandStreamKey(room string) string { return "commands:" + room }

// StateStreamKey returns the stream key for room's state-update log (§3.2).
func StateStreamKey(room string) string { return "state:" + room }

// StateUpdate is the StateUpdate envelope of §3.2.
type StateUpdate struct {
	UpdateID            string              `json:"update_id"`
	SessionID            string              `json:"session_id"`
	SequenceNumber       int64               `json:"sequence_number"`
	CommandID            string              `json:"command_id"`
	ActionResult         action.Result       `json:"action_result"`
	CurrentStateSummary  StateSummary        `json:"current_state_summary"`
	ScreenshotRef        string              `json:"screenshot_ref,omitempty"`
}

// StateSummary is the current_state_summary field of a StateUpdate.
type StateSummary struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	PostHash string `json:"post_hash"`
}

// Publisher synchronously appends StateUpdates to a session's state stream
// (§4.6 "Publisher — synchronous append").
type Publisher struct {
	bus capability.StreamBus
	pub capability.PubSub
}

// NewPublisher constructs a Publisher. pub may be nil if pub/sub fan-out is
// not wired (e.g. in unit tests exercising only the stream).
func NewPublisher(bus capability.StreamBus, pub capability.PubSub) *Publisher {
	return &Publisher{bus: bus, pub: pub}
}

// eventChannel is the agent-facing pub/sub channel name for roomName (§6.4):
// the literal "browser:events:{room_name}" contract every subscriber expects.
func eventChannel(roomName string) string { return "browser:events:" + roomName }

// Publish appends the StateUpdate for a completed dispatch to the sequenced
// state stream and fans it out to the agent-facing pub/sub channel (§4.2
// step 8). Only genuine completed-dispatch updates go through here — their
// SequenceNumber must be contiguous with the state stream's prior entries
// (§8). Error-only notifications (SequenceGap, SessionNotFound) are not
// dispatch results and must use PublishEvent instead so they never perturb
// the state stream's sequencing invariant.
func (p *Publisher) Publish(ctx context.Context, roomName string, envelope action.Envelope, result action.Result) error {
	update := p.buildUpdate(roomName, envelope, result)

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal state update: %w", err)
	}
	if _, err := p.bus.Append(ctx, StateStreamKey(roomName), payload); err != nil {
		return fmt.Errorf("append state update: %w", err)
	}
	return p.publishPubSub(ctx, roomName, update)
}

// PublishEvent fans an error-only notification (SequenceGap, SessionNotFound)
// out over the pub/sub channel without touching the sequenced state stream
// (§8): these never completed a dispatch, so they carry no valid
// SequenceNumber to append contiguously.
func (p *Publisher) PublishEvent(ctx context.Context, roomName string, envelope action.Envelope, result action.Result) error {
	return p.publishPubSub(ctx, roomName, p.buildUpdate(roomName, envelope, result))
}

func (p *Publisher) buildUpdate(roomName string, envelope action.Envelope, result action.Result) StateUpdate {
	update := StateUpdate{
		UpdateID:       wire.NewID(),
		SessionID:      roomName,
		SequenceNumber: envelope.SequenceNumber,
		CommandID:      envelope.CommandID,
		ActionResult:   result,
	}
	if result.PostSnapshot != nil {
		update.CurrentStateSummary = StateSummary{
			URL: result.PostSnapshot.URL, Title: result.PostSnapshot.Title, PostHash: result.PostSnapshot.ContentHash,
		}
	}
	return update
}

func (p *Publisher) publishPubSub(ctx context.Context, roomName string, update StateUpdate) error {
	if p.pub == nil {
		return nil
	}
	if err := p.pub.Publish(ctx, eventChannel(roomName), update); err != nil {
		return fmt.Errorf("publish pub/sub event: %w", err)
	}
	return nil
}
