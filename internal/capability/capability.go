// Package capability declares every external collaborator this system
// depends on as an explicit interface handle, per §9's re-architecture
// guidance: "replace global mutable state / singletons with explicit
// capability handles passed into constructors". Each interface has exactly
// one production implementation per deployment environment and at least one
// fake for tests.
package capability

import (
	"context"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// BrowserDriver is the external headless-browser engine. It is the only
// thing the Action Dispatcher talks to in order to actually move the mouse,
// type text, or read the DOM.
type BrowserDriver interface {
	// Navigate drives the browser to url. newTab opens a new tab/context
	// instead of navigating the current one.
	Navigate(ctx context.Context, url string, newTab bool) error

	// Snapshot captures the current, immutable DOM state.
	Snapshot(ctx context.Context) (*dom.Snapshot, error)

	// Click/Type/etc. operate against a specific element by dense,
	// snapshot-relative index, or by raw viewport coordinates when index is
	// nil. Handlers in internal/action translate action params into these
	// calls.
	Click(ctx context.Context, index *int, x, y *float64, button string) error
	RightClick(ctx context.Context, index *int, x, y *float64) error
	DoubleClick(ctx context.Context, index *int, x, y *float64) error
	Hover(ctx context.Context, index *int, x, y *float64) error
	Type(ctx context.Context, index *int, text string, clearFirst bool) error
	TypeSlowly(ctx context.Context, index *int, text string, delayMs int) error
	Clear(ctx context.Context, index *int) error
	SelectAll(ctx context.Context, index *int) error
	Copy(ctx context.Context, index *int) error
	Paste(ctx context.Context, index *int) error
	Cut(ctx context.Context, index *int) error
	Scroll(ctx context.Context, direction string, amount int) error
	AnimateScroll(ctx context.Context, direction string, amount int, durationMs int) error
	SendKeys(ctx context.Context, index *int, keys []string) error
	Wait(ctx context.Context, seconds float64) error
	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error
	Refresh(ctx context.Context) error
	DragDrop(ctx context.Context, startIndex *int, startX, startY *float64, endIndex *int, endX, endY *float64) error
	UploadFile(ctx context.Context, index *int, filePath string) error
	SelectDropdown(ctx context.Context, index int, value, text *string, optionIndex *int) error
	FillForm(ctx context.Context, fields []dom.FormFieldValue) ([]dom.FormFieldResult, error)
	SelectMultiple(ctx context.Context, index int, values []string) error
	SubmitForm(ctx context.Context, index *int) error
	ResetForm(ctx context.Context, index *int) error
	PlayVideo(ctx context.Context, index *int) error
	PauseVideo(ctx context.Context, index *int) error
	SeekVideo(ctx context.Context, index *int, timeSeconds float64) error
	AdjustVolume(ctx context.Context, index *int, volume float64) error
	ToggleFullscreen(ctx context.Context, index *int) error
	ToggleMute(ctx context.Context, index *int) error
	TakeScreenshot(ctx context.Context) (ref string, err error)
	HighlightElement(ctx context.Context, index *int) error
	HighlightRegion(ctx context.Context, x, y, w, h float64) error
	DrawOnPage(ctx context.Context, points []dom.Point) error
	Zoom(ctx context.Context, direction string) error
	DownloadFile(ctx context.Context, url *string, index *int) (ref string, err error)
	PresentationMode(ctx context.Context, enabled bool) error
	ShowPointer(ctx context.Context, x, y float64) error
	FocusElement(ctx context.Context, index int) error

	Close(ctx context.Context) error
}

// VideoPublisher is the external WebRTC/LiveKit participant capability.
type VideoPublisher interface {
	StartTrack(ctx context.Context, roomName string, width, height, fps int) error
	StopTrack(ctx context.Context, roomName string) error
	PublishFrame(ctx context.Context, roomName string, frame []byte) error
}

// VisionLLM captions frames and screenshots for the knowledge extractors.
type VisionLLM interface {
	CaptionFrame(ctx context.Context, imageRef string, prompt string) (string, error)
}

// TextLLM performs structured-output extraction and free-text synthesis for
// the Knowledge Extraction Workflow.
type TextLLM interface {
	// Complete returns raw text completion for prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON asks the model to return JSON conforming to schema (a
	// JSON-Schema-shaped map) and unmarshals it into out.
	CompleteJSON(ctx context.Context, prompt string, schema map[string]any, out any) error
}

// Transcriber turns recorded video/audio into text for the video ingester.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaRef string) (transcript string, err error)
}

// WorkflowRuntime is the external durable workflow engine: workflows,
// activities, retries, heartbeats, signals. internal/workflow/temporalrt is
// the Temporal-backed implementation; tests use an in-process fake.
type WorkflowRuntime interface {
	// ExecuteActivity runs a named activity with args, blocking until it
	// completes or the context is cancelled, and decodes the result into
	// out. The runtime handles retries transparently to the caller.
	ExecuteActivity(ctx context.Context, activityName string, args any, out any) error

	// Heartbeat reports liveness for the in-flight activity; the runtime
	// fails the activity if heartbeats stop for more than its configured
	// timeout (§5: heartbeat every 30s, timeout 90s).
	Heartbeat(ctx context.Context, details any) error

	// Signal delivers an asynchronous signal (e.g. pause/resume/cancel) to
	// a running workflow by id.
	Signal(ctx context.Context, workflowID, signalName string, payload any) error

	// StartWorkflow starts (or, if already running with the same
	// idempotency key, no-ops and returns the existing) workflow execution.
	StartWorkflow(ctx context.Context, workflowID, workflowType string, args any) error
}

// StreamBus is the log-structured message stream: command/state append-only
// logs with consumer-group semantics (§3.2, §6.3).
type StreamBus interface {
	// Append writes payload to the stream keyed by streamKey and returns the
	// assigned message id.
	Append(ctx context.Context, streamKey string, payload []byte) (messageID string, err error)

	// ReadGroup blocks (up to the given timeout) for the next unclaimed
	// message for consumerGroup on streamKey.
	ReadGroup(ctx context.Context, streamKey, consumerGroup, consumerName string, timeout time.Duration) (messageID string, payload []byte, ok bool, err error)

	// Ack acknowledges a message as fully processed, removing it from the
	// consumer group's pending entries list.
	Ack(ctx context.Context, streamKey, consumerGroup, messageID string) error

	// Trim enforces the stream's max-length cap and idle-TTL.
	Trim(ctx context.Context, streamKey string, maxLen int, idleTTL time.Duration) error
}

// DocStore is the document store persistence for knowledge-tier entities
// (§4.10). Collections are identified by name; callers pass already-encoded
// JSON documents and decode results themselves, mirroring the schema-less
// upsert-on-conflict model of §3.3/§3.4.
type DocStore interface {
	Upsert(ctx context.Context, collection, id string, doc []byte) error
	Get(ctx context.Context, collection, id string) ([]byte, bool, error)
	ListByKnowledgeID(ctx context.Context, collection, knowledgeID string) ([][]byte, error)
	DeleteByKnowledgeID(ctx context.Context, collection, knowledgeID string) (deleted int, err error)
}

// PubSub is the agent-facing event fan-out capability (§6.4).
type PubSub interface {
	Publish(ctx context.Context, channel string, event any) error
}
