// Package braerr defines the closed error taxonomy of the session, dispatch,
// stream and workflow cores. Every error surfaced across a process boundary
// (MCP tool result, REST response, pub/sub event) is one of these codes —
// generalized from the teacher's internal/mcp StructuredError, which carried
// the same {code, message, retryable, retry_after_ms} shape for a single
// tool surface.
package braerr

import "fmt"

// Code is a machine-readable, self-describing error code.
type Code string

// Validation errors — non-retryable, surfaced immediately.
const (
	MalformedEnvelope  Code = "malformed_envelope"
	UnknownActionType  Code = "unknown_action_type"
	InvalidParams      Code = "invalid_params"
	PresignedURLExpired Code = "presigned_url_expired"
)

// Resolution errors — non-retryable at the dispatcher; caller may retry
// after refreshing screen content.
const (
	ElementNotFound    Code = "element_not_found"
	ElementIndexStale  Code = "element_index_stale"
	AmbiguousSelector  Code = "ambiguous_selector"
)

// Execution-transient errors — retryable with exponential backoff.
const (
	DriverTemporarilyUnavailable Code = "driver_temporarily_unavailable"
	NetworkFlap                  Code = "network_flap"
	StreamUnavailable            Code = "stream_unavailable"
)

// Execution-permanent errors — reported, not retried automatically.
const (
	NavigationFailed    Code = "navigation_failed"
	SubmissionRejected  Code = "submission_rejected"
	FileUploadFailed    Code = "file_upload_failed"
)

// Session errors.
const (
	SessionNotFound Code = "session_not_found"
	SessionClosed   Code = "session_closed"
	DriverCrashed   Code = "driver_crashed"
)

// Sequence errors.
const (
	SequenceGap      Code = "sequence_gap"
	DuplicateCommand Code = "duplicate_command"
)

// Workflow errors.
const (
	SchemaValidationFailed Code = "schema_validation_failed"
	IdempotencyConflict    Code = "idempotency_conflict"
	CheckpointResume       Code = "checkpoint_resume"
	FeatureDisabled        Code = "feature_disabled"
)

// ActionTimeout fires when an envelope's timeout_ms elapses before the
// handler completes (§5 Cancellation & timeouts).
const ActionTimeout Code = "action_timeout"

// Class is the error's retry/propagation classification (§4.2 Failure
// semantics, §7 Propagation policy).
type Class string

const (
	ClassTransient Class = "transient" // retry inside the handler once, short backoff
	ClassPermanent Class = "permanent" // surface immediately
	ClassFatal     Class = "fatal"     // mark session Failed; upstream retry meaningless
)

// transientCodes classifies which codes are execution-transient by default.
var transientCodes = map[Code]bool{
	DriverTemporarilyUnavailable: true,
	NetworkFlap:                  true,
	StreamUnavailable:            true,
}

var fatalCodes = map[Code]bool{
	DriverCrashed: true,
}

// Error is a tagged error carried across every process boundary in this
// system. It is never raw-thrown; handlers return it as a value.
type Error struct {
	Code         Code   `json:"code"`
	Message      string `json:"message"`
	Retryable    bool   `json:"retryable"`
	RetryAfterMs int    `json:"retry_after_ms,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a braerr.Error, filling in retry defaults from the code's
// classification unless overridden by opts.
func New(code Code, message string, opts ...func(*Error)) *Error {
	e := &Error{Code: code, Message: message}
	for _, d := range retryDefaults(code) {
		d(e)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap adapts a generic error into a braerr.Error under the given code.
func Wrap(code Code, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error())
}

// WithRetryAfterMs overrides the suggested retry delay.
func WithRetryAfterMs(ms int) func(*Error) {
	return func(e *Error) { e.RetryAfterMs = ms }
}

// WithRetryable overrides the retryable flag.
func WithRetryable(retryable bool) func(*Error) {
	return func(e *Error) { e.Retryable = retryable }
}

func retryDefaults(code Code) []func(*Error) {
	switch {
	case transientCodes[code]:
		return []func(*Error){WithRetryable(true), WithRetryAfterMs(1000)}
	case code == SequenceGap:
		return []func(*Error){WithRetryable(false)}
	case code == IdempotencyConflict:
		return []func(*Error){WithRetryable(false)}
	default:
		return []func(*Error){WithRetryable(false)}
	}
}

// ClassOf returns the propagation classification for a code (§4.2).
func ClassOf(code Code) Class {
	switch {
	case fatalCodes[code]:
		return ClassFatal
	case transientCodes[code]:
		return ClassTransient
	default:
		return ClassPermanent
	}
}

// Backoff computes the exponential backoff delay for retry attempt n
// (0-indexed), per §7: initial 1s, cap 60s, factor 2, max 5 attempts.
func Backoff(attempt int) (delayMs int, exhausted bool) {
	const (
		initialMs = 1000
		capMs     = 60000
		maxAttempts = 5
	)
	if attempt >= maxAttempts {
		return 0, true
	}
	delay := initialMs
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > capMs {
			delay = capMs
			break
		}
	}
	return delay, false
}
