package action

import (
	"context"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
	"github.com/10xr-agents/browse-automation-service/internal/upload"
)

// StateUpdateSink receives the effects of a completed dispatch for the
// Sequenced Communication Core to publish (§4.6); kept as a narrow function
// type so internal/action never imports internal/stream.
type StateUpdateSink func(ctx context.Context, handle SessionHandle, envelope Envelope, result Result)

// Dispatcher executes ActionEnvelopes against a session's BrowserDriver
// (spec.md §4.2). It holds no per-session state itself — all of that lives
// on the SessionHandle passed to Dispatch.
type Dispatcher struct {
	onResult       StateUpdateSink
	uploadSecurity *upload.Security
}

// NewDispatcher constructs a Dispatcher. onResult may be nil if the caller
// only wants the synchronous Result (e.g. the RPC fallback path of §4.6).
func NewDispatcher(onResult StateUpdateSink) *Dispatcher {
	return &Dispatcher{onResult: onResult}
}

// SetUploadSecurity scopes every future upload_file dispatch to sec's
// denylist and upload-dir constraint. A nil Dispatcher has no such scoping
// (upload_file is validated by the driver alone).
func (d *Dispatcher) SetUploadSecurity(sec *upload.Security) {
	d.uploadSecurity = sec
}

// Dispatch runs the full §4.2 algorithm: acquire the session's critical
// section, capture snapshots, resolve the target element, invoke the
// handler, diff, publish, release.
func (d *Dispatcher) Dispatch(ctx context.Context, handle SessionHandle, envelope Envelope) Result {
	handle.Lock()
	defer handle.Unlock()

	if envelope.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(envelope.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	start := time.Now()
	result := Result{}

	var preSnap *dom.Snapshot
	if handle.StreamModeActive() {
		var err error
		preSnap, err = handle.Driver().Snapshot(ctx)
		if err != nil {
			result.Error = braerr.Wrap(braerr.DriverTemporarilyUnavailable, err)
			result.DurationMs = time.Since(start).Milliseconds()
			d.publish(ctx, handle, envelope, result)
			return result
		}
		handle.SetLastSnapshot(preSnap)
	} else {
		preSnap = handle.LastSnapshot()
	}

	params := envelope.Params
	if UsesIndex(envelope.ActionType) && params.Index != nil {
		if resolved, ok := resolveIndex(ctx, handle, preSnap, *params.Index); ok {
			params.Index = &resolved
		} else {
			result.Error = braerr.New(braerr.ElementIndexStale, "element index could not be resolved in current snapshot")
			result.DurationMs = time.Since(start).Milliseconds()
			d.publish(ctx, handle, envelope, result)
			return result
		}
	}

	if err := validatePreconditions(envelope.ActionType, params, preSnap); err != nil {
		result.Error = err
		result.DurationMs = time.Since(start).Milliseconds()
		d.publish(ctx, handle, envelope, result)
		return result
	}

	err := invoke(ctx, handle.Driver(), envelope.ActionType, params, d.uploadSecurity)
	if err != nil {
		if classifiable, ok := err.(*braerr.Error); ok && braerr.ClassOf(classifiable.Code) == braerr.ClassTransient {
			// Transient errors get exactly one retry with a short backoff,
			// per §4.2 Failure semantics.
			delayMs, _ := braerr.Backoff(0)
			select {
			case <-time.After(time.Duration(delayMs) * time.Millisecond):
			case <-ctx.Done():
				result.Error = braerr.New(braerr.ActionTimeout, "action timed out during transient retry backoff")
				result.DurationMs = time.Since(start).Milliseconds()
				d.publish(ctx, handle, envelope, result)
				return result
			}
			err = invoke(ctx, handle.Driver(), envelope.ActionType, params, d.uploadSecurity)
		}
	}

	if err != nil {
		if be, ok := err.(*braerr.Error); ok {
			result.Error = be
		} else {
			result.Error = braerr.Wrap(braerr.NavigationFailed, err)
		}
		result.DurationMs = time.Since(start).Milliseconds()
		d.publish(ctx, handle, envelope, result)
		return result
	}

	postSnap, snapErr := handle.Driver().Snapshot(ctx)
	if snapErr != nil {
		result.Success = true
		result.DurationMs = time.Since(start).Milliseconds()
		d.publish(ctx, handle, envelope, result)
		return result
	}
	handle.SetLastSnapshot(postSnap)

	result.Success = true
	result.PreSnapshot = preSnap
	result.PostSnapshot = postSnap
	if preSnap != nil {
		diff := dom.Diff(preSnap, postSnap, dom.DiffIncremental)
		result.StateDiff = diff
		result.ObservedEffects = ObservedEffects{
			Navigated:        diff.NavigationChanges.URLChanged,
			VisibilityChange: len(diff.DOMChanges.Added)+len(diff.DOMChanges.Removed) > 0,
			FormFieldChange:  len(diff.FormStateChanges) > 0,
		}
	}
	result.DurationMs = time.Since(start).Milliseconds()
	d.publish(ctx, handle, envelope, result)
	return result
}

func (d *Dispatcher) publish(ctx context.Context, handle SessionHandle, envelope Envelope, result Result) {
	if d.onResult != nil {
		d.onResult(ctx, handle, envelope, result)
	}
}

// resolveIndex implements §4.2 step 3: use the index as-is against the most
// recently captured snapshot; if that snapshot's hash has since moved (a
// caller referenced an older snapshot), recapture and remap by signature.
func resolveIndex(ctx context.Context, handle SessionHandle, current *dom.Snapshot, index int) (int, bool) {
	if current == nil {
		return 0, false
	}
	if el, ok := current.ElementAt(index); ok {
		_ = el
		return index, true
	}
	fresh, err := handle.Driver().Snapshot(ctx)
	if err != nil {
		return 0, false
	}
	handle.SetLastSnapshot(fresh)
	if index >= len(current.Elements) {
		return 0, false
	}
	targetSig := dom.SignatureOf(current.Elements[index])
	for _, e := range fresh.Elements {
		if dom.SignatureOf(e) == targetSig {
			return e.Index, true
		}
	}
	return 0, false
}
