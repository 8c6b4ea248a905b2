// Package session implements the Session Manager state machine (spec.md
// §4.1): a per-room browser session owning a driver, a video track, and the
// DOM snapshot cache, generalized from the teacher's internal/session
// NamedSnapshot manager (devtools console/network capture) into a full
// session lifecycle around a BrowserDriver.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// Phase is one state in the session lifecycle (§4.1).
type Phase string

const (
	PhaseStarting Phase = "starting"
	PhaseActive   Phase = "active"
	PhasePaused   Phase = "paused"
	PhaseFailed   Phase = "failed"
	PhaseClosed   Phase = "closed"
)

// Viewport mirrors the config carried by StartSession (§4.1).
type Viewport struct {
	Width  int
	Height int
	FPS    int
}

// StartConfig is the input to StartSession (§4.1).
type StartConfig struct {
	RoomName           string
	ParticipantID      string
	Viewport           Viewport
	InitialURL         string
	StreamModeActive   bool
}

// Metrics is the supplemental GetSessionMetrics feature (SPEC_FULL.md §4):
// per-session observability counters, grounded on the teacher's
// internal/performance aggregation style.
type Metrics struct {
	ActionsExecuted    int64
	TransientRetries   int64
	TotalDispatchMs    int64
}

// AverageDispatchMs returns the mean dispatch latency, or 0 if no actions
// have executed yet.
func (m Metrics) AverageDispatchMs() float64 {
	if m.ActionsExecuted == 0 {
		return 0
	}
	return float64(m.TotalDispatchMs) / float64(m.ActionsExecuted)
}

// Session is one entry in the Manager's room_name -> Session map.
type Session struct {
	mu sync.Mutex

	roomName      string
	participantID string
	viewport      Viewport
	phase         Phase
	lastURL       string

	driver    capability.BrowserDriver
	video     capability.VideoPublisher
	handle    *action.Handle
	dispatcher *action.Dispatcher

	metrics Metrics
	log     *slog.Logger
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// legalTransitions encodes the state machine of §4.1.
var legalTransitions = map[Phase]map[Phase]bool{
	PhaseStarting: {PhaseActive: true, PhaseFailed: true},
	PhaseActive:   {PhasePaused: true, PhaseClosed: true, PhaseFailed: true},
	PhasePaused:   {PhaseActive: true, PhaseClosed: true, PhaseFailed: true},
	PhaseFailed:   {PhaseClosed: true, PhaseStarting: true},
	PhaseClosed:   {},
}

func (s *Session) transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !legalTransitions[s.phase][to] {
		return fmt.Errorf("illegal transition %s -> %s", s.phase, to)
	}
	s.phase = to
	return nil
}

// ExecuteAction routes to the Action Dispatcher (§4.1 ExecuteAction).
func (s *Session) ExecuteAction(ctx context.Context, envelope action.Envelope) action.Result {
	if s.Phase() != PhaseActive {
		return action.Result{Error: braerr.New(braerr.SessionClosed, "session is not active")}
	}
	start := time.Now()
	result := s.dispatcher.Dispatch(ctx, s.handle, envelope)
	s.mu.Lock()
	s.metrics.ActionsExecuted++
	s.metrics.TotalDispatchMs += time.Since(start).Milliseconds()
	if result.Error != nil && braerr.ClassOf(result.Error.Code) == braerr.ClassTransient {
		s.metrics.TransientRetries++
	}
	if result.Error != nil && braerr.ClassOf(result.Error.Code) == braerr.ClassFatal {
		s.phase = PhaseFailed
	}
	if result.PostSnapshot != nil {
		s.lastURL = result.PostSnapshot.URL
	}
	s.mu.Unlock()
	return result
}

// GetContext returns the session's most recently captured DOM snapshot.
func (s *Session) GetContext() *dom.Snapshot {
	return s.handle.LastSnapshot()
}

// GetScreenContent returns a text-oriented summary of the current snapshot
// (url, title, visible element count) for agent consumption.
func (s *Session) GetScreenContent() (url, title string, elementCount int) {
	snap := s.handle.LastSnapshot()
	if snap == nil {
		return "", "", 0
	}
	return snap.URL, snap.Title, len(snap.Elements)
}

// FindFormFields runs the §4.3 form-field auto-discovery heuristic against
// the session's last snapshot.
func (s *Session) FindFormFields() dom.FormFieldSlots {
	snap := s.handle.LastSnapshot()
	if snap == nil {
		return dom.FormFieldSlots{}
	}
	return dom.FindFormFields(snap)
}

// GetMetrics returns the supplemental GetSessionMetrics counters.
func (s *Session) GetMetrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}
