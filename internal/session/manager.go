package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
)

// ErrAlreadyExists is returned by StartSession for a room_name already
// mapped to a live session (§4.1 "AlreadyExists").
var ErrAlreadyExists = errors.New("session already exists for room")

// DriverFactory constructs a fresh BrowserDriver for a new session. It is
// injected so Manager never imports a concrete driver implementation.
type DriverFactory func(ctx context.Context, cfg StartConfig) (capability.BrowserDriver, error)

// Manager owns the room_name -> Session map (§4.1).
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	driverFactory DriverFactory
	video         capability.VideoPublisher
	onResult      action.StateUpdateSink
	onStarted     func(roomName string)
	onClosed      func(roomName string)
	log           *slog.Logger
}

// SetLifecycleHooks wires callbacks invoked right after a session becomes
// Active and right before its entry is removed on close. Both may be nil.
// Used by cmd/browseagentd to start and stop the §4.6 stream consumer loop
// alongside a session's lifetime without Manager needing to know about
// streams at all.
func (m *Manager) SetLifecycleHooks(onStarted, onClosed func(roomName string)) {
	m.onStarted = onStarted
	m.onClosed = onClosed
}

// NewManager constructs a Manager. video may be nil in tests that do not
// exercise video publishing.
func NewManager(driverFactory DriverFactory, video capability.VideoPublisher, onResult action.StateUpdateSink, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		sessions:      map[string]*Session{},
		driverFactory: driverFactory,
		video:         video,
		onResult:      onResult,
		log:           log,
	}
}

// StartSession allocates a driver, joins the video room, navigates to the
// initial URL, and records the session Active (§4.1).
func (m *Manager) StartSession(ctx context.Context, cfg StartConfig) (*Session, error) {
	m.mu.Lock()
	if _, exists := m.sessions[cfg.RoomName]; exists {
		m.mu.Unlock()
		return nil, ErrAlreadyExists
	}
	sess := &Session{
		roomName:      cfg.RoomName,
		participantID: cfg.ParticipantID,
		viewport:      cfg.Viewport,
		phase:         PhaseStarting,
		video:         m.video,
		log:           m.log,
	}
	m.sessions[cfg.RoomName] = sess
	m.mu.Unlock()

	driver, err := m.driverFactory(ctx, cfg)
	if err != nil {
		sess.setPhase(PhaseFailed)
		return nil, braerr.Wrap(braerr.DriverCrashed, err)
	}
	sess.driver = driver
	sess.handle = action.NewHandle(cfg.RoomName, driver, cfg.StreamModeActive)
	sess.dispatcher = action.NewDispatcher(m.onResult)

	if m.video != nil {
		if err := m.video.StartTrack(ctx, cfg.RoomName, cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.FPS); err != nil {
			sess.setPhase(PhaseFailed)
			return nil, braerr.Wrap(braerr.DriverCrashed, err)
		}
	}

	if cfg.InitialURL != "" {
		if err := driver.Navigate(ctx, cfg.InitialURL, false); err != nil {
			sess.setPhase(PhaseFailed)
			return nil, braerr.Wrap(braerr.NavigationFailed, err)
		}
		sess.lastURL = cfg.InitialURL
	}

	snap, err := driver.Snapshot(ctx)
	if err == nil {
		sess.handle.SetLastSnapshot(snap)
	}

	if err := sess.transition(PhaseActive); err != nil {
		return nil, braerr.New(braerr.SessionClosed, err.Error())
	}
	if m.onStarted != nil {
		m.onStarted(cfg.RoomName)
	}
	return sess, nil
}

// Get returns the session for room, or (nil, false) if absent.
func (m *Manager) Get(roomName string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[roomName]
	return s, ok
}

// PauseSession toggles video publishing without releasing the driver.
func (m *Manager) PauseSession(ctx context.Context, roomName string) error {
	sess, ok := m.Get(roomName)
	if !ok {
		return braerr.New(braerr.SessionNotFound, "no session for room")
	}
	if err := sess.transition(PhasePaused); err != nil {
		return braerr.New(braerr.SessionClosed, err.Error())
	}
	if m.video != nil {
		return m.video.StopTrack(ctx, roomName)
	}
	return nil
}

// ResumeSession toggles video publishing back on.
func (m *Manager) ResumeSession(ctx context.Context, roomName string) error {
	sess, ok := m.Get(roomName)
	if !ok {
		return braerr.New(braerr.SessionNotFound, "no session for room")
	}
	if err := sess.transition(PhaseActive); err != nil {
		return braerr.New(braerr.SessionClosed, err.Error())
	}
	if m.video != nil {
		return m.video.StartTrack(ctx, roomName, sess.viewport.Width, sess.viewport.Height, sess.viewport.FPS)
	}
	return nil
}

// CloseSession stops video, closes the driver, and releases all resources
// on every exit path (§4.1).
func (m *Manager) CloseSession(ctx context.Context, roomName string) error {
	sess, ok := m.Get(roomName)
	if !ok {
		return braerr.New(braerr.SessionNotFound, "no session for room")
	}
	defer func() {
		m.mu.Lock()
		delete(m.sessions, roomName)
		m.mu.Unlock()
		if m.onClosed != nil {
			m.onClosed(roomName)
		}
	}()

	var firstErr error
	if m.video != nil {
		if err := m.video.StopTrack(ctx, roomName); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if sess.driver != nil {
		if err := sess.driver.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = sess.transition(PhaseClosed)
	if firstErr != nil {
		return braerr.Wrap(braerr.DriverCrashed, firstErr)
	}
	return nil
}

// RecoverSession re-establishes the video track and re-navigates to the
// last known URL; if the driver is dead, recreates it entirely (§4.1).
func (m *Manager) RecoverSession(ctx context.Context, roomName string) error {
	sess, ok := m.Get(roomName)
	if !ok {
		return braerr.New(braerr.SessionNotFound, "no session for room")
	}
	if err := sess.transition(PhaseStarting); err != nil {
		return braerr.New(braerr.SessionClosed, err.Error())
	}

	lastURL := sess.lastURL
	cfg := StartConfig{RoomName: roomName, ParticipantID: sess.participantID, Viewport: sess.viewport, InitialURL: lastURL}

	driver, err := m.driverFactory(ctx, cfg)
	if err != nil {
		sess.setPhase(PhaseFailed)
		return braerr.Wrap(braerr.DriverCrashed, err)
	}
	sess.driver = driver
	sess.handle = action.NewHandle(roomName, driver, sess.handle.StreamModeActive())

	if m.video != nil {
		if err := m.video.StartTrack(ctx, roomName, sess.viewport.Width, sess.viewport.Height, sess.viewport.FPS); err != nil {
			sess.setPhase(PhaseFailed)
			return braerr.Wrap(braerr.DriverCrashed, err)
		}
	}
	if lastURL != "" {
		if err := driver.Navigate(ctx, lastURL, false); err != nil {
			sess.setPhase(PhaseFailed)
			return braerr.Wrap(braerr.NavigationFailed, err)
		}
	}
	return sess.transition(PhaseActive)
}
