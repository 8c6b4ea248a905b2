package action

import (
	"sync"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

// SessionHandle is the slice of Session state the Dispatcher needs, kept
// narrow so internal/action never imports internal/session (session is the
// caller, not the callee, per §4.2's "acquire the session's critical
// section" algorithm — the critical section itself is the session's
// sync.Mutex, exposed here as Lock/Unlock).
type SessionHandle interface {
	RoomName() string
	Driver() capability.BrowserDriver
	LastSnapshot() *dom.Snapshot
	SetLastSnapshot(snap *dom.Snapshot)
	StreamModeActive() bool
}

// Handle is the concrete SessionHandle used by production sessions. critMu is
// the "session mutex" of §5 that serializes driver interaction; snapMu is a
// separate, finer-grained lock over lastSnap so that read-only queries
// (GetContext, GetScreenContent) can observe the last captured snapshot
// without contending for the driver's critical section.
type Handle struct {
	critMu     sync.Mutex
	snapMu     sync.Mutex
	roomName   string
	driver     capability.BrowserDriver
	lastSnap   *dom.Snapshot
	streamMode bool
}

// NewHandle constructs a Handle for a single session's driver.
func NewHandle(roomName string, driver capability.BrowserDriver, streamMode bool) *Handle {
	return &Handle{roomName: roomName, driver: driver, streamMode: streamMode}
}

func (h *Handle) RoomName() string { return h.roomName }

func (h *Handle) Driver() capability.BrowserDriver { return h.driver }

func (h *Handle) LastSnapshot() *dom.Snapshot {
	h.snapMu.Lock()
	defer h.snapMu.Unlock()
	return h.lastSnap
}

func (h *Handle) SetLastSnapshot(snap *dom.Snapshot) {
	h.snapMu.Lock()
	defer h.snapMu.Unlock()
	h.lastSnap = snap
}

func (h *Handle) StreamModeActive() bool { return h.streamMode }

// Lock and Unlock expose the session mutex (§5 "session mutex") to Dispatch.
func (h *Handle) Lock()   { h.critMu.Lock() }
func (h *Handle) Unlock() { h.critMu.Unlock() }
