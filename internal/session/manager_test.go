package session

import (
	"context"
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/dom"
)

type noopDriver struct{ closed bool }

func (d *noopDriver) Navigate(ctx context.Context, url string, newTab bool) error { return nil }
func (d *noopDriver) Snapshot(ctx context.Context) (*dom.Snapshot, error) {
	return dom.NewSnapshot("https://example.com", "Home", "complete", 0, 0, 0, 0, dom.Viewport{}, nil, nil), nil
}
func (d *noopDriver) Click(ctx context.Context, index *int, x, y *float64, button string) error {
	return nil
}
func (d *noopDriver) RightClick(ctx context.Context, index *int, x, y *float64) error  { return nil }
func (d *noopDriver) DoubleClick(ctx context.Context, index *int, x, y *float64) error { return nil }
func (d *noopDriver) Hover(ctx context.Context, index *int, x, y *float64) error       { return nil }
func (d *noopDriver) Type(ctx context.Context, index *int, text string, clearFirst bool) error {
	return nil
}
func (d *noopDriver) TypeSlowly(ctx context.Context, index *int, text string, delayMs int) error {
	return nil
}
func (d *noopDriver) Clear(ctx context.Context, index *int) error     { return nil }
func (d *noopDriver) SelectAll(ctx context.Context, index *int) error { return nil }
func (d *noopDriver) Copy(ctx context.Context, index *int) error      { return nil }
func (d *noopDriver) Paste(ctx context.Context, index *int) error     { return nil }
func (d *noopDriver) Cut(ctx context.Context, index *int) error       { return nil }
func (d *noopDriver) Scroll(ctx context.Context, direction string, amount int) error { return nil }
func (d *noopDriver) AnimateScroll(ctx context.Context, direction string, amount int, durationMs int) error {
	return nil
}
func (d *noopDriver) SendKeys(ctx context.Context, index *int, keys []string) error { return nil }
func (d *noopDriver) Wait(ctx context.Context, seconds float64) error               { return nil }
func (d *noopDriver) GoBack(ctx context.Context) error                              { return nil }
func (d *noopDriver) GoForward(ctx context.Context) error                           { return nil }
func (d *noopDriver) Refresh(ctx context.Context) error                            { return nil }
func (d *noopDriver) DragDrop(ctx context.Context, startIndex *int, startX, startY *float64, endIndex *int, endX, endY *float64) error {
	return nil
}
func (d *noopDriver) UploadFile(ctx context.Context, index *int, filePath string) error { return nil }
func (d *noopDriver) SelectDropdown(ctx context.Context, index int, value, text *string, optionIndex *int) error {
	return nil
}
func (d *noopDriver) FillForm(ctx context.Context, fields []dom.FormFieldValue) ([]dom.FormFieldResult, error) {
	return nil, nil
}
func (d *noopDriver) SelectMultiple(ctx context.Context, index int, values []string) error { return nil }
func (d *noopDriver) SubmitForm(ctx context.Context, index *int) error                     { return nil }
func (d *noopDriver) ResetForm(ctx context.Context, index *int) error                      { return nil }
func (d *noopDriver) PlayVideo(ctx context.Context, index *int) error                      { return nil }
func (d *noopDriver) PauseVideo(ctx context.Context, index *int) error                     { return nil }
func (d *noopDriver) SeekVideo(ctx context.Context, index *int, timeSeconds float64) error { return nil }
func (d *noopDriver) AdjustVolume(ctx context.Context, index *int, volume float64) error   { return nil }
func (d *noopDriver) ToggleFullscreen(ctx context.Context, index *int) error               { return nil }
func (d *noopDriver) ToggleMute(ctx context.Context, index *int) error                     { return nil }
func (d *noopDriver) TakeScreenshot(ctx context.Context) (string, error)                   { return "ref", nil }
func (d *noopDriver) HighlightElement(ctx context.Context, index *int) error               { return nil }
func (d *noopDriver) HighlightRegion(ctx context.Context, x, y, w, h float64) error         { return nil }
func (d *noopDriver) DrawOnPage(ctx context.Context, points []dom.Point) error              { return nil }
func (d *noopDriver) Zoom(ctx context.Context, direction string) error                      { return nil }
func (d *noopDriver) DownloadFile(ctx context.Context, url *string, index *int) (string, error) {
	return "ref", nil
}
func (d *noopDriver) PresentationMode(ctx context.Context, enabled bool) error { return nil }
func (d *noopDriver) ShowPointer(ctx context.Context, x, y float64) error     { return nil }
func (d *noopDriver) FocusElement(ctx context.Context, index int) error      { return nil }
func (d *noopDriver) Close(ctx context.Context) error                        { d.closed = true; return nil }

var _ capability.BrowserDriver = (*noopDriver)(nil)

type fakeVideo struct {
	started, stopped int
}

func (v *fakeVideo) StartTrack(ctx context.Context, roomName string, width, height, fps int) error {
	v.started++
	return nil
}
func (v *fakeVideo) StopTrack(ctx context.Context, roomName string) error {
	v.stopped++
	return nil
}
func (v *fakeVideo) PublishFrame(ctx context.Context, roomName string, frame []byte) error {
	return nil
}

var _ capability.VideoPublisher = (*fakeVideo)(nil)

func newTestManager() (*Manager, *noopDriver, *fakeVideo) {
	drv := &noopDriver{}
	video := &fakeVideo{}
	m := NewManager(func(ctx context.Context, cfg StartConfig) (capability.BrowserDriver, error) {
		return drv, nil
	}, video, nil, nil)
	return m, drv, video
}

func TestStartSession_TransitionsToActive(t *testing.T) {
	t.Parallel()
	m, _, video := newTestManager()

	sess, err := m.StartSession(context.Background(), StartConfig{RoomName: "room-1", InitialURL: "https://example.com"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if sess.Phase() != PhaseActive {
		t.Fatalf("expected Active, got %s", sess.Phase())
	}
	if video.started != 1 {
		t.Fatalf("expected video track started once, got %d", video.started)
	}
}

func TestStartSession_AlreadyExists(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager()
	ctx := context.Background()
	if _, err := m.StartSession(ctx, StartConfig{RoomName: "room-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.StartSession(ctx, StartConfig{RoomName: "room-1"}); err != ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPauseResumeClose(t *testing.T) {
	t.Parallel()
	m, drv, video := newTestManager()
	ctx := context.Background()
	sess, err := m.StartSession(ctx, StartConfig{RoomName: "room-1"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	if err := m.PauseSession(ctx, "room-1"); err != nil {
		t.Fatalf("PauseSession error: %v", err)
	}
	if sess.Phase() != PhasePaused {
		t.Fatalf("expected Paused, got %s", sess.Phase())
	}

	if err := m.ResumeSession(ctx, "room-1"); err != nil {
		t.Fatalf("ResumeSession error: %v", err)
	}
	if sess.Phase() != PhaseActive {
		t.Fatalf("expected Active, got %s", sess.Phase())
	}

	if err := m.CloseSession(ctx, "room-1"); err != nil {
		t.Fatalf("CloseSession error: %v", err)
	}
	if !drv.closed {
		t.Fatal("expected driver Close to have been called")
	}
	if video.stopped != 2 {
		t.Fatalf("expected video stopped twice (pause + close), got %d", video.stopped)
	}
	if _, ok := m.Get("room-1"); ok {
		t.Fatal("expected session removed from manager after close")
	}
}

func TestExecuteAction_RoutesToDispatcher(t *testing.T) {
	t.Parallel()
	m, _, _ := newTestManager()
	ctx := context.Background()
	sess, err := m.StartSession(ctx, StartConfig{RoomName: "room-1"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	result := sess.ExecuteAction(ctx, action.Envelope{
		CommandID: "c1", RoomName: "room-1", ActionType: action.GoBack, TimeoutMs: 1000,
	})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Error)
	}
	if sess.GetMetrics().ActionsExecuted != 1 {
		t.Fatalf("expected 1 action executed, got %d", sess.GetMetrics().ActionsExecuted)
	}
}
